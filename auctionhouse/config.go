package auctionhouse

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	DB       DBConfig       `toml:"db"`
	Auction  AuctionConfig  `toml:"auction"`
	Company  CompanyConfig  `toml:"company"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	HTTPAddr string         `toml:"http_addr"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// AuctionConfig carries the bidding rules shared by every auction.
type AuctionConfig struct {
	// QuietInterval is the inactivity window between the soft-close stages
	// (active -> going once -> going twice -> gone).
	QuietInterval time.Duration `toml:"quiet_interval"`
	// BaseUnit is the smallest accepted bid denomination; every bid must be a
	// multiple of it.
	BaseUnit int64 `toml:"base_unit"`
	// DefaultLotDuration is used when an auction is created without one.
	DefaultLotDuration time.Duration `toml:"default_lot_duration"`
}

// CompanyConfig describes the seller company for invoice headers and GST
// selection. A buyer whose state code matches StateCode is taxed CGST+SGST,
// anyone else IGST.
type CompanyConfig struct {
	Name            string  `toml:"name"`
	Address         string  `toml:"address"`
	State           string  `toml:"state"`
	StateCode       string  `toml:"state_code"`
	GSTIN           string  `toml:"gstin"`
	GSTRate         float64 `toml:"gst_rate"`
	PackingCharge   int64   `toml:"packing_charge"`
	InsuranceCharge int64   `toml:"insurance_charge"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

func (c *Config) applyDefaults() {
	if c.Auction.QuietInterval <= 0 {
		c.Auction.QuietInterval = 30 * time.Second
	}
	if c.Auction.BaseUnit <= 0 {
		c.Auction.BaseUnit = 50
	}
	if c.Auction.DefaultLotDuration <= 0 {
		c.Auction.DefaultLotDuration = 10 * time.Minute
	}
	if c.Company.GSTRate <= 0 {
		c.Company.GSTRate = 18.0
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
}
