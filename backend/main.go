package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/numisbid/auctionhouse/auctionhouse"
	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/auctionhouse/database"
	"github.com/numisbid/auctionhouse/auctionhouse/database/repositories"
	"github.com/numisbid/auctionhouse/auctionhouse/logger"
	"github.com/numisbid/auctionhouse/auctionhouse/notifications"
	"github.com/numisbid/auctionhouse/auctionhouse/realtime"
	"github.com/numisbid/auctionhouse/auctionhouse/settlement"
	"github.com/numisbid/auctionhouse/auctionhouse/txutil"
	"github.com/numisbid/auctionhouse/backend/handlers"
	"github.com/numisbid/auctionhouse/backend/middleware"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	customHandler := logger.NewHandler("AuctionHouse-API")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting auction house API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("type", "sys"))

	// Local overrides (DB password, redis addr) come from .env when present.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment overrides from .env", slog.String("type", "sys"))
	}

	cfg, err := auctionhouse.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	applyEnvOverrides(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	auctionRepo := repositories.NewAuctionRepository(db.BunDB())
	lotRepo := repositories.NewLotRepository(db.BunDB())
	userRepo := repositories.NewUserRepository(db.BunDB())
	vendorRepo := repositories.NewVendorRepository(db.BunDB())
	ownershipRepo := repositories.NewOwnershipRepository(db.BunDB())
	invoiceRepo := repositories.NewInvoiceRepository(db.BunDB())
	txManager := txutil.NewManager(db.BunDB())

	var publisher auction.Publisher = auction.NopPublisher{}
	redisClient, err := realtime.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Redis unavailable, live events disabled", slog.Any("error", err))
	} else {
		rtPublisher := realtime.NewPublisher(redisClient)
		defer rtPublisher.Close()
		publisher = rtPublisher
	}

	var notifier auction.Notifier = auction.NopNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := notifications.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		notifier = producer
	}

	settlementEngine := settlement.NewEngine(db.BunDB(), txManager, settlement.Company{
		Name:            cfg.Company.Name,
		Address:         cfg.Company.Address,
		State:           cfg.Company.State,
		StateCode:       cfg.Company.StateCode,
		GSTIN:           cfg.Company.GSTIN,
		GSTRate:         cfg.Company.GSTRate,
		PackingCharge:   cfg.Company.PackingCharge,
		InsuranceCharge: cfg.Company.InsuranceCharge,
	})

	ledger := auction.NewLedger(notifier)
	engine := auction.NewEngine(
		auctionRepo,
		lotRepo,
		userRepo,
		txManager,
		ledger,
		settlementEngine,
		publisher,
		notifier,
		auction.Config{
			QuietInterval:      cfg.Auction.QuietInterval,
			BaseUnit:           cfg.Auction.BaseUnit,
			DefaultLotDuration: cfg.Auction.DefaultLotDuration,
		},
	)

	if err := engine.Recover(ctx); err != nil {
		slog.Error("Failed to recover open lots", slog.Any("error", err))
		os.Exit(1)
	}
	engine.Scheduler().Start()

	app := fiber.New(fiber.Config{
		AppName:      "AuctionHouse API",
		ServerHeader: "AuctionHouse",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000,http://localhost:8080",
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		Engine:     engine,
		Settlement: settlementEngine,
		Auctions:   auctionRepo,
		Lots:       lotRepo,
		Users:      userRepo,
		Vendors:    vendorRepo,
		Ownerships: ownershipRepo,
		Invoices:   invoiceRepo,
		Version:    version,
	}
	handlers.SetupRoutes(app, webApp)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(sigCtx)
	group.Go(func() error {
		slog.Info("Starting server", slog.String("address", cfg.HTTPAddr), slog.String("type", "sys"))
		return app.Listen(cfg.HTTPAddr)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("Shutting down", slog.String("type", "sys"))

		engine.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		slog.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Shutdown complete", slog.String("type", "sys"))
}

func applyEnvOverrides(cfg *auctionhouse.Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
}
