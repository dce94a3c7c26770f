package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/uptrace/bun"

	"github.com/numisbid/auctionhouse/auctionhouse"
	"github.com/numisbid/auctionhouse/auctionhouse/database"
	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/numisbid/auctionhouse/auctionhouse/logger"
)

// tables lists every model in creation order. Auctions before lots, invoices
// before their lines.
var tables = []interface{}{
	(*models.User)(nil),
	(*models.Vendor)(nil),
	(*models.Auction)(nil),
	(*models.Lot)(nil),
	(*models.LotBid)(nil),
	(*models.LotFreeze)(nil),
	(*models.LotOwnership)(nil),
	(*models.BuyerInvoice)(nil),
	(*models.BuyerInvoiceLot)(nil),
	(*models.VendorInvoice)(nil),
	(*models.VendorInvoiceLot)(nil),
}

func main() {
	customHandler := logger.NewHandler("AuctionHouse-Migrate")
	slog.SetDefault(slog.New(customHandler))

	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := auctionhouse.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
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

	for _, model := range tables {
		if _, err := db.BunDB().NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			slog.Error("Failed to create table", slog.Any("model", model), slog.Any("error", err))
			os.Exit(1)
		}
	}

	if err := createIndexes(ctx, db.BunDB()); err != nil {
		slog.Error("Failed to create indexes", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Schema migration completed successfully")
}

func createIndexes(ctx context.Context, db *bun.DB) error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_lots_auction_number ON lots (auction_id, number)",
		"CREATE INDEX IF NOT EXISTS idx_lots_quiet_deadline ON lots (quiet_deadline) WHERE status IN ('active', 'going_once', 'going_twice')",
		"CREATE INDEX IF NOT EXISTS idx_lot_bids_lot ON lot_bids (lot_id, timestamp)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_lot_freezes_user_lot ON lot_freezes (user_id, auction_id, lot_number)",
		"CREATE INDEX IF NOT EXISTS idx_lot_freezes_lot ON lot_freezes (auction_id, lot_number)",
		"CREATE INDEX IF NOT EXISTS idx_lot_ownerships_buyer ON lot_ownerships (auction_id, buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_lot_ownerships_vendor ON lot_ownerships (auction_id, vendor_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_buyer_invoices_auction_buyer ON buyer_invoices (auction_id, buyer_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vendor_invoices_auction_vendor ON vendor_invoices (auction_id, vendor_id)",
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
