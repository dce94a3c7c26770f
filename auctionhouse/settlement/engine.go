package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/numisbid/auctionhouse/auctionhouse/txutil"
)

const vendorCacheSize = 256

// Company describes the seller for invoice headers and GST selection.
type Company struct {
	Name            string
	Address         string
	State           string
	StateCode       string
	GSTIN           string
	GSTRate         float64
	PackingCharge   int64
	InsuranceCharge int64
}

var errLotNotUnsold = &auction.Error{
	Kind:    auction.KindConflict,
	Code:    "lot_not_unsold",
	Message: "lot is not in unsold state",
}

// Engine turns sold lots into buyer and vendor invoices. Ownership rows in
// lot_ownerships are the single source of truth; both invoice kinds are
// materialized from them and rebuilt whole on every mutation, so the two can
// never drift apart.
type Engine struct {
	db      *bun.DB
	tx      *txutil.Manager
	company Company

	// Vendor directory rows change rarely; commission rate and payout
	// details are cached across settlements.
	vendors *lru.Cache
}

func NewEngine(db *bun.DB, txManager *txutil.Manager, company Company) *Engine {
	cache, _ := lru.New(vendorCacheSize)
	return &Engine{
		db:      db,
		tx:      txManager,
		company: company,
		vendors: cache,
	}
}

// SettleSold records ownership for a freshly sold lot and materializes the
// winner's and vendor's invoices, inside the caller's closing transaction.
// Re-invocation for an already-settled lot is a no-op on the ownership row,
// and the rebuild is deterministic, so nothing double-charges.
func (e *Engine) SettleSold(ctx context.Context, tx bun.Tx, lot *models.Lot) error {
	if lot.WinnerID == 0 {
		return fmt.Errorf("%w: lot %d", auction.ErrNoWinner, lot.Number)
	}

	now := time.Now()
	ownership := &models.LotOwnership{
		AuctionID:   lot.AuctionID,
		LotNumber:   lot.Number,
		BuyerID:     lot.WinnerID,
		VendorID:    lot.VendorID,
		HammerPrice: lot.CurrentBid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := tx.NewInsert().
		Model(ownership).
		On("CONFLICT (auction_id, lot_number) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to record ownership: %w", err)
	}

	if err := e.rebuildBuyerInvoice(ctx, tx, lot.AuctionID, lot.WinnerID); err != nil {
		return err
	}

	if lot.VendorID == 0 {
		slog.Warn("Lot has no vendor, skipping commission invoice",
			slog.String("type", "settlement"),
			slog.Int64("auction_id", lot.AuctionID),
			slog.Int("lot_number", lot.Number))
		return nil
	}
	return e.rebuildVendorInvoice(ctx, tx, lot.AuctionID, lot.VendorID)
}

// AssignUnsoldLot sells an unsold lot to a chosen buyer at a chosen price
// after the auction. The invoice line carries a sold-after-auction mark for
// audit; bidding budgets are untouched since no freeze ever existed.
func (e *Engine) AssignUnsoldLot(ctx context.Context, auctionID int64, lotNumber int, buyerID, price int64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", auction.ErrInvalidRequest)
	}

	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		lot := new(models.Lot)
		if err := tx.NewSelect().
			Model(lot).
			Where("auction_id = ? AND number = ?", auctionID, lotNumber).
			For("UPDATE").
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: lot %d not found", auction.ErrInvalidRequest, lotNumber)
			}
			return fmt.Errorf("failed to lock lot: %w", err)
		}
		if lot.Status != models.LotStatusUnsold {
			return fmt.Errorf("%w: lot %d is %s", errLotNotUnsold, lotNumber, lot.Status)
		}

		exists, err := tx.NewSelect().
			Model((*models.LotOwnership)(nil)).
			Where("auction_id = ? AND lot_number = ?", auctionID, lotNumber).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check ownership: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: lot %d already settled", auction.ErrNotOwned, lotNumber)
		}

		now := time.Now()
		if _, err := tx.NewUpdate().
			Model((*models.Lot)(nil)).
			Set("status = ?", models.LotStatusSold).
			Set("winner_id = ?", buyerID).
			Set("current_bid = ?", price).
			Set("updated_at = ?", now).
			Where("id = ?", lot.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to assign lot: %w", err)
		}

		ownership := &models.LotOwnership{
			AuctionID:        auctionID,
			LotNumber:        lotNumber,
			BuyerID:          buyerID,
			VendorID:         lot.VendorID,
			HammerPrice:      price,
			SoldAfterAuction: true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if _, err := tx.NewInsert().Model(ownership).Exec(ctx); err != nil {
			return fmt.Errorf("failed to record ownership: %w", err)
		}

		if err := e.rebuildBuyerInvoice(ctx, tx, auctionID, buyerID); err != nil {
			return err
		}
		if lot.VendorID != 0 {
			return e.rebuildVendorInvoice(ctx, tx, auctionID, lot.VendorID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Unsold lot assigned",
		slog.String("type", "settlement"),
		slog.Int64("auction_id", auctionID),
		slog.Int("lot_number", lotNumber),
		slog.Int64("buyer_id", buyerID),
		slog.Int64("price", price))
	return nil
}

// GenerateVendorInvoices rebuilds every vendor invoice for an auction from
// the ownership ledger and returns them with their lot lines.
func (e *Engine) GenerateVendorInvoices(ctx context.Context, auctionID int64) ([]*models.VendorInvoice, error) {
	err := e.tx.WithTransaction(ctx, txutil.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		var vendorIDs []int64
		if err := tx.NewSelect().
			Model((*models.LotOwnership)(nil)).
			ColumnExpr("DISTINCT vendor_id").
			Where("auction_id = ? AND vendor_id != 0", auctionID).
			Scan(ctx, &vendorIDs); err != nil {
			return fmt.Errorf("failed to list vendors: %w", err)
		}
		for _, vendorID := range vendorIDs {
			if err := e.rebuildVendorInvoice(ctx, tx, auctionID, vendorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var invoices []*models.VendorInvoice
	if err := e.db.NewSelect().
		Model(&invoices).
		Relation("Lots").
		Where("vi.auction_id = ?", auctionID).
		Order("vi.vendor_id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load vendor invoices: %w", err)
	}
	return invoices, nil
}

// rebuildBuyerInvoice rematerializes one buyer's invoice for an auction from
// the ownership ledger: the lot lines are replaced wholesale and the totals
// recomputed from scratch.
func (e *Engine) rebuildBuyerInvoice(ctx context.Context, tx bun.Tx, auctionID, buyerID int64) error {
	var rows []*models.LotOwnership
	if err := tx.NewSelect().
		Model(&rows).
		Where("auction_id = ? AND buyer_id = ?", auctionID, buyerID).
		Order("lot_number ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("failed to get owned lots: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	buyer := new(models.User)
	if err := tx.NewSelect().
		Model(buyer).
		Where("id = ?", buyerID).
		Scan(ctx); err != nil {
		return fmt.Errorf("failed to get buyer %d: %w", buyerID, err)
	}

	now := time.Now()
	invoice := new(models.BuyerInvoice)
	err := tx.NewSelect().
		Model(invoice).
		Where("auction_id = ? AND buyer_id = ?", auctionID, buyerID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to lock buyer invoice: %w", err)
		}
		invoice = &models.BuyerInvoice{
			InvoiceNo:       fmt.Sprintf("BINV-%d-%d", auctionID, buyerID),
			AuctionID:       auctionID,
			BuyerID:         buyerID,
			PackingCharge:   e.company.PackingCharge,
			InsuranceCharge: e.company.InsuranceCharge,
			CreatedAt:       now,
		}
		if _, err := tx.NewInsert().Model(invoice).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create buyer invoice: %w", err)
		}
	}

	if _, err := tx.NewDelete().
		Model((*models.BuyerInvoiceLot)(nil)).
		Where("invoice_id = ?", invoice.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear invoice lines: %w", err)
	}

	lines := make([]*models.BuyerInvoiceLot, 0, len(rows))
	prices := make([]int64, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, &models.BuyerInvoiceLot{
			InvoiceID:        invoice.ID,
			AuctionID:        auctionID,
			LotNumber:        row.LotNumber,
			HammerPrice:      row.HammerPrice,
			SoldAfterAuction: row.SoldAfterAuction,
			CreatedAt:        now,
		})
		prices = append(prices, row.HammerPrice)
	}
	if _, err := tx.NewInsert().Model(&lines).Exec(ctx); err != nil {
		return fmt.Errorf("failed to write invoice lines: %w", err)
	}

	gstType := GSTTypeFor(buyer.StateCode, e.company.StateCode)
	totals := ComputeBuyerTotals(prices, invoice.PackingCharge, invoice.InsuranceCharge, gstType, e.company.GSTRate)

	if _, err := tx.NewUpdate().
		Model((*models.BuyerInvoice)(nil)).
		Set("billing_name = ?", buyer.Username).
		Set("billing_address = ?", buyer.BillingAddress).
		Set("billing_state = ?", buyer.BillingState).
		Set("state_code = ?", buyer.StateCode).
		Set("gst_type = ?", gstType).
		Set("subtotal = ?", totals.Subtotal).
		Set("cgst_amount = ?", totals.CGSTAmount).
		Set("sgst_amount = ?", totals.SGSTAmount).
		Set("igst_amount = ?", totals.IGSTAmount).
		Set("grand_total = ?", totals.GrandTotal).
		Set("updated_at = ?", now).
		Where("id = ?", invoice.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to update buyer invoice totals: %w", err)
	}
	return nil
}

// rebuildVendorInvoice rematerializes one vendor's commission invoice. A
// vendor left with no lots, e.g. after a transfer moved them all away, has
// the invoice deleted rather than kept empty.
func (e *Engine) rebuildVendorInvoice(ctx context.Context, tx bun.Tx, auctionID, vendorID int64) error {
	var rows []*models.LotOwnership
	if err := tx.NewSelect().
		Model(&rows).
		Where("auction_id = ? AND vendor_id = ?", auctionID, vendorID).
		Order("lot_number ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("failed to get supplied lots: %w", err)
	}

	now := time.Now()
	invoice := new(models.VendorInvoice)
	err := tx.NewSelect().
		Model(invoice).
		Where("auction_id = ? AND vendor_id = ?", auctionID, vendorID).
		For("UPDATE").
		Scan(ctx)
	found := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to lock vendor invoice: %w", err)
	}

	if len(rows) == 0 {
		if !found {
			return nil
		}
		if _, err := tx.NewDelete().
			Model((*models.VendorInvoiceLot)(nil)).
			Where("invoice_id = ?", invoice.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear invoice lines: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*models.VendorInvoice)(nil)).
			Where("id = ?", invoice.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete empty vendor invoice: %w", err)
		}
		return nil
	}

	vendor, err := e.vendorFor(ctx, tx, vendorID)
	if err != nil {
		return err
	}

	if !found {
		invoice = &models.VendorInvoice{
			InvoiceNo:      fmt.Sprintf("VINV-%d-%d", auctionID, vendorID),
			AuctionID:      auctionID,
			VendorID:       vendorID,
			VendorName:     vendor.Name,
			StateCode:      vendor.StateCode,
			CommissionRate: vendor.CommissionRate,
			BankName:       vendor.BankName,
			BankAccountNo:  vendor.BankAccountNo,
			BankIFSC:       vendor.BankIFSC,
			CreatedAt:      now,
		}
		if _, err := tx.NewInsert().Model(invoice).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to create vendor invoice: %w", err)
		}
	}

	if _, err := tx.NewDelete().
		Model((*models.VendorInvoiceLot)(nil)).
		Where("invoice_id = ?", invoice.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear invoice lines: %w", err)
	}

	lines := make([]*models.VendorInvoiceLot, 0, len(rows))
	for _, row := range rows {
		commission, net := ComputeCommission(row.HammerPrice, invoice.CommissionRate)
		lines = append(lines, &models.VendorInvoiceLot{
			InvoiceID:        invoice.ID,
			AuctionID:        auctionID,
			LotNumber:        row.LotNumber,
			HammerPrice:      row.HammerPrice,
			CommissionAmount: commission,
			NetPayable:       net,
			SoldAfterAuction: row.SoldAfterAuction,
			CreatedAt:        now,
		})
	}
	if _, err := tx.NewInsert().Model(&lines).Exec(ctx); err != nil {
		return fmt.Errorf("failed to write invoice lines: %w", err)
	}

	totals := ComputeVendorTotals(lines)
	if _, err := tx.NewUpdate().
		Model((*models.VendorInvoice)(nil)).
		Set("total_hammer = ?", totals.TotalHammer).
		Set("total_commission = ?", totals.TotalCommission).
		Set("net_payable = ?", totals.NetPayable).
		Set("updated_at = ?", now).
		Where("id = ?", invoice.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to update vendor invoice totals: %w", err)
	}
	return nil
}

func (e *Engine) vendorFor(ctx context.Context, db bun.IDB, vendorID int64) (*models.Vendor, error) {
	if cached, ok := e.vendors.Get(vendorID); ok {
		return cached.(*models.Vendor), nil
	}

	vendor := new(models.Vendor)
	if err := db.NewSelect().
		Model(vendor).
		Where("id = ?", vendorID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get vendor %d: %w", vendorID, err)
	}
	e.vendors.Add(vendorID, vendor)
	return vendor, nil
}
