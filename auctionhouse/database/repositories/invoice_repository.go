package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

// InvoiceRepository reads buyer and vendor invoices. Invoice writes are always
// full recomputations from the ownership ledger and live in the settlement
// package's transactions.
type InvoiceRepository interface {
	DB() *bun.DB
	GetBuyerInvoice(ctx context.Context, auctionID, buyerID int64) (*models.BuyerInvoice, error)
	GetBuyerInvoicesByAuction(ctx context.Context, auctionID int64) ([]*models.BuyerInvoice, error)
	GetVendorInvoice(ctx context.Context, auctionID, vendorID int64) (*models.VendorInvoice, error)
	GetVendorInvoicesByAuction(ctx context.Context, auctionID int64) ([]*models.VendorInvoice, error)
}

type invoiceRepository struct {
	db *bun.DB
}

func NewInvoiceRepository(db *bun.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) DB() *bun.DB {
	return r.db
}

func (r *invoiceRepository) GetBuyerInvoice(ctx context.Context, auctionID, buyerID int64) (*models.BuyerInvoice, error) {
	invoice := new(models.BuyerInvoice)
	err := r.db.NewSelect().
		Model(invoice).
		Relation("Lots", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("lot_number ASC")
		}).
		Where("bi.auction_id = ? AND bi.buyer_id = ?", auctionID, buyerID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("buyer invoice not found")
		}
		return nil, fmt.Errorf("failed to get buyer invoice: %w", err)
	}
	return invoice, nil
}

func (r *invoiceRepository) GetBuyerInvoicesByAuction(ctx context.Context, auctionID int64) ([]*models.BuyerInvoice, error) {
	var invoices []*models.BuyerInvoice
	err := r.db.NewSelect().
		Model(&invoices).
		Relation("Lots").
		Where("bi.auction_id = ?", auctionID).
		Order("bi.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get buyer invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) GetVendorInvoice(ctx context.Context, auctionID, vendorID int64) (*models.VendorInvoice, error) {
	invoice := new(models.VendorInvoice)
	err := r.db.NewSelect().
		Model(invoice).
		Relation("Lots", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("lot_number ASC")
		}).
		Where("vi.auction_id = ? AND vi.vendor_id = ?", auctionID, vendorID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vendor invoice not found")
		}
		return nil, fmt.Errorf("failed to get vendor invoice: %w", err)
	}
	return invoice, nil
}

func (r *invoiceRepository) GetVendorInvoicesByAuction(ctx context.Context, auctionID int64) ([]*models.VendorInvoice, error) {
	var invoices []*models.VendorInvoice
	err := r.db.NewSelect().
		Model(&invoices).
		Relation("Lots").
		Where("vi.auction_id = ?", auctionID).
		Order("vi.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get vendor invoices: %w", err)
	}
	return invoices, nil
}
