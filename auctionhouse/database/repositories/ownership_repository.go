package repositories

import (
	"context"
	"fmt"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

// OwnershipRepository reads the lot ownership ledger. All writes happen inside
// settlement/transfer transactions and go through the bun.Tx directly, so the
// repository only exposes the read side.
type OwnershipRepository interface {
	DB() *bun.DB
	GetByLot(ctx context.Context, auctionID int64, lotNumber int) (*models.LotOwnership, error)
	GetByAuction(ctx context.Context, auctionID int64) ([]*models.LotOwnership, error)
	GetByBuyer(ctx context.Context, auctionID, buyerID int64) ([]*models.LotOwnership, error)
	GetByVendor(ctx context.Context, auctionID, vendorID int64) ([]*models.LotOwnership, error)
}

type ownershipRepository struct {
	db *bun.DB
}

func NewOwnershipRepository(db *bun.DB) OwnershipRepository {
	return &ownershipRepository{db: db}
}

func (r *ownershipRepository) DB() *bun.DB {
	return r.db
}

func (r *ownershipRepository) GetByLot(ctx context.Context, auctionID int64, lotNumber int) (*models.LotOwnership, error) {
	ownership := new(models.LotOwnership)
	err := r.db.NewSelect().
		Model(ownership).
		Where("auction_id = ? AND lot_number = ?", auctionID, lotNumber).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get lot ownership: %w", err)
	}
	return ownership, nil
}

func (r *ownershipRepository) GetByAuction(ctx context.Context, auctionID int64) ([]*models.LotOwnership, error) {
	var ownerships []*models.LotOwnership
	err := r.db.NewSelect().
		Model(&ownerships).
		Where("auction_id = ?", auctionID).
		Order("lot_number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get auction ownerships: %w", err)
	}
	return ownerships, nil
}

func (r *ownershipRepository) GetByBuyer(ctx context.Context, auctionID, buyerID int64) ([]*models.LotOwnership, error) {
	var ownerships []*models.LotOwnership
	err := r.db.NewSelect().
		Model(&ownerships).
		Where("auction_id = ? AND buyer_id = ?", auctionID, buyerID).
		Order("lot_number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get buyer ownerships: %w", err)
	}
	return ownerships, nil
}

func (r *ownershipRepository) GetByVendor(ctx context.Context, auctionID, vendorID int64) ([]*models.LotOwnership, error) {
	var ownerships []*models.LotOwnership
	err := r.db.NewSelect().
		Model(&ownerships).
		Where("auction_id = ? AND vendor_id = ?", auctionID, vendorID).
		Order("lot_number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get vendor ownerships: %w", err)
	}
	return ownerships, nil
}
