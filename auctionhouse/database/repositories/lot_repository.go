package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

type LotRepository interface {
	DB() *bun.DB
	GetByID(ctx context.Context, id int64) (*models.Lot, error)
	GetByNumber(ctx context.Context, auctionID int64, number int) (*models.Lot, error)
	GetByAuction(ctx context.Context, auctionID int64) ([]*models.Lot, error)
	GetDue(ctx context.Context, now time.Time) ([]*models.Lot, error)
	GetOpen(ctx context.Context) ([]*models.Lot, error)
	GetLotBids(ctx context.Context, lotID int64) ([]*models.LotBid, error)
	GetUserBids(ctx context.Context, bidderID int64) ([]*models.LotBid, error)
}

type lotRepository struct {
	db *bun.DB
}

func NewLotRepository(db *bun.DB) LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) DB() *bun.DB {
	return r.db
}

func (r *lotRepository) GetByID(ctx context.Context, id int64) (*models.Lot, error) {
	lot := new(models.Lot)
	err := r.db.NewSelect().
		Model(lot).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lot not found")
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return lot, nil
}

func (r *lotRepository) GetByNumber(ctx context.Context, auctionID int64, number int) (*models.Lot, error) {
	lot := new(models.Lot)
	err := r.db.NewSelect().
		Model(lot).
		Where("auction_id = ? AND number = ?", auctionID, number).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lot not found")
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return lot, nil
}

func (r *lotRepository) GetByAuction(ctx context.Context, auctionID int64) ([]*models.Lot, error) {
	var lots []*models.Lot
	err := r.db.NewSelect().
		Model(&lots).
		Where("auction_id = ?", auctionID).
		Order("number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get lots: %w", err)
	}
	return lots, nil
}

// GetDue returns open lots whose quiet deadline has passed. The scheduler uses
// it both as the restart recovery path and as a backstop for missed timers.
func (r *lotRepository) GetDue(ctx context.Context, now time.Time) ([]*models.Lot, error) {
	var lots []*models.Lot
	err := r.db.NewSelect().
		Model(&lots).
		Where("status IN (?)", bun.In([]models.LotStatus{
			models.LotStatusActive,
			models.LotStatusGoingOnce,
			models.LotStatusGoingTwice,
		})).
		Where("quiet_deadline <= ?", now).
		Order("auction_id ASC", "number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get due lots: %w", err)
	}
	return lots, nil
}

// GetOpen returns every lot still accepting bids, for timer recovery on boot.
func (r *lotRepository) GetOpen(ctx context.Context) ([]*models.Lot, error) {
	var lots []*models.Lot
	err := r.db.NewSelect().
		Model(&lots).
		Where("status IN (?)", bun.In([]models.LotStatus{
			models.LotStatusActive,
			models.LotStatusGoingOnce,
			models.LotStatusGoingTwice,
		})).
		Order("auction_id ASC", "number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get open lots: %w", err)
	}
	return lots, nil
}

func (r *lotRepository) GetLotBids(ctx context.Context, lotID int64) ([]*models.LotBid, error) {
	var bids []*models.LotBid
	err := r.db.NewSelect().
		Model(&bids).
		Where("lot_id = ?", lotID).
		Order("timestamp ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get lot bids: %w", err)
	}
	return bids, nil
}

func (r *lotRepository) GetUserBids(ctx context.Context, bidderID int64) ([]*models.LotBid, error) {
	var bids []*models.LotBid
	err := r.db.NewSelect().
		Model(&bids).
		Where("bidder_id = ?", bidderID).
		Order("timestamp DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get user bids: %w", err)
	}
	return bids, nil
}
