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

type AuctionRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, auction *models.Auction, lots []*models.Lot) error
	GetByID(ctx context.Context, id int64) (*models.Auction, error)
	GetByCode(ctx context.Context, code string) (*models.Auction, error)
	GetWithLots(ctx context.Context, id int64) (*models.Auction, error)
	GetActive(ctx context.Context) ([]*models.Auction, error)
	GetPendingDue(ctx context.Context, now time.Time) ([]*models.Auction, error)
	UpdateStatus(ctx context.Context, id int64, status models.AuctionStatus) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type auctionRepository struct {
	db *bun.DB
}

func NewAuctionRepository(db *bun.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) DB() *bun.DB {
	return r.db
}

func (r *auctionRepository) Create(ctx context.Context, auction *models.Auction, lots []*models.Lot) error {
	auction.CreatedAt = time.Now()
	auction.UpdatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NewInsert().Model(auction).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}

	for _, lot := range lots {
		lot.AuctionID = auction.ID
		lot.CreatedAt = time.Now()
		lot.UpdatedAt = time.Now()
	}
	if len(lots) > 0 {
		if _, err := tx.NewInsert().Model(&lots).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create lots: %w", err)
		}
	}

	return tx.Commit()
}

func (r *auctionRepository) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auction not found")
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetByCode(ctx context.Context, code string) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("auction_code = ?", code).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auction not found")
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetWithLots(ctx context.Context, id int64) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Relation("Lots", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("number ASC")
		}).
		Where("a.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auction not found")
		}
		return nil, fmt.Errorf("failed to get auction with lots: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetActive(ctx context.Context) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().
		Model(&auctions).
		Where("status = ?", models.AuctionStatusActive).
		Order("start_time ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get active auctions: %w", err)
	}
	return auctions, nil
}

// GetPendingDue returns pending auctions whose start window has opened.
func (r *auctionRepository) GetPendingDue(ctx context.Context, now time.Time) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().
		Model(&auctions).
		Where("status = ?", models.AuctionStatusPending).
		Where("start_time <= ?", now).
		Order("start_time ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get pending auctions: %w", err)
	}
	return auctions, nil
}

func (r *auctionRepository) UpdateStatus(ctx context.Context, id int64, status models.AuctionStatus) error {
	_, err := r.db.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update auction status: %w", err)
	}
	return nil
}

func (r *auctionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Auction)(nil)).
		Where("auction_code = ?", code).
		Exists(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check auction code: %w", err)
	}
	return exists, nil
}
