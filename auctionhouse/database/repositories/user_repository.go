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

type UserRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	AdjustBudget(ctx context.Context, id int64, delta int64) error
	GetFreezes(ctx context.Context, userID int64) ([]*models.LotFreeze, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) DB() *bun.DB {
	return r.db
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AdjustBudget applies a directory-level budget change. Frozen amounts are
// untouched; the ledger owns those.
func (r *userRepository) AdjustBudget(ctx context.Context, id int64, delta int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("budget = budget + ?", delta).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND budget + ? >= frozen_total", id, delta).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to adjust budget: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("budget adjustment would drop below frozen total")
	}
	return nil
}

func (r *userRepository) GetFreezes(ctx context.Context, userID int64) ([]*models.LotFreeze, error) {
	var freezes []*models.LotFreeze
	err := r.db.NewSelect().
		Model(&freezes).
		Where("user_id = ?", userID).
		Order("auction_id ASC", "lot_number ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get lot freezes: %w", err)
	}
	return freezes, nil
}
