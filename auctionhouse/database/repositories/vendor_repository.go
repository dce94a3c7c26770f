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

type VendorRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id int64) (*models.Vendor, error)
	List(ctx context.Context) ([]*models.Vendor, error)
}

type vendorRepository struct {
	db *bun.DB
}

func NewVendorRepository(db *bun.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) DB() *bun.DB {
	return r.db
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	vendor.CreatedAt = time.Now()
	vendor.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(vendor).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

func (r *vendorRepository) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	vendor := new(models.Vendor)
	err := r.db.NewSelect().
		Model(vendor).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vendor not found")
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return vendor, nil
}

func (r *vendorRepository) List(ctx context.Context) ([]*models.Vendor, error) {
	var vendors []*models.Vendor
	err := r.db.NewSelect().
		Model(&vendors).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, nil
}
