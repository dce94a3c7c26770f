package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

// Sequencer drives the ordered activation of lots inside a sequential
// auction: exactly one lot is active at a time, in ascending lot-number
// order, and every lot gets its turn regardless of how earlier ones closed.
type Sequencer struct{}

// PickNext returns the upcoming lot that should activate after the given lot
// number, or nil when none remain.
func PickNext(lots []*models.Lot, after int) *models.Lot {
	var next *models.Lot
	for _, lot := range lots {
		if lot.Status != models.LotStatusUpcoming || lot.Number <= after {
			continue
		}
		if next == nil || lot.Number < next.Number {
			next = lot
		}
	}
	return next
}

// ActivateLot opens a lot for bidding: start now, close after the auction's
// lot duration, first quiet check one quiet interval out.
func (s *Sequencer) ActivateLot(ctx context.Context, tx bun.Tx, auction *models.Auction, lot *models.Lot, now time.Time, quiet time.Duration) error {
	endTime := now.Add(auction.LotDuration)
	if auction.Mode == models.AuctionModeSingle {
		// A single-item auction's lone lot runs on the auction window itself.
		endTime = auction.EndTime
	}

	_, err := tx.NewUpdate().
		Model((*models.Lot)(nil)).
		Set("status = ?", models.LotStatusActive).
		Set("start_time = ?", now).
		Set("end_time = ?", endTime).
		Set("quiet_deadline = ?", now.Add(quiet)).
		Set("updated_at = ?", now).
		Where("id = ?", lot.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate lot %d: %w", lot.Number, err)
	}

	lot.Status = models.LotStatusActive
	lot.StartTime = now
	lot.EndTime = endTime
	lot.QuietDeadline = now.Add(quiet)
	return nil
}

// AdvanceAfter promotes the next upcoming lot once the given lot has reached
// a terminal state. When no lot remains the auction itself ends. Returns the
// newly activated lot, or nil with ended=true.
func (s *Sequencer) AdvanceAfter(ctx context.Context, tx bun.Tx, auction *models.Auction, closed *models.Lot, now time.Time, quiet time.Duration) (*models.Lot, bool, error) {
	next := new(models.Lot)
	err := tx.NewSelect().
		Model(next).
		Where("auction_id = ? AND status = ? AND number > ?", auction.ID, models.LotStatusUpcoming, closed.Number).
		Order("number ASC").
		Limit(1).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if err := s.endAuction(ctx, tx, auction.ID, now); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("failed to get next lot: %w", err)
	}

	if err := s.ActivateLot(ctx, tx, auction, next, now, quiet); err != nil {
		return nil, false, err
	}
	return next, false, nil
}

func (s *Sequencer) endAuction(ctx context.Context, tx bun.Tx, auctionID int64, now time.Time) error {
	_, err := tx.NewUpdate().
		Model((*models.Auction)(nil)).
		Set("status = ?", models.AuctionStatusEnded).
		Set("updated_at = ?", now).
		Where("id = ?", auctionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to end auction: %w", err)
	}
	return nil
}
