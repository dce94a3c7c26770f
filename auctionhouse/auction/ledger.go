package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

// Ledger manages per-user bidding budgets and the frozen amounts held against
// open bids. All mutations run inside the caller's transaction so that freeze
// accounting commits or rolls back together with the bid that caused it.
// Invariant maintained throughout: users.frozen_total equals the sum of that
// user's lot_freezes rows.
type Ledger struct {
	notifier Notifier
}

func NewLedger(notifier Notifier) *Ledger {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Ledger{notifier: notifier}
}

// CanBid is the affordability rule: a bid is covered when the budget minus
// everything frozen elsewhere, plus whatever is already frozen on this lot
// (which the new freeze replaces), reaches the bid amount.
func CanBid(budget, frozenTotal, prevFreezeOnLot, amount int64) bool {
	return budget-frozenTotal+prevFreezeOnLot >= amount
}

// applyFreeze returns the frozen total after a freeze of amount replaces the
// user's previous freeze of prev on the same lot.
func applyFreeze(frozenTotal, prev, amount int64) int64 {
	return frozenTotal - prev + amount
}

// applyRelease returns the frozen total after a freeze of amount is released.
// Unfreeze and Settle issue the same arithmetic as a relative SQL update
// since they run without a prior row lock on the user.
func applyRelease(frozenTotal, amount int64) int64 {
	return frozenTotal - amount
}

// Freeze reserves amount of the user's budget against a bid on the given lot,
// replacing any smaller freeze this user already holds on it. Fails with
// ErrInsufficientBudget and no state change when the budget cannot cover it.
func (l *Ledger) Freeze(ctx context.Context, tx bun.Tx, userID, auctionID int64, lotNumber int, amount int64) error {
	user := new(models.User)
	err := tx.NewSelect().
		Model(user).
		Where("id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to lock bidding account: %w", err)
	}

	prev, err := l.freezeAmount(ctx, tx, userID, auctionID, lotNumber)
	if err != nil {
		return err
	}

	if !CanBid(user.Budget, user.FrozenTotal, prev, amount) {
		return fmt.Errorf("%w: available %d, bid %d", ErrInsufficientBudget, user.Available()+prev, amount)
	}

	if prev > 0 {
		_, err = tx.NewUpdate().
			Model((*models.LotFreeze)(nil)).
			Set("amount = ?", amount).
			Set("updated_at = ?", time.Now()).
			Where("user_id = ? AND auction_id = ? AND lot_number = ?", userID, auctionID, lotNumber).
			Exec(ctx)
	} else {
		_, err = tx.NewInsert().
			Model(&models.LotFreeze{
				UserID:    userID,
				AuctionID: auctionID,
				LotNumber: lotNumber,
				Amount:    amount,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}).
			Exec(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert lot freeze: %w", err)
	}

	// Keep frozen_total in lockstep with the freeze rows. The user row is
	// locked above, so the new total can be computed here.
	_, err = tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("frozen_total = ?", applyFreeze(user.FrozenTotal, prev, amount)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update frozen total: %w", err)
	}

	return nil
}

// Unfreeze releases the user's freeze on a lot. Releasing an absent freeze is
// a no-op.
func (l *Ledger) Unfreeze(ctx context.Context, tx bun.Tx, userID, auctionID int64, lotNumber int) error {
	amount, err := l.removeFreeze(ctx, tx, userID, auctionID, lotNumber)
	if err != nil || amount == 0 {
		return err
	}

	_, err = tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("frozen_total = frozen_total - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to release frozen total: %w", err)
	}
	return nil
}

// Settle converts the winner's freeze into a permanent spend: the frozen
// amount leaves both the freeze records and the budget.
func (l *Ledger) Settle(ctx context.Context, tx bun.Tx, userID, auctionID int64, lotNumber int) error {
	amount, err := l.removeFreeze(ctx, tx, userID, auctionID, lotNumber)
	if err != nil {
		return err
	}
	if amount == 0 {
		return fmt.Errorf("no freeze to settle for user %d on lot %d", userID, lotNumber)
	}

	_, err = tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("frozen_total = frozen_total - ?", amount).
		Set("budget = budget - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to settle freeze: %w", err)
	}
	return nil
}

// ReleaseLosers unfreezes every bidder's allocation on a closed lot except the
// winner's. A winnerID of zero releases everyone (unsold lots).
func (l *Ledger) ReleaseLosers(ctx context.Context, tx bun.Tx, auctionID int64, lotNumber int, winnerID int64) error {
	var freezes []*models.LotFreeze
	err := tx.NewSelect().
		Model(&freezes).
		Where("auction_id = ? AND lot_number = ?", auctionID, lotNumber).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to list lot freezes: %w", err)
	}

	for _, freeze := range freezes {
		if freeze.UserID == winnerID {
			continue
		}
		if err := l.Unfreeze(ctx, tx, freeze.UserID, auctionID, lotNumber); err != nil {
			return err
		}
	}
	return nil
}

// CheckLimit emits the advisory "limit exhausted" signal when a user's
// available budget no longer covers the next legal bid. Never blocks bidding;
// the hard gate stays in Freeze.
func (l *Ledger) CheckLimit(ctx context.Context, db bun.IDB, userID, minNextBid int64) {
	user := new(models.User)
	err := db.NewSelect().
		Model(user).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		slog.Warn("Failed to check bidding limit",
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		return
	}

	if user.Available() < minNextBid {
		l.notifier.NotifyLimitExhausted(ctx, userID, user.Available(), minNextBid)
	}
}

func (l *Ledger) freezeAmount(ctx context.Context, tx bun.Tx, userID, auctionID int64, lotNumber int) (int64, error) {
	freeze := new(models.LotFreeze)
	err := tx.NewSelect().
		Model(freeze).
		Where("user_id = ? AND auction_id = ? AND lot_number = ?", userID, auctionID, lotNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get lot freeze: %w", err)
	}
	return freeze.Amount, nil
}

func (l *Ledger) removeFreeze(ctx context.Context, tx bun.Tx, userID, auctionID int64, lotNumber int) (int64, error) {
	amount, err := l.freezeAmount(ctx, tx, userID, auctionID, lotNumber)
	if err != nil || amount == 0 {
		return 0, err
	}

	_, err = tx.NewDelete().
		Model((*models.LotFreeze)(nil)).
		Where("user_id = ? AND auction_id = ? AND lot_number = ?", userID, auctionID, lotNumber).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete lot freeze: %w", err)
	}
	return amount, nil
}
