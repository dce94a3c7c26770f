package auction

import (
	"fmt"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

// The lot state machine is split in two: the pure decision functions in this
// file, and the Engine, which applies their outcomes inside serialized
// transactions. Keeping the decisions pure lets the going/going/gone rules be
// tested without a database.

// ValidateBidAmount checks a submitted amount against the lot's current state,
// the auction's increment table, and the base-unit rule. The first bid on a
// lot must meet the starting price; later bids must clear the increment slab
// in force at the current price.
func ValidateBidAmount(lot *models.Lot, table IncrementTable, amount, baseUnit int64) error {
	if !lot.Status.Open() {
		return fmt.Errorf("%w: lot %d is %s", ErrLotNotOpen, lot.Number, lot.Status)
	}
	if baseUnit > 0 && amount%baseUnit != 0 {
		return fmt.Errorf("%w: amount %d, base unit %d", ErrNotMultiple, amount, baseUnit)
	}

	minBid := lot.StartingPrice
	if lot.BidCount > 0 {
		next, err := table.MinNextBid(lot.CurrentBid)
		if err != nil {
			return err
		}
		minBid = next
	}
	if amount < minBid {
		if lot.BidCount > 0 && amount <= lot.CurrentBid {
			return fmt.Errorf("%w: current bid is %d", ErrStaleBid, lot.CurrentBid)
		}
		return fmt.Errorf("%w: minimum bid is %d", ErrBidTooLow, minBid)
	}
	return nil
}

// NextTransition returns the status a lot should move to once its quiet
// deadline has passed, and whether any transition is due at all. Sold requires
// at least one bid clearing the reserve; a reserve of zero means none is set.
func NextTransition(lot *models.Lot, now time.Time) (models.LotStatus, bool) {
	if !lot.Status.Open() {
		return lot.Status, false
	}
	if lot.QuietDeadline.IsZero() || now.Before(lot.QuietDeadline) {
		return lot.Status, false
	}

	switch lot.Status {
	case models.LotStatusActive:
		return models.LotStatusGoingOnce, true
	case models.LotStatusGoingOnce:
		return models.LotStatusGoingTwice, true
	case models.LotStatusGoingTwice:
		if lot.BidCount > 0 && reserveMet(lot) {
			return models.LotStatusSold, true
		}
		return models.LotStatusUnsold, true
	}
	return lot.Status, false
}

func reserveMet(lot *models.Lot) bool {
	return lot.ReservePrice == 0 || lot.CurrentBid >= lot.ReservePrice
}
