package auction

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

func activeLot(currentBid int64, bidCount int) *models.Lot {
	return &models.Lot{
		Number:        7,
		StartingPrice: 500,
		CurrentBid:    currentBid,
		Status:        models.LotStatusActive,
		BidCount:      bidCount,
	}
}

func TestValidateBidAmountFirstBid(t *testing.T) {
	table := standardTable()

	// The opening bid must meet the starting price, not an increment step.
	check.NoError(t, ValidateBidAmount(activeLot(0, 0), table, 500, 50))
	check.NoError(t, ValidateBidAmount(activeLot(0, 0), table, 750, 50))

	err := ValidateBidAmount(activeLot(0, 0), table, 450, 50)
	check.True(t, errors.Is(err, ErrBidTooLow))
}

func TestValidateBidAmountIncrement(t *testing.T) {
	table := standardTable()

	check.NoError(t, ValidateBidAmount(activeLot(900, 3), table, 950, 50))
	check.NoError(t, ValidateBidAmount(activeLot(900, 3), table, 1200, 50))

	// A bid over the current price but under the slab step is too low.
	err := ValidateBidAmount(activeLot(1000, 4), table, 1050, 50)
	check.True(t, errors.Is(err, ErrBidTooLow))

	// A bid at the slab boundary uses the slab in force at the current price.
	check.NoError(t, ValidateBidAmount(activeLot(4900, 9), table, 5000, 50))
}

func TestValidateBidAmountBaseUnit(t *testing.T) {
	table := standardTable()

	err := ValidateBidAmount(activeLot(900, 3), table, 975, 50)
	check.True(t, errors.Is(err, ErrNotMultiple))

	// Base unit of zero disables the rule.
	check.NoError(t, ValidateBidAmount(activeLot(900, 3), table, 975, 0))
}

func TestValidateBidAmountStale(t *testing.T) {
	table := standardTable()

	// An amount at or below the current bid means another bid won the race;
	// the caller can retry with refreshed state.
	err := ValidateBidAmount(activeLot(900, 3), table, 900, 50)
	check.True(t, errors.Is(err, ErrStaleBid))
	check.Equal(t, KindConflict, KindOf(err))

	err = ValidateBidAmount(activeLot(900, 3), table, 850, 50)
	check.True(t, errors.Is(err, ErrStaleBid))
}

func TestValidateBidAmountClosedLot(t *testing.T) {
	table := standardTable()

	lot := activeLot(900, 3)
	lot.Status = models.LotStatusSold
	err := ValidateBidAmount(lot, table, 950, 50)
	check.True(t, errors.Is(err, ErrLotNotOpen))

	lot.Status = models.LotStatusUpcoming
	err = ValidateBidAmount(lot, table, 950, 50)
	check.True(t, errors.Is(err, ErrLotNotOpen))

	// Bids during the countdown stages are fine and reset the countdown.
	lot.Status = models.LotStatusGoingTwice
	check.NoError(t, ValidateBidAmount(lot, table, 950, 50))
}

func TestNextTransitionCountdown(t *testing.T) {
	now := time.Now()
	lot := activeLot(900, 3)
	lot.QuietDeadline = now.Add(-time.Second)

	next, due := NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusGoingOnce, next)

	lot.Status = models.LotStatusGoingOnce
	next, due = NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusGoingTwice, next)

	lot.Status = models.LotStatusGoingTwice
	next, due = NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusSold, next)
}

func TestNextTransitionNotDue(t *testing.T) {
	now := time.Now()
	lot := activeLot(900, 3)
	lot.QuietDeadline = now.Add(10 * time.Second)

	_, due := NextTransition(lot, now)
	check.False(t, due)

	// A terminal lot never transitions again.
	lot.Status = models.LotStatusSold
	lot.QuietDeadline = now.Add(-time.Minute)
	_, due = NextTransition(lot, now)
	check.False(t, due)
}

func TestNextTransitionUnsold(t *testing.T) {
	now := time.Now()

	// No bids at all: gone means unsold.
	lot := activeLot(0, 0)
	lot.Status = models.LotStatusGoingTwice
	lot.QuietDeadline = now.Add(-time.Second)
	next, due := NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusUnsold, next)

	// Bids below the reserve: also unsold.
	lot = activeLot(900, 3)
	lot.Status = models.LotStatusGoingTwice
	lot.ReservePrice = 1500
	lot.QuietDeadline = now.Add(-time.Second)
	next, due = NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusUnsold, next)

	// Reserve met exactly: sold.
	lot.CurrentBid = 1500
	next, due = NextTransition(lot, now)
	check.True(t, due)
	check.Equal(t, models.LotStatusSold, next)
}
