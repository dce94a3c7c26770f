package auction

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

func TestCloseEventsWithSuccessor(t *testing.T) {
	now := time.Now()
	closed := &models.Lot{
		AuctionID:  7,
		Number:     3,
		Status:     models.LotStatusSold,
		WinnerID:   42,
		CurrentBid: 5000,
	}
	next := &models.Lot{AuctionID: 7, Number: 4}

	events := (&Engine{}).closeEvents(nil, closed, next, false, now)
	assert.Equal(t, 2, len(events))

	check.Equal(t, EventLotClosed, events[0].Type)
	check.Equal(t, 3, events[0].LotNumber)
	check.Equal(t, int64(42), events[0].WinnerID)
	// The closed event announces which lot goes live next.
	check.Equal(t, 4, events[0].NextLot)

	check.Equal(t, EventLotActivated, events[1].Type)
	check.Equal(t, 4, events[1].LotNumber)
	check.Equal(t, models.LotStatusActive, events[1].LotStatus)
}

func TestCloseEventsLastLot(t *testing.T) {
	now := time.Now()
	closed := &models.Lot{
		AuctionID: 7,
		Number:    9,
		Status:    models.LotStatusUnsold,
	}

	events := (&Engine{}).closeEvents(nil, closed, nil, true, now)
	assert.Equal(t, 2, len(events))

	check.Equal(t, EventLotClosed, events[0].Type)
	// No successor, so NextLot stays empty and the auction-ended event
	// follows instead.
	check.Equal(t, 0, events[0].NextLot)
	check.Equal(t, EventAuctionEnded, events[1].Type)
	check.Equal(t, int64(7), events[1].AuctionID)
}
