package auction

import (
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

func TestPickNext(t *testing.T) {
	lots := []*models.Lot{
		{Number: 1, Status: models.LotStatusSold},
		{Number: 2, Status: models.LotStatusUnsold},
		{Number: 4, Status: models.LotStatusUpcoming},
		{Number: 3, Status: models.LotStatusUpcoming},
		{Number: 5, Status: models.LotStatusUpcoming},
	}

	next := PickNext(lots, 2)
	check.NotNil(t, next)
	check.Equal(t, 3, next.Number)

	// An unsold lot never comes around again.
	next = PickNext(lots, 4)
	check.NotNil(t, next)
	check.Equal(t, 5, next.Number)

	check.Nil(t, PickNext(lots, 5))
	check.Nil(t, PickNext(nil, 0))
}
