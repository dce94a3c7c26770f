package auction

import (
	"fmt"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

// IncrementTable maps a current price to the minimum legal next bid. Slabs
// must be sorted by MinPrice and partition [0, inf) with no gaps; the last
// slab has MaxPrice == 0 meaning open-ended.
type IncrementTable []models.IncrementSlab

// Validate checks that the slabs form a gap-free partition of [0, inf).
func (t IncrementTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table is empty", ErrBadIncrementTable)
	}
	if t[0].MinPrice != 0 {
		return fmt.Errorf("%w: first slab must start at 0, starts at %d", ErrBadIncrementTable, t[0].MinPrice)
	}
	for i, slab := range t {
		if slab.Increment <= 0 {
			return fmt.Errorf("%w: slab %d has non-positive increment", ErrBadIncrementTable, i)
		}
		last := i == len(t)-1
		if last {
			if slab.MaxPrice != 0 {
				return fmt.Errorf("%w: last slab must be open-ended", ErrBadIncrementTable)
			}
			continue
		}
		if slab.MaxPrice <= slab.MinPrice {
			return fmt.Errorf("%w: slab %d is empty", ErrBadIncrementTable, i)
		}
		if t[i+1].MinPrice != slab.MaxPrice {
			return fmt.Errorf("%w: gap between slab %d and %d", ErrBadIncrementTable, i, i+1)
		}
	}
	return nil
}

// SlabFor returns the slab whose [MinPrice, MaxPrice) range contains price.
func (t IncrementTable) SlabFor(price int64) (models.IncrementSlab, error) {
	for _, slab := range t {
		if price >= slab.MinPrice && (slab.MaxPrice == 0 || price < slab.MaxPrice) {
			return slab, nil
		}
	}
	return models.IncrementSlab{}, fmt.Errorf("%w: no slab covers price %d", ErrBadIncrementTable, price)
}

// MinNextBid computes the smallest legal bid over the current price.
func (t IncrementTable) MinNextBid(current int64) (int64, error) {
	slab, err := t.SlabFor(current)
	if err != nil {
		return 0, err
	}
	return current + slab.Increment, nil
}
