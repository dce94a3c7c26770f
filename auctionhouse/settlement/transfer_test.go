package settlement

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
)

func TestValidateTransferSetBuyer(t *testing.T) {
	source := []int{1, 2, 3}

	// Moving everything would leave the source invoice empty.
	err := ValidateTransferSet(source, []int{1, 2, 3}, true)
	check.True(t, errors.Is(err, auction.ErrCannotEmptySource))

	// Moving a subset is fine.
	check.NoError(t, ValidateTransferSet(source, []int{1, 2}, true))
	check.NoError(t, ValidateTransferSet(source, []int{3}, true))

	// A lot the source does not hold.
	err = ValidateTransferSet(source, []int{4}, true)
	check.True(t, errors.Is(err, auction.ErrNotOwned))

	err = ValidateTransferSet(source, nil, true)
	check.Equal(t, auction.KindValidation, auction.KindOf(err))
}

func TestValidateTransferSetVendor(t *testing.T) {
	source := []int{1, 2, 3}

	// Vendors may be emptied out; the invoice is deleted instead.
	check.NoError(t, ValidateTransferSet(source, []int{1, 2, 3}, false))

	err := ValidateTransferSet(source, []int{9}, false)
	check.True(t, errors.Is(err, auction.ErrNotOwned))
}

func TestValidateTransferSetDuplicates(t *testing.T) {
	source := []int{1, 2, 3}

	// Duplicates count once against the keep-one rule.
	check.NoError(t, ValidateTransferSet(source, []int{1, 1, 2}, true))

	err := ValidateTransferSet(source, []int{1, 1, 2, 3}, true)
	check.True(t, errors.Is(err, auction.ErrCannotEmptySource))
}
