package auction

import "errors"

// Kind classifies engine errors for callers: validation and budget failures
// are user-correctable, conflicts are retryable with refreshed state, and
// consistency failures abort the operation for manual reconciliation.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindBudget
	KindConflict
	KindConsistency
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrBidTooLow          = &Error{Kind: KindValidation, Code: "bid_too_low", Message: "bid below minimum increment"}
	ErrNotMultiple        = &Error{Kind: KindValidation, Code: "not_multiple_of_base_unit", Message: "bid is not a multiple of the base unit"}
	ErrBadIncrementTable  = &Error{Kind: KindValidation, Code: "bad_increment_table", Message: "increment table does not partition the price range"}
	ErrNoWinner           = &Error{Kind: KindValidation, Code: "no_winner", Message: "lot has no winning bid to settle"}
	ErrCannotEmptySource  = &Error{Kind: KindValidation, Code: "cannot_empty_source", Message: "transfer would empty the source invoice"}
	ErrInvalidRequest     = &Error{Kind: KindValidation, Code: "invalid_request", Message: "invalid request"}
	ErrInsufficientBudget = &Error{Kind: KindBudget, Code: "insufficient_budget", Message: "available budget does not cover the bid"}
	ErrLotNotOpen         = &Error{Kind: KindConflict, Code: "lot_not_open", Message: "lot is not accepting bids"}
	ErrStaleBid           = &Error{Kind: KindConflict, Code: "stale_bid", Message: "current bid already advanced past the submitted amount"}
	ErrNotOwned           = &Error{Kind: KindConflict, Code: "not_owned", Message: "lot is not owned by the claimed party"}
	ErrConsistency        = &Error{Kind: KindConsistency, Code: "ownership_mismatch", Message: "auction record and invoice disagree on ownership"}
)

// KindOf extracts the Kind from an error chain, or zero if the error did not
// originate in the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf extracts the machine-readable code from an error chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
