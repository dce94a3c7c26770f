package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Username string `bun:"username,notnull,unique"`
	Email    string `bun:"email,notnull"`
	Phone    string `bun:"phone"`

	// Billing address drives GST selection at settlement time.
	BillingAddress string `bun:"billing_address"`
	BillingCity    string `bun:"billing_city"`
	BillingState   string `bun:"billing_state"`
	StateCode      string `bun:"state_code,notnull"`
	GSTIN          string `bun:"gstin"`

	// Bidding account. FrozenTotal always equals the sum of this user's
	// lot_freezes rows; the ledger maintains both inside one transaction.
	Budget      int64 `bun:"budget,notnull,default:0"`
	FrozenTotal int64 `bun:"frozen_total,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Available is the budget not currently committed to open bids.
func (u *User) Available() int64 {
	return u.Budget - u.FrozenTotal
}

// LotFreeze is one per-lot budget reservation held against a user's open bid.
type LotFreeze struct {
	bun.BaseModel `bun:"table:lot_freezes,alias:lf"`

	ID        int64 `bun:"id,pk,autoincrement"`
	UserID    int64 `bun:"user_id,notnull"`
	AuctionID int64 `bun:"auction_id,notnull"`
	LotNumber int   `bun:"lot_number,notnull"`
	Amount    int64 `bun:"amount,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
