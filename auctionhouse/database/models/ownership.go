package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LotOwnership is the single source of truth for who bought a settled lot and
// which vendor supplied it. Buyer and vendor invoices are materialized views
// recomputed from these rows; they are never edited line-by-line.
type LotOwnership struct {
	bun.BaseModel `bun:"table:lot_ownerships,alias:lo"`

	ID        int64 `bun:"id,pk,autoincrement"`
	AuctionID int64 `bun:"auction_id,notnull,unique:lot_ownerships_auction_lot"`
	LotNumber int   `bun:"lot_number,notnull,unique:lot_ownerships_auction_lot"`
	BuyerID   int64 `bun:"buyer_id,notnull"`
	VendorID  int64 `bun:"vendor_id"`

	HammerPrice int64 `bun:"hammer_price,notnull"`

	// SoldAfterAuction marks lots assigned to a buyer by an admin after the
	// lot closed unsold, for audit on the invoice line.
	SoldAfterAuction bool `bun:"sold_after_auction,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
