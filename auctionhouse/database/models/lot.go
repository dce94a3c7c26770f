package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LotStatus string

const (
	LotStatusUpcoming   LotStatus = "upcoming"
	LotStatusActive     LotStatus = "active"
	LotStatusGoingOnce  LotStatus = "going_once"
	LotStatusGoingTwice LotStatus = "going_twice"
	LotStatusSold       LotStatus = "sold"
	LotStatusUnsold     LotStatus = "unsold"
)

// Terminal reports whether a lot status accepts no further transitions.
func (s LotStatus) Terminal() bool {
	return s == LotStatusSold || s == LotStatusUnsold
}

// Open reports whether the lot currently accepts bids.
func (s LotStatus) Open() bool {
	return s == LotStatusActive || s == LotStatusGoingOnce || s == LotStatusGoingTwice
}

type Lot struct {
	bun.BaseModel `bun:"table:lots,alias:l"`

	ID            int64     `bun:"id,pk,autoincrement"`
	AuctionID     int64     `bun:"auction_id,notnull"`
	Number        int       `bun:"number,notnull"`
	Title         string    `bun:"title,notnull"`
	VendorID      int64     `bun:"vendor_id"`
	StartingPrice int64     `bun:"starting_price,notnull"`
	CurrentBid    int64     `bun:"current_bid,notnull,default:0"`
	ReservePrice  int64     `bun:"reserve_price,notnull,default:0"`
	Status        LotStatus `bun:"status,notnull"`
	TopBidderID   int64     `bun:"top_bidder_id"`
	WinnerID      int64     `bun:"winner_id"`
	BidCount      int       `bun:"bid_count,notnull,default:0"`

	// QuietDeadline is the durable "next check due at" timestamp driving the
	// going-once/going-twice/gone countdown. It is rederived from LastBidTime
	// on restart, so no in-memory timer is load-bearing.
	LastBidTime   time.Time `bun:"last_bid_time"`
	QuietDeadline time.Time `bun:"quiet_deadline"`
	StartTime     time.Time `bun:"start_time"`
	EndTime       time.Time `bun:"end_time"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type LotBid struct {
	bun.BaseModel `bun:"table:lot_bids,alias:lb"`

	ID        int64     `bun:"id,pk,autoincrement"`
	LotID     int64     `bun:"lot_id,notnull"`
	AuctionID int64     `bun:"auction_id,notnull"`
	BidderID  int64     `bun:"bidder_id,notnull"`
	Amount    int64     `bun:"amount,notnull"`
	Timestamp time.Time `bun:"timestamp,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
