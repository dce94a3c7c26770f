package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AuctionMode string

const (
	AuctionModeSingle     AuctionMode = "single"
	AuctionModeSequential AuctionMode = "sequential"
)

type AuctionStatus string

const (
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IncrementSlab is one row of an auction's increment table. A zero MaxPrice
// marks the open-ended top slab.
type IncrementSlab struct {
	MinPrice  int64 `json:"min_price"`
	MaxPrice  int64 `json:"max_price"`
	Increment int64 `json:"increment"`
}

type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	ID          int64           `bun:"id,pk,autoincrement"`
	AuctionCode string          `bun:"auction_code,notnull,unique"`
	Title       string          `bun:"title,notnull"`
	Mode        AuctionMode     `bun:"mode,notnull"`
	Status      AuctionStatus   `bun:"status,notnull"`
	Increments  []IncrementSlab `bun:"increments,type:jsonb"`
	LotDuration time.Duration   `bun:"lot_duration,notnull"`
	StartTime   time.Time       `bun:"start_time,notnull"`
	EndTime     time.Time       `bun:"end_time,notnull"`

	Lots []*Lot `bun:"rel:has-many,join:id=auction_id"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
