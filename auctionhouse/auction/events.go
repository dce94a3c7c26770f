package auction

import (
	"context"
	"time"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
	"github.com/uptrace/bun"
)

type EventType string

const (
	EventBidAccepted      EventType = "bid_accepted"
	EventCountdownWarning EventType = "countdown_warning"
	EventLotActivated     EventType = "lot_activated"
	EventLotClosed        EventType = "lot_closed"
	EventAuctionEnded     EventType = "auction_ended"
)

// Event is a state-change notification fanned out to connected clients by the
// real-time transport. Reserve prices never appear here.
type Event struct {
	// EventID lets subscribers deduplicate redeliveries. Filled by the
	// transport when left empty.
	EventID    string           `json:"event_id,omitempty"`
	Type       EventType        `json:"type"`
	AuctionID  int64            `json:"auction_id"`
	LotNumber  int              `json:"lot_number,omitempty"`
	LotStatus  models.LotStatus `json:"lot_status,omitempty"`
	BidderID   int64            `json:"bidder_id,omitempty"`
	Amount     int64            `json:"amount,omitempty"`
	WinnerID   int64            `json:"winner_id,omitempty"`
	NextLot    int              `json:"next_lot,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher fans events out to connected clients. Implementations must be
// fire-and-forget; a publish failure never rolls back a bid or a sale.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Notifier receives advisory events destined for email/push delivery.
// Fire-and-forget, same as Publisher.
type Notifier interface {
	NotifyLotClosed(ctx context.Context, lot *models.Lot)
	NotifyLimitExhausted(ctx context.Context, userID int64, available, minNextBid int64)
}

// Settler turns a sold lot into buyer and vendor invoice state inside the
// closing transaction. Implemented by the settlement engine.
type Settler interface {
	SettleSold(ctx context.Context, tx bun.Tx, lot *models.Lot) error
}

// NopPublisher and NopNotifier keep the engine runnable without the external
// collaborators, e.g. in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

type NopNotifier struct{}

func (NopNotifier) NotifyLotClosed(context.Context, *models.Lot)              {}
func (NopNotifier) NotifyLimitExhausted(context.Context, int64, int64, int64) {}
