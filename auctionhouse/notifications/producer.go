package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/numisbid/auctionhouse/auctionhouse/database/models"
)

type messageKind string

const (
	kindLotClosed      messageKind = "lot_closed"
	kindLimitExhausted messageKind = "limit_exhausted"
)

// message is the envelope handed to the downstream email/push workers.
type message struct {
	Kind       messageKind `json:"kind"`
	AuctionID  int64       `json:"auction_id,omitempty"`
	LotNumber  int         `json:"lot_number,omitempty"`
	LotStatus  string      `json:"lot_status,omitempty"`
	WinnerID   int64       `json:"winner_id,omitempty"`
	Amount     int64       `json:"amount,omitempty"`
	UserID     int64       `json:"user_id,omitempty"`
	Available  int64       `json:"available,omitempty"`
	MinNextBid int64       `json:"min_next_bid,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Producer hands advisory notifications to kafka for the delivery workers.
// Writes are async and failures are logged and swallowed; a notification must
// never fail or roll back a bid, sale, or transfer.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("Failed to deliver notifications",
					slog.String("type", "error"),
					slog.Int("count", len(messages)),
					slog.Any("error", err))
			}
		},
	}
	return &Producer{writer: writer}
}

func (p *Producer) NotifyLotClosed(ctx context.Context, lot *models.Lot) {
	p.send(ctx, strconv.FormatInt(lot.AuctionID, 10), message{
		Kind:       kindLotClosed,
		AuctionID:  lot.AuctionID,
		LotNumber:  lot.Number,
		LotStatus:  string(lot.Status),
		WinnerID:   lot.WinnerID,
		Amount:     lot.CurrentBid,
		OccurredAt: time.Now(),
	})
}

func (p *Producer) NotifyLimitExhausted(ctx context.Context, userID int64, available, minNextBid int64) {
	p.send(ctx, strconv.FormatInt(userID, 10), message{
		Kind:       kindLimitExhausted,
		UserID:     userID,
		Available:  available,
		MinNextBid: minNextBid,
		OccurredAt: time.Now(),
	})
}

func (p *Producer) send(ctx context.Context, key string, msg message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode notification",
			slog.String("type", "error"),
			slog.String("kind", string(msg.Kind)),
			slog.Any("error", err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		slog.Error("Failed to enqueue notification",
			slog.String("type", "error"),
			slog.String("kind", string(msg.Kind)),
			slog.Any("error", err))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
