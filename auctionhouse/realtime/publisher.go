package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/numisbid/auctionhouse/auctionhouse/auction"
)

// Channel names the pub/sub channel carrying one auction's live events.
// Gateway processes subscribe here to fan events out to bidders' sockets.
func Channel(auctionID int64) string {
	return fmt.Sprintf("auction:%d:events", auctionID)
}

// Publisher pushes auction events onto redis pub/sub. It is fire and forget:
// a failed publish is logged and dropped, it never fails the bid or sale that
// produced the event.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (p *Publisher) Publish(ctx context.Context, event auction.Event) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode auction event",
			slog.String("type", "error"),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}

	if err := p.client.Publish(ctx, Channel(event.AuctionID), payload).Err(); err != nil {
		slog.Error("Failed to publish auction event",
			slog.String("type", "error"),
			slog.String("event", string(event.Type)),
			slog.Int64("auction_id", event.AuctionID),
			slog.Any("error", err))
	}
}

// Subscribe opens a subscription to one auction's event channel for gateway
// use. The caller owns the returned PubSub and must close it.
func Subscribe(ctx context.Context, client *redis.Client, auctionID int64) *redis.PubSub {
	return client.Subscribe(ctx, Channel(auctionID))
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
