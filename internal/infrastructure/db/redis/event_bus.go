package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

const channelPrefix = "orders."

// EventBus publishes order events on Redis pub/sub, one channel per event type
// (orders.order.created, orders.order.status_changed).
type EventBus struct {
	client redis.Cmdable
}

func NewEventBus(client redis.Cmdable) *EventBus {
	return &EventBus{client: client}
}

// Name identifies the sink in logs and metrics.
func (b *EventBus) Name() string { return "redis" }

func (b *EventBus) Publish(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(event.Type), payload).Err(); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

// Channel returns the pub/sub channel for an event type.
func Channel(eventType string) string {
	return channelPrefix + eventType
}
