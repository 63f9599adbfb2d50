package ports

import (
	"context"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// EventReader reads back the recorded events of an order, oldest first.
type EventReader interface {
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}
