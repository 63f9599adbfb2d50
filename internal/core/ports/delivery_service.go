package ports

import (
	"context"
	"time"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// DeliveryUpdateInput is the DTO passed from the transport layer to DeliveryService.
type DeliveryUpdateInput struct {
	OrderID    string
	CourierID  string
	Status     string
	Notes      string
	Location   *domain.Location // optional
	OccurredAt time.Time
}

// DeliveryService applies courier status updates to orders.
type DeliveryService interface {
	// Apply validates and applies an update on behalf of principal.
	Apply(ctx context.Context, principal *domain.User, input DeliveryUpdateInput) (*domain.Order, error)
	// Process applies an already-authorised update from the async pipeline,
	// skipping duplicates.
	Process(ctx context.Context, input DeliveryUpdateInput) error
	// History lists the updates recorded for an order principal may read.
	History(ctx context.Context, principal *domain.User, orderID string) ([]*domain.DeliveryUpdate, error)
}

// DeliveryProcessor is the part of DeliveryService the async pipeline needs.
type DeliveryProcessor interface {
	Process(ctx context.Context, input DeliveryUpdateInput) error
}
