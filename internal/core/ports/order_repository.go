package ports

import (
	"context"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// ListOrdersFilter carries the query parameters for listing orders.
// OwnerID is always set by the service layer unless an admin asked for all orders.
type ListOrdersFilter struct {
	OwnerID string             // empty = every owner
	Status  domain.OrderStatus // optional
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns matching orders ascending by creation time, ties broken by ID.
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

// DeliveryUpdateRepository persists status changes together with their audit row.
type DeliveryUpdateRepository interface {
	// Apply moves the order from update.FromStatus to update.Status and records
	// the update atomically. It returns domain.ErrInvalidTransition when the
	// stored status no longer equals update.FromStatus.
	Apply(ctx context.Context, update *domain.DeliveryUpdate) (*domain.Order, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.DeliveryUpdate, error)
}
