package ports

import (
	"context"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// CreateOrderInput carries all data needed to create a new order.
type CreateOrderInput struct {
	PickupAddress   string
	DeliveryAddress string
	Package         domain.PackageDetails
	Priority        string
}

// ListOrdersInput carries the parameters of the list endpoint.
type ListOrdersInput struct {
	// All requests the unscoped view; only admins may set it.
	All    bool
	Status string
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, principal *domain.User, input CreateOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, principal *domain.User, input ListOrdersInput) ([]*domain.Order, error)
	GetOrder(ctx context.Context, principal *domain.User, id string) (*domain.Order, error)
	Stats(ctx context.Context, principal *domain.User) (*domain.OrderStats, error)
}
