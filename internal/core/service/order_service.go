package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
	"github.com/swiftlogistics/order-api/internal/pkg/metrics"
)

const (
	maxAddressLen     = 500
	maxDescriptionLen = 1000
)

type OrderService struct {
	repo      ports.OrderRepository
	publisher ports.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewOrderService(repo ports.OrderRepository, publisher ports.EventPublisher, logger zerolog.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates input and persists a new order owned by principal in
// status created.
func (s *OrderService) CreateOrder(ctx context.Context, principal *domain.User, input ports.CreateOrderInput) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}

	pickup := strings.TrimSpace(input.PickupAddress)
	delivery := strings.TrimSpace(input.DeliveryAddress)
	priority, priorityOK := domain.ParsePriority(strings.ToLower(strings.TrimSpace(input.Priority)))

	verr := &domain.ValidationError{}
	checkAddress(verr, "pickup_address", pickup)
	checkAddress(verr, "delivery_address", delivery)
	checkPackage(verr, input.Package)
	if !priorityOK {
		verr.Add("priority", "must be one of: low normal high urgent")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         principal.ID,
		PickupAddress:   pickup,
		DeliveryAddress: delivery,
		Package:         input.Package,
		Priority:        priority,
		Status:          domain.StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Package.Description = strings.TrimSpace(order.Package.Description)

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.Priority)).Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("owner_id", order.OwnerID).
		Str("priority", string(order.Priority)).
		Msg("order created")

	s.publish(ctx, domain.OrderEvent{
		ID:         uuid.NewString(),
		Type:       domain.EventOrderCreated,
		OrderID:    order.ID,
		OwnerID:    order.OwnerID,
		Status:     string(order.Status),
		Priority:   string(order.Priority),
		ActorID:    principal.ID,
		OccurredAt: now,
	})

	return order, nil
}

// ListOrders returns the orders visible to principal. Only admins may request
// the unscoped view; everyone else is always scoped to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, principal *domain.User, input ports.ListOrdersInput) ([]*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if input.All && !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	filter := ports.ListOrdersFilter{}
	if !input.All {
		filter.OwnerID = principal.ID
	}
	if input.Status != "" {
		st, ok := domain.ParseOrderStatus(input.Status)
		if !ok {
			return nil, domain.NewValidationError("status", "must be one of: created in_transit delivered cancelled")
		}
		filter.Status = st
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// GetOrder returns the order if principal may see it. Missing and foreign
// orders are indistinguishable to the caller.
func (s *OrderService) GetOrder(ctx context.Context, principal *domain.User, id string) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !order.VisibleTo(principal) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// Stats aggregates order counts per status. Admin only.
func (s *OrderService) Stats(ctx context.Context, principal *domain.User) (*domain.OrderStats, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.countByStatus(ctx)
}

// RefreshStatusGauge recomputes the orders_by_status gauge. It is run by the
// statistics job.
func (s *OrderService) RefreshStatusGauge(ctx context.Context) error {
	stats, err := s.countByStatus(ctx)
	if err != nil {
		return err
	}
	for _, st := range domain.OrderStatuses {
		metrics.OrdersByStatus.WithLabelValues(string(st)).Set(float64(stats.ByStatus[st]))
	}
	return nil
}

func (s *OrderService) countByStatus(ctx context.Context) (*domain.OrderStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	stats := &domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))}
	for _, st := range domain.OrderStatuses {
		stats.ByStatus[st] = counts[st]
		stats.Total += counts[st]
	}
	return stats, nil
}

func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", event.OrderID).Str("event", event.Type).Msg("failed to publish order event")
	}
}

func checkAddress(verr *domain.ValidationError, field, value string) {
	switch {
	case value == "":
		verr.Add(field, "is required")
	case len(value) > maxAddressLen:
		verr.Add(field, fmt.Sprintf("must be at most %d characters", maxAddressLen))
	}
}

func checkPackage(verr *domain.ValidationError, p domain.PackageDetails) {
	if p.WeightKg <= 0 {
		verr.Add("package_details.weight", "must be greater than 0")
	}
	if p.Dimensions.LengthCm < 0 {
		verr.Add("package_details.dimensions.length", "must not be negative")
	}
	if p.Dimensions.WidthCm < 0 {
		verr.Add("package_details.dimensions.width", "must not be negative")
	}
	if p.Dimensions.HeightCm < 0 {
		verr.Add("package_details.dimensions.height", "must not be negative")
	}
	if p.DeclaredValue < 0 {
		verr.Add("package_details.declared_value", "must not be negative")
	}
	if len(strings.TrimSpace(p.Description)) > maxDescriptionLen {
		verr.Add("package_details.description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
}
