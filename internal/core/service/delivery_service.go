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

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, orderID, status string, ts time.Time) (bool, error)
	Mark(ctx context.Context, orderID, status string, ts time.Time) error
}

const (
	modeSync  = "sync"
	modeAsync = "async"

	maxNotesLen            = 1000
	maxLocationDescription = 255
)

type DeliveryService struct {
	orders    ports.OrderRepository
	updates   ports.DeliveryUpdateRepository
	dedup     DedupChecker
	publisher ports.EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewDeliveryService returns a DeliveryService. dedup and publisher may be nil.
func NewDeliveryService(
	orders ports.OrderRepository,
	updates ports.DeliveryUpdateRepository,
	dedup DedupChecker,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *DeliveryService {
	return &DeliveryService{
		orders:    orders,
		updates:   updates,
		dedup:     dedup,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Apply applies a status update reported directly by principal, who must be a
// courier or an admin.
func (s *DeliveryService) Apply(ctx context.Context, principal *domain.User, in ports.DeliveryUpdateInput) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if principal.Role != domain.RoleCourier && !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	in.CourierID = principal.ID
	return s.apply(ctx, in, modeSync)
}

// Process validates, deduplicates and persists a single queued update.
func (s *DeliveryService) Process(ctx context.Context, in ports.DeliveryUpdateInput) error {
	if s.dedup != nil && !in.OccurredAt.IsZero() {
		isDup, err := s.dedup.IsDuplicate(ctx, in.OrderID, in.Status, in.OccurredAt)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("order_id", in.OrderID).Msg("dedup check failed, processing anyway")
		case isDup:
			metrics.DeliveryUpdatesDedupTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Str("order_id", in.OrderID).Str("status", in.Status).Msg("duplicate update skipped")
			return nil
		default:
			metrics.DeliveryUpdatesDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	if _, err := s.apply(ctx, in, modeAsync); err != nil {
		return err
	}

	if s.dedup != nil && !in.OccurredAt.IsZero() {
		if err := s.dedup.Mark(ctx, in.OrderID, in.Status, in.OccurredAt); err != nil {
			s.log.Warn().Err(err).Str("order_id", in.OrderID).Msg("failed to set dedup key")
		}
	}
	return nil
}

// History returns the recorded updates of an order visible to principal.
func (s *DeliveryService) History(ctx context.Context, principal *domain.User, orderID string) ([]*domain.DeliveryUpdate, error) {
	order, err := s.visibleOrder(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list delivery updates: %w", err)
	}
	if updates == nil {
		updates = []*domain.DeliveryUpdate{}
	}
	return updates, nil
}

func (s *DeliveryService) apply(ctx context.Context, in ports.DeliveryUpdateInput, mode string) (*domain.Order, error) {
	next, err := validateUpdate(in)
	if err != nil {
		metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("order_not_found").Inc()
			return nil, domain.ErrOrderNotFound
		}
		metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("apply_failed").Inc()
		return nil, fmt.Errorf("apply update: %w", err)
	}

	if !order.Status.CanTransitionTo(next) {
		metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, next)
	}

	now := s.now()
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	update := &domain.DeliveryUpdate{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		CourierID:  in.CourierID,
		FromStatus: order.Status,
		Status:     next,
		Notes:      strings.TrimSpace(in.Notes),
		Location:   in.Location,
		OccurredAt: occurredAt.UTC(),
		CreatedAt:  now,
	}

	updated, err := s.updates.Apply(ctx, update)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Another update moved the order first.
			metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("invalid_transition").Inc()
			return nil, fmt.Errorf("%w: order %s is no longer %s", domain.ErrInvalidTransition, order.ID, order.Status)
		}
		metrics.DeliveryUpdatesErrorsTotal.WithLabelValues("apply_failed").Inc()
		return nil, fmt.Errorf("apply update: %w", err)
	}

	metrics.DeliveryUpdatesProcessedTotal.WithLabelValues(string(next), mode).Inc()
	s.log.Info().
		Str("order_id", order.ID).
		Str("from", string(update.FromStatus)).
		Str("status", string(next)).
		Str("courier_id", in.CourierID).
		Str("mode", mode).
		Msg("delivery update applied")

	if s.publisher != nil {
		event := domain.OrderEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventOrderStatusChanged,
			OrderID:    updated.ID,
			OwnerID:    updated.OwnerID,
			Status:     string(updated.Status),
			Priority:   string(updated.Priority),
			ActorID:    in.CourierID,
			OccurredAt: update.OccurredAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("order_id", updated.ID).Msg("failed to publish order event")
		}
	}

	return updated, nil
}

func (s *DeliveryService) visibleOrder(ctx context.Context, principal *domain.User, orderID string) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	if !order.VisibleTo(principal) {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func validateUpdate(in ports.DeliveryUpdateInput) (domain.OrderStatus, error) {
	verr := &domain.ValidationError{}
	if _, err := uuid.Parse(in.OrderID); err != nil {
		verr.Add("order_id", "must be a valid UUID")
	}
	next, ok := domain.ParseOrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !ok {
		verr.Add("status", "must be one of: created in_transit delivered cancelled")
	}
	if len(strings.TrimSpace(in.Notes)) > maxNotesLen {
		verr.Add("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	if loc := in.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 {
			verr.Add("location.lat", "must be between -90 and 90")
		}
		if loc.Lng < -180 || loc.Lng > 180 {
			verr.Add("location.lng", "must be between -180 and 180")
		}
		if len(strings.TrimSpace(loc.Description)) > maxLocationDescription {
			verr.Add("location.description", fmt.Sprintf("must be at most %d characters", maxLocationDescription))
		}
	}
	return next, verr.OrNil()
}
