package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
	"github.com/swiftlogistics/order-api/internal/testutil/memstore"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, orderID, status string, _ time.Time) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, orderID, status string, _ time.Time) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, orderID+":"+status)
	return nil
}

// racingUpdates simulates another writer moving the order between the read
// and the guarded update.
type racingUpdates struct{ *memstore.Orders }

func (racingUpdates) Apply(context.Context, *domain.DeliveryUpdate) (*domain.Order, error) {
	return nil, domain.ErrInvalidTransition
}

// ---------------------------------------------------------------------------
// Helper: a service with one seeded order in the given status.
// ---------------------------------------------------------------------------

func newDeliverySvc(t *testing.T, status domain.OrderStatus, dedup DedupChecker) (*DeliveryService, *memstore.Orders, *recordingPublisher, string) {
	t.Helper()
	repo := memstore.NewOrders()
	now := time.Now().UTC()
	id := uuid.NewString()
	if err := repo.Create(context.Background(), &domain.Order{
		ID:        id,
		OwnerID:   client1.ID,
		Priority:  domain.PriorityNormal,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	pub := &recordingPublisher{}
	return NewDeliveryService(repo, repo, dedup, pub, zerolog.Nop()), repo, pub, id
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestDeliveryService_Apply_ValidTransition(t *testing.T) {
	svc, repo, pub, id := newDeliverySvc(t, domain.StatusCreated, nil)

	order, err := svc.Apply(context.Background(), courier, ports.DeliveryUpdateInput{
		OrderID:  id,
		Status:   "in_transit",
		Notes:    " picked up ",
		Location: &domain.Location{Lat: 6.9271, Lng: 79.8612},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if order.Status != domain.StatusInTransit {
		t.Fatalf("expected in_transit, got %s", order.Status)
	}

	history, _ := repo.ListByOrder(context.Background(), id)
	if len(history) != 1 {
		t.Fatalf("expected 1 delivery update, got %d", len(history))
	}
	if history[0].CourierID != courier.ID || history[0].Notes != "picked up" || history[0].FromStatus != domain.StatusCreated {
		t.Fatalf("unexpected update row: %+v", history[0])
	}

	events := pub.Events()
	if len(events) != 1 || events[0].Type != domain.EventOrderStatusChanged || events[0].Status != "in_transit" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestDeliveryService_Apply_InvalidTransition(t *testing.T) {
	svc, repo, pub, id := newDeliverySvc(t, domain.StatusDelivered, nil)

	_, err := svc.Apply(context.Background(), courier, ports.DeliveryUpdateInput{OrderID: id, Status: "in_transit"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if history, _ := repo.ListByOrder(context.Background(), id); len(history) != 0 {
		t.Fatalf("expected no update rows, got %d", len(history))
	}
	if len(pub.Events()) != 0 {
		t.Fatalf("expected no events on rejected update")
	}
}

func TestDeliveryService_Apply_LostRace(t *testing.T) {
	repo := memstore.NewOrders()
	id := uuid.NewString()
	_ = repo.Create(context.Background(), &domain.Order{ID: id, OwnerID: client1.ID, Status: domain.StatusCreated})
	svc := NewDeliveryService(repo, racingUpdates{repo}, nil, nil, zerolog.Nop())

	_, err := svc.Apply(context.Background(), admin, ports.DeliveryUpdateInput{OrderID: id, Status: "cancelled"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDeliveryService_Apply_Rejections(t *testing.T) {
	svc, _, _, id := newDeliverySvc(t, domain.StatusCreated, nil)

	cases := []struct {
		name      string
		principal *domain.User
		in        ports.DeliveryUpdateInput
		want      error
	}{
		{"no principal", nil, ports.DeliveryUpdateInput{OrderID: id, Status: "in_transit"}, domain.ErrUnauthenticated},
		{"client", client1, ports.DeliveryUpdateInput{OrderID: id, Status: "in_transit"}, domain.ErrForbidden},
		{"unknown status", courier, ports.DeliveryUpdateInput{OrderID: id, Status: "lost"}, domain.ErrValidation},
		{"bad location", courier, ports.DeliveryUpdateInput{OrderID: id, Status: "in_transit", Location: &domain.Location{Lat: 100}}, domain.ErrValidation},
		{"missing order", courier, ports.DeliveryUpdateInput{OrderID: uuid.NewString(), Status: "in_transit"}, domain.ErrOrderNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(context.Background(), tc.principal, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDeliveryService_Apply_ReportsEveryInvalidField(t *testing.T) {
	svc, _, _, _ := newDeliverySvc(t, domain.StatusCreated, nil)

	_, err := svc.Apply(context.Background(), courier, ports.DeliveryUpdateInput{
		OrderID:  "not-a-uuid",
		Status:   "teleported",
		Notes:    strings.Repeat("n", 1001),
		Location: &domain.Location{Lat: 91, Lng: -181, Description: strings.Repeat("d", 256)},
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, f := range verr.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"order_id", "status", "notes", "location.lat", "location.lng", "location.description"} {
		if !got[want] {
			t.Errorf("missing field %q in %+v", want, verr.Fields)
		}
	}
}

// ---------------------------------------------------------------------------
// Process
// ---------------------------------------------------------------------------

func TestDeliveryService_Process_MarksAfterApply(t *testing.T) {
	dedup := &stubDedup{}
	svc, repo, _, id := newDeliverySvc(t, domain.StatusCreated, dedup)

	err := svc.Process(context.Background(), ports.DeliveryUpdateInput{
		OrderID:    id,
		CourierID:  courier.ID,
		Status:     "in_transit",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != id+":in_transit" {
		t.Fatalf("expected dedup key to be marked, got %v", dedup.marked)
	}
	order, _ := repo.FindByID(context.Background(), id)
	if order.Status != domain.StatusInTransit {
		t.Fatalf("expected in_transit, got %s", order.Status)
	}
}

func TestDeliveryService_Process_DuplicateSkipped(t *testing.T) {
	dedup := &stubDedup{dupResult: true}
	svc, repo, _, id := newDeliverySvc(t, domain.StatusCreated, dedup)

	err := svc.Process(context.Background(), ports.DeliveryUpdateInput{OrderID: id, Status: "in_transit", OccurredAt: time.Now()})
	if err != nil {
		t.Fatalf("expected nil for duplicate, got %v", err)
	}
	if history, _ := repo.ListByOrder(context.Background(), id); len(history) != 0 {
		t.Fatalf("expected duplicate to be skipped, got %d rows", len(history))
	}
}

func TestDeliveryService_Process_DedupErrorProcessesAnyway(t *testing.T) {
	dedup := &stubDedup{dupErr: errors.New("redis down"), markErr: errors.New("redis down")}
	svc, repo, _, id := newDeliverySvc(t, domain.StatusCreated, dedup)

	err := svc.Process(context.Background(), ports.DeliveryUpdateInput{OrderID: id, Status: "cancelled", OccurredAt: time.Now()})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	order, _ := repo.FindByID(context.Background(), id)
	if order.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
}

func TestDeliveryService_Process_FailureNotMarked(t *testing.T) {
	dedup := &stubDedup{}
	svc, _, _, id := newDeliverySvc(t, domain.StatusCreated, dedup)

	err := svc.Process(context.Background(), ports.DeliveryUpdateInput{OrderID: id, Status: "delivered", OccurredAt: time.Now()})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(dedup.marked) != 0 {
		t.Fatalf("failed updates must not be marked, got %v", dedup.marked)
	}
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestDeliveryService_History(t *testing.T) {
	svc, _, _, id := newDeliverySvc(t, domain.StatusCreated, nil)
	ctx := context.Background()

	for _, st := range []string{"in_transit", "delivered"} {
		if _, err := svc.Apply(ctx, courier, ports.DeliveryUpdateInput{OrderID: id, Status: st}); err != nil {
			t.Fatalf("apply %s: %v", st, err)
		}
	}

	history, err := svc.History(ctx, client1, id)
	if err != nil {
		t.Fatalf("owner history: %v", err)
	}
	if len(history) != 2 || history[0].Status != domain.StatusInTransit || history[1].Status != domain.StatusDelivered {
		t.Fatalf("unexpected history: %+v", history)
	}

	if _, err := svc.History(ctx, client2, id); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for non-owner, got %v", err)
	}
}
