package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
	"github.com/swiftlogistics/order-api/internal/testutil/memstore"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderEvent(nil), p.events...)
}

type failingOrderRepo struct {
	*memstore.Orders
	err error
}

func (r failingOrderRepo) List(context.Context, ports.ListOrdersFilter) ([]*domain.Order, error) {
	return nil, r.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	client1 = &domain.User{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleClient}
	client2 = &domain.User{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleClient}
	courier = &domain.User{ID: "33333333-3333-3333-3333-333333333333", Role: domain.RoleCourier}
	admin   = &domain.User{ID: "44444444-4444-4444-4444-444444444444", Role: domain.RoleAdmin}
)

func validOrderInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		PickupAddress:   "123 Warehouse St",
		DeliveryAddress: "456 Customer Ln",
		Package:         domain.PackageDetails{WeightKg: 2.5},
		Priority:        "high",
	}
}

func newOrderSvc(t *testing.T) (*OrderService, *memstore.Orders, *recordingPublisher) {
	t.Helper()
	repo := memstore.NewOrders()
	pub := &recordingPublisher{}
	svc := NewOrderService(repo, pub, zerolog.Nop())

	// Strictly increasing timestamps keep listing order deterministic.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, repo, pub
}

// ---------------------------------------------------------------------------
// CreateOrder
// ---------------------------------------------------------------------------

func TestOrderService_CreateOrder_Success(t *testing.T) {
	svc, repo, pub := newOrderSvc(t)

	order, err := svc.CreateOrder(context.Background(), client1, validOrderInput())
	require.NoError(t, err)

	_, parseErr := uuid.Parse(order.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, client1.ID, order.OwnerID)
	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.Equal(t, domain.PriorityHigh, order.Priority)
	assert.Equal(t, "123 Warehouse St", order.PickupAddress)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, stored)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOrderCreated, events[0].Type)
	assert.Equal(t, order.ID, events[0].OrderID)
}

func TestOrderService_CreateOrder_DefaultPriority(t *testing.T) {
	svc, _, _ := newOrderSvc(t)

	in := validOrderInput()
	in.Priority = ""
	order, err := svc.CreateOrder(context.Background(), client1, in)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityNormal, order.Priority)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.CreateOrderInput)
		fields []string
	}{
		{"zero weight", func(in *ports.CreateOrderInput) { in.Package.WeightKg = 0 }, []string{"package_details.weight"}},
		{"negative weight", func(in *ports.CreateOrderInput) { in.Package.WeightKg = -1 }, []string{"package_details.weight"}},
		{"blank pickup", func(in *ports.CreateOrderInput) { in.PickupAddress = "   " }, []string{"pickup_address"}},
		{"unknown priority", func(in *ports.CreateOrderInput) { in.Priority = "asap" }, []string{"priority"}},
		{"negative declared value", func(in *ports.CreateOrderInput) { in.Package.DeclaredValue = -10 }, []string{"package_details.declared_value"}},
		{"overlong description", func(in *ports.CreateOrderInput) { in.Package.Description = strings.Repeat("x", 1001) }, []string{"package_details.description"}},
		{
			"blank pickup, zero weight and bogus priority",
			func(in *ports.CreateOrderInput) {
				in.PickupAddress = "   "
				in.Package = domain.PackageDetails{}
				in.Priority = "bogus"
			},
			[]string{"pickup_address", "package_details.weight", "priority"},
		},
		{
			"everything at once",
			func(in *ports.CreateOrderInput) {
				in.PickupAddress = ""
				in.DeliveryAddress = ""
				in.Package.WeightKg = 0
				in.Package.Dimensions.HeightCm = -1
			},
			[]string{"pickup_address", "delivery_address", "package_details.weight", "package_details.dimensions.height"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, pub := newOrderSvc(t)
			in := validOrderInput()
			tc.mutate(&in)

			_, err := svc.CreateOrder(context.Background(), client1, in)
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tc.fields, got)

			all, _ := repo.List(context.Background(), ports.ListOrdersFilter{})
			assert.Empty(t, all, "nothing may be persisted on validation failure")
			assert.Empty(t, pub.Events())
		})
	}
}

func TestOrderService_CreateOrder_PublishFailureIsNotFatal(t *testing.T) {
	svc, _, pub := newOrderSvc(t)
	pub.err = errors.New("sink down")

	order, err := svc.CreateOrder(context.Background(), client1, validOrderInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

// ---------------------------------------------------------------------------
// ListOrders
// ---------------------------------------------------------------------------

func TestOrderService_ListOrders_OwnerIsolation(t *testing.T) {
	svc, _, _ := newOrderSvc(t)
	ctx := context.Background()

	a1, err := svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)
	b1, err := svc.CreateOrder(ctx, client2, validOrderInput())
	require.NoError(t, err)
	a2, err := svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)

	mine, err := svc.ListOrders(ctx, client1, ports.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a1.ID, mine[0].ID)
	assert.Equal(t, a2.ID, mine[1].ID)

	theirs, err := svc.ListOrders(ctx, client2, ports.ListOrdersInput{})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, b1.ID, theirs[0].ID)
}

func TestOrderService_ListOrders_EmptyIsNotNil(t *testing.T) {
	svc, _, _ := newOrderSvc(t)

	orders, err := svc.ListOrders(context.Background(), client1, ports.ListOrdersInput{})
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderService_ListOrders_Scope(t *testing.T) {
	svc, _, _ := newOrderSvc(t)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, client2, validOrderInput())
	require.NoError(t, err)

	_, err = svc.ListOrders(ctx, client1, ports.ListOrdersInput{All: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ListOrders(ctx, courier, ports.ListOrdersInput{All: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	own, err := svc.ListOrders(ctx, admin, ports.ListOrdersInput{})
	require.NoError(t, err)
	assert.Empty(t, own, "admins without scope=all see only their own orders")

	all, err := svc.ListOrders(ctx, admin, ports.ListOrdersInput{All: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderService_ListOrders_StatusFilter(t *testing.T) {
	svc, repo, _ := newOrderSvc(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)

	_, err = repo.Apply(ctx, &domain.DeliveryUpdate{
		ID: uuid.NewString(), OrderID: first.ID,
		FromStatus: domain.StatusCreated, Status: domain.StatusCancelled,
	})
	require.NoError(t, err)

	cancelled, err := svc.ListOrders(ctx, client1, ports.ListOrdersInput{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	_, err = svc.ListOrders(ctx, client1, ports.ListOrdersInput{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderService_ListOrders_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewOrderService(failingOrderRepo{Orders: memstore.NewOrders(), err: boom}, nil, zerolog.Nop())

	_, err := svc.ListOrders(context.Background(), client1, ports.ListOrdersInput{})
	assert.ErrorIs(t, err, boom)
}

// ---------------------------------------------------------------------------
// GetOrder / Stats
// ---------------------------------------------------------------------------

func TestOrderService_GetOrder(t *testing.T) {
	svc, _, _ := newOrderSvc(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, client1, validOrderInput())
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, client1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = svc.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(ctx, client2, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(ctx, client1, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(ctx, client1, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderService_Stats(t *testing.T) {
	svc, repo, _ := newOrderSvc(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		o, err := svc.CreateOrder(ctx, client1, validOrderInput())
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	for _, step := range []domain.DeliveryUpdate{
		{OrderID: ids[0], FromStatus: domain.StatusCreated, Status: domain.StatusInTransit},
		{OrderID: ids[0], FromStatus: domain.StatusInTransit, Status: domain.StatusDelivered},
		{OrderID: ids[1], FromStatus: domain.StatusCreated, Status: domain.StatusInTransit},
	} {
		step := step
		step.ID = uuid.NewString()
		_, err := repo.Apply(ctx, &step)
		require.NoError(t, err)
	}

	_, err := svc.Stats(ctx, client1)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 2, stats.ByStatus[domain.StatusCreated])
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusInTransit])
	assert.EqualValues(t, 1, stats.ByStatus[domain.StatusDelivered])
	assert.EqualValues(t, 0, stats.ByStatus[domain.StatusCancelled])
	assert.InDelta(t, 25.0, stats.DeliveryRate(), 0.001)

	require.NoError(t, svc.RefreshStatusGauge(ctx))
}
