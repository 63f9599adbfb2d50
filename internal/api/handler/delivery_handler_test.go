package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftlogistics/order-api/internal/api/middleware"
	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

type stubDeliveryService struct {
	applyFn   func(ctx context.Context, p *domain.User, in ports.DeliveryUpdateInput) (*domain.Order, error)
	historyFn func(ctx context.Context, p *domain.User, orderID string) ([]*domain.DeliveryUpdate, error)
}

func (s *stubDeliveryService) Apply(ctx context.Context, p *domain.User, in ports.DeliveryUpdateInput) (*domain.Order, error) {
	return s.applyFn(ctx, p, in)
}

func (s *stubDeliveryService) Process(context.Context, ports.DeliveryUpdateInput) error {
	return nil
}

func (s *stubDeliveryService) History(ctx context.Context, p *domain.User, orderID string) ([]*domain.DeliveryUpdate, error) {
	return s.historyFn(ctx, p, orderID)
}

type stubQueue struct {
	got []ports.DeliveryUpdateInput
	err error
}

func (q *stubQueue) EnqueueBatch(_ context.Context, updates []ports.DeliveryUpdateInput) (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	q.got = append(q.got, updates...)
	return len(updates), nil
}

var testCourier = &domain.User{ID: "33333333-3333-3333-3333-333333333333", Role: domain.RoleCourier}

const testOrderID = "22222222-2222-2222-2222-222222222222"

func TestDeliveryHandler_UpdateStatus(t *testing.T) {
	stub := &stubDeliveryService{
		applyFn: func(_ context.Context, p *domain.User, in ports.DeliveryUpdateInput) (*domain.Order, error) {
			assert.Equal(t, testCourier.ID, p.ID)
			assert.Equal(t, testOrderID, in.OrderID)
			assert.Equal(t, "in_transit", in.Status)
			require.NotNil(t, in.Location)
			assert.Equal(t, 6.9271, in.Location.Lat)
			o := sampleOrder(testClient.ID)
			o.Status = domain.StatusInTransit
			return o, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/orders/"+testOrderID+"/status",
		`{"status":"in_transit","notes":"picked up","location":{"lat":6.9271,"lng":79.8612}}`)
	c.SetParamNames("id")
	c.SetParamValues(testOrderID)
	middleware.SetPrincipal(c, testCourier)

	require.NoError(t, NewDeliveryHandler(stub, &stubQueue{}, zerolog.Nop()).UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "in_transit", resp.Status)
}

func TestDeliveryHandler_UpdateStatus_PassesServiceValidation(t *testing.T) {
	stub := &stubDeliveryService{
		applyFn: func(_ context.Context, _ *domain.User, in ports.DeliveryUpdateInput) (*domain.Order, error) {
			require.NotNil(t, in.Location)
			assert.Equal(t, 120.0, in.Location.Lat)
			assert.Equal(t, "teleported", in.Status)
			verr := &domain.ValidationError{}
			verr.Add("status", "must be one of: created in_transit delivered cancelled")
			verr.Add("location.lat", "must be between -90 and 90")
			return nil, verr
		},
	}
	c, _ := newTestContext(http.MethodPost, "/orders/"+testOrderID+"/status",
		`{"status":"teleported","location":{"lat":120,"lng":0}}`)
	c.SetParamNames("id")
	c.SetParamValues(testOrderID)
	middleware.SetPrincipal(c, testCourier)

	err := NewDeliveryHandler(stub, &stubQueue{}, zerolog.Nop()).UpdateStatus(c)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Len(t, verr.Fields, 2)
}

func TestDeliveryHandler_History(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubDeliveryService{
		historyFn: func(_ context.Context, _ *domain.User, orderID string) ([]*domain.DeliveryUpdate, error) {
			return []*domain.DeliveryUpdate{{
				ID: "u1", OrderID: orderID, CourierID: testCourier.ID,
				FromStatus: domain.StatusCreated, Status: domain.StatusInTransit,
				OccurredAt: at, CreatedAt: at,
			}}, nil
		},
	}
	c, rec := newTestContext(http.MethodGet, "/orders/"+testOrderID+"/updates", "")
	c.SetParamNames("id")
	c.SetParamValues(testOrderID)
	middleware.SetPrincipal(c, testClient)

	require.NoError(t, NewDeliveryHandler(stub, &stubQueue{}, zerolog.Nop()).History(c))

	var resp []deliveryUpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "created", resp[0].FromStatus)
	assert.Equal(t, "in_transit", resp[0].Status)
}

func TestDeliveryHandler_Batch(t *testing.T) {
	queue := &stubQueue{}
	c, rec := newTestContext(http.MethodPost, "/delivery-updates/batch", `[
		{"order_id":"`+testOrderID+`","status":"in_transit","timestamp":"2026-03-01T12:00:00Z"},
		{"order_id":"`+testOrderID+`","status":"delivered","timestamp":"2026-03-01T13:00:00+02:00","notes":"left at door"}
	]`)
	middleware.SetPrincipal(c, testCourier)

	require.NoError(t, NewDeliveryHandler(&stubDeliveryService{}, queue, zerolog.Nop()).Batch(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"accepted":2}`, rec.Body.String())

	require.Len(t, queue.got, 2)
	assert.Equal(t, testCourier.ID, queue.got[0].CourierID)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), queue.got[1].OccurredAt)
}

func TestDeliveryHandler_Batch_ItemErrors(t *testing.T) {
	queue := &stubQueue{}
	c, _ := newTestContext(http.MethodPost, "/delivery-updates/batch", `[
		{"order_id":"`+testOrderID+`","status":"in_transit","timestamp":"2026-03-01T12:00:00Z"},
		{"order_id":"not-a-uuid","status":"in_transit","timestamp":"2026-03-01T12:00:00Z"},
		{"order_id":"`+testOrderID+`","status":"lost","timestamp":"2026-03-01T12:00:00Z"}
	]`)
	middleware.SetPrincipal(c, testCourier)

	err := NewDeliveryHandler(&stubDeliveryService{}, queue, zerolog.Nop()).Batch(c)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "[1].order_id", verr.Fields[0].Field)
	assert.Equal(t, "[2].status", verr.Fields[1].Field)
	assert.Empty(t, queue.got, "nothing is queued when any item is invalid")
}

func TestDeliveryHandler_Batch_CollectsEveryItemError(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/delivery-updates/batch",
		`[{"order_id":"not-a-uuid","status":"lost","timestamp":"2026-03-01T12:00:00Z","location":{"lat":95,"lng":0}}]`)
	middleware.SetPrincipal(c, testCourier)

	err := NewDeliveryHandler(&stubDeliveryService{}, &stubQueue{}, zerolog.Nop()).Batch(c)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"[0].order_id", "[0].location.lat", "[0].status"}, fields)
}

func TestDeliveryHandler_Batch_Empty(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/delivery-updates/batch", `[]`)
	middleware.SetPrincipal(c, testCourier)

	err := NewDeliveryHandler(&stubDeliveryService{}, &stubQueue{}, zerolog.Nop()).Batch(c)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeliveryHandler_Batch_QueueUnavailable(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/delivery-updates/batch",
		`[{"order_id":"`+testOrderID+`","status":"in_transit","timestamp":"2026-03-01T12:00:00Z"}]`)
	middleware.SetPrincipal(c, testCourier)

	err := NewDeliveryHandler(&stubDeliveryService{}, &stubQueue{err: errors.New("dispatcher stopped")}, zerolog.Nop()).Batch(c)
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}
