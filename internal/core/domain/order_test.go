package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusCreated, StatusInTransit, true},
		{StatusCreated, StatusCancelled, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, true},
		{StatusCreated, StatusDelivered, false},
		{StatusCreated, StatusCreated, false},
		{StatusInTransit, StatusCreated, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusInTransit, false},
		{StatusCancelled, StatusInTransit, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusCreated.IsTerminal())
	assert.False(t, StatusInTransit.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("in_transit")
	require.True(t, ok)
	assert.Equal(t, StatusInTransit, st)

	_, ok = ParseOrderStatus("processing")
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("")
	require.True(t, ok)
	assert.Equal(t, PriorityNormal, p)

	p, ok = ParsePriority("high")
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("asap")
	assert.False(t, ok)
}

func TestPriority_Rank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityUrgent.Rank())
	assert.Equal(t, -1, Priority("asap").Rank())
}

func TestOrder_VisibleTo(t *testing.T) {
	order := &Order{ID: "o1", OwnerID: "u1"}

	assert.True(t, order.VisibleTo(&User{ID: "u1", Role: RoleClient}))
	assert.False(t, order.VisibleTo(&User{ID: "u2", Role: RoleClient}))
	assert.False(t, order.VisibleTo(&User{ID: "u2", Role: RoleCourier}))
	assert.True(t, order.VisibleTo(&User{ID: "u3", Role: RoleAdmin}))
	assert.False(t, order.VisibleTo(nil))
}

func TestOrderStats_DeliveryRate(t *testing.T) {
	assert.Zero(t, OrderStats{}.DeliveryRate())

	stats := OrderStats{Total: 4, ByStatus: map[OrderStatus]int64{StatusDelivered: 1, StatusCreated: 3}}
	assert.InDelta(t, 25.0, stats.DeliveryRate(), 0.0001)
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.True(t, verr.Empty())
	assert.NoError(t, verr.OrNil())

	verr.Add("pickup_address", "is required")
	verr.Add("package_details.weight", "must be greater than 0")

	err := verr.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: pickup_address: is required; package_details.weight: must be greater than 0", err.Error())

	var target *ValidationError
	require.True(t, errors.As(err, &target))
	assert.Len(t, target.Fields, 2)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "client1@example.com", NormalizeEmail("  Client1@Example.COM "))
}
