package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// delivered and cancelled are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusCreated:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusCreated, StatusInTransit, StatusDelivered, StatusCancelled}

// ParseOrderStatus returns the status named by s and whether it is known.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Priority is an ordered urgency tag.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// ParsePriority returns the priority named by s. An empty string yields the
// default priority.
func ParsePriority(s string) (Priority, bool) {
	if s == "" {
		return PriorityNormal, true
	}
	p := Priority(s)
	_, ok := priorityRank[p]
	return p, ok
}

// Rank orders priorities from low (0) to urgent; unknown values rank -1.
func (p Priority) Rank() int {
	r, ok := priorityRank[p]
	if !ok {
		return -1
	}
	return r
}

// Dimensions represents the physical size of a package.
type Dimensions struct {
	LengthCm float64 `json:"length"`
	WidthCm  float64 `json:"width"`
	HeightCm float64 `json:"height"`
}

// PackageDetails contains the details of what is being delivered.
type PackageDetails struct {
	WeightKg      float64    `json:"weight"`
	Dimensions    Dimensions `json:"dimensions"`
	Fragile       bool       `json:"fragile"`
	DeclaredValue float64    `json:"declared_value"`
	Description   string     `json:"description,omitempty"`
}

// Order is the core aggregate root. OwnerID never changes after creation.
type Order struct {
	ID              string
	OwnerID         string
	PickupAddress   string
	DeliveryAddress string
	Package         PackageDetails
	Priority        Priority
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VisibleTo reports whether u may read the order.
func (o *Order) VisibleTo(u *User) bool {
	if o == nil || u == nil {
		return false
	}
	return u.IsAdmin() || o.OwnerID == u.ID
}

// OrderStats aggregates order counts by status.
type OrderStats struct {
	Total    int64
	ByStatus map[OrderStatus]int64
}

// DeliveryRate returns the percentage of orders that reached delivered.
func (s OrderStats) DeliveryRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.ByStatus[StatusDelivered]) / float64(s.Total) * 100
}
