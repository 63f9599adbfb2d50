package domain

import "time"

// Location is a free-form position reported by a courier.
type Location struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description,omitempty"`
}

// DeliveryUpdate records a single status change reported for an order.
type DeliveryUpdate struct {
	ID         string
	OrderID    string
	CourierID  string
	FromStatus OrderStatus
	Status     OrderStatus
	Notes      string
	Location   *Location // optional
	OccurredAt time.Time
	CreatedAt  time.Time
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order changes state.
type OrderEvent struct {
	ID         string    `json:"event_id" bson:"event_id"`
	Type       string    `json:"event_type" bson:"event_type"`
	OrderID    string    `json:"order_id" bson:"order_id"`
	OwnerID    string    `json:"owner_id" bson:"owner_id"`
	Status     string    `json:"status" bson:"status"`
	Priority   string    `json:"priority,omitempty" bson:"priority,omitempty"`
	ActorID    string    `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}
