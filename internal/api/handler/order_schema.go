package handler

import "time"

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type dimensionsRequest struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type packageRequest struct {
	Weight        float64           `json:"weight"`
	Dimensions    dimensionsRequest `json:"dimensions"`
	Fragile       bool              `json:"fragile"`
	DeclaredValue float64           `json:"declared_value"`
	Description   string            `json:"description"`
}

// createOrderRequest only describes the body shape; OrderService.CreateOrder
// checks every field and reports all failures together.
type createOrderRequest struct {
	PickupAddress   string         `json:"pickup_address"`
	DeliveryAddress string         `json:"delivery_address"`
	PackageDetails  packageRequest `json:"package_details"`
	Priority        string         `json:"priority"`
}

type dimensionsResponse struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type packageResponse struct {
	Weight        float64            `json:"weight"`
	Dimensions    dimensionsResponse `json:"dimensions"`
	Fragile       bool               `json:"fragile"`
	DeclaredValue float64            `json:"declared_value"`
	Description   string             `json:"description,omitempty"`
}

type orderResponse struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	PickupAddress   string          `json:"pickup_address"`
	DeliveryAddress string          `json:"delivery_address"`
	PackageDetails  packageResponse `json:"package_details"`
	Priority        string          `json:"priority"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type statsResponse struct {
	TotalOrders     int64            `json:"total_orders"`
	ByStatus        map[string]int64 `json:"by_status"`
	DeliveredOrders int64            `json:"delivered_orders"`
	DeliveryRate    float64          `json:"delivery_rate"`
}

type orderEventResponse struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
