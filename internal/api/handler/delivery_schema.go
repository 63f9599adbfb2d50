package handler

import "time"

// maxBatchSize bounds POST /delivery-updates/batch.
const maxBatchSize = 500

type locationRequest struct {
	Lat         float64 `json:"lat"         validate:"latitude"`
	Lng         float64 `json:"lng"         validate:"longitude"`
	Description string  `json:"description" validate:"max=255"`
}

// statusUpdateRequest is checked by DeliveryService.Apply.
type statusUpdateRequest struct {
	Status   string           `json:"status"`
	Notes    string           `json:"notes"`
	Location *locationRequest `json:"location"`
}

type batchUpdateItem struct {
	OrderID   string           `json:"order_id"  validate:"required,uuid"`
	Status    string           `json:"status"    validate:"required"`
	Timestamp time.Time        `json:"timestamp" validate:"required"`
	Notes     string           `json:"notes"     validate:"max=1000"`
	Location  *locationRequest `json:"location"`
}

type batchAcceptedResponse struct {
	Accepted int `json:"accepted"`
}

type deliveryUpdateResponse struct {
	ID         string           `json:"id"`
	OrderID    string           `json:"order_id"`
	CourierID  string           `json:"courier_id"`
	FromStatus string           `json:"from_status"`
	Status     string           `json:"status"`
	Notes      string           `json:"notes,omitempty"`
	Location   *locationRequest `json:"location,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
	CreatedAt  time.Time        `json:"created_at"`
}
