package handler

import (
	"time"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createOrderRequest) ports.CreateOrderInput {
	p := req.PackageDetails
	return ports.CreateOrderInput{
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		Package: domain.PackageDetails{
			WeightKg: p.Weight,
			Dimensions: domain.Dimensions{
				LengthCm: p.Dimensions.Length,
				WidthCm:  p.Dimensions.Width,
				HeightCm: p.Dimensions.Height,
			},
			Fragile:       p.Fragile,
			DeclaredValue: p.DeclaredValue,
			Description:   p.Description,
		},
		Priority: req.Priority,
	}
}

func toLocation(l *locationRequest) *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{Lat: l.Lat, Lng: l.Lng, Description: l.Description}
}

func toBatchInput(item batchUpdateItem, courierID string) ports.DeliveryUpdateInput {
	return ports.DeliveryUpdateInput{
		OrderID:    item.OrderID,
		CourierID:  courierID,
		Status:     item.Status,
		Notes:      item.Notes,
		Location:   toLocation(item.Location),
		OccurredAt: item.Timestamp.UTC(),
	}
}

// --- Domain → Response ---

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		OwnerID:         o.OwnerID,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		PackageDetails: packageResponse{
			Weight: o.Package.WeightKg,
			Dimensions: dimensionsResponse{
				Length: o.Package.Dimensions.LengthCm,
				Width:  o.Package.Dimensions.WidthCm,
				Height: o.Package.Dimensions.HeightCm,
			},
			Fragile:       o.Package.Fragile,
			DeclaredValue: o.Package.DeclaredValue,
			Description:   o.Package.Description,
		},
		Priority:  string(o.Priority),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC().Truncate(time.Microsecond),
		UpdatedAt: o.UpdatedAt.UTC().Truncate(time.Microsecond),
	}
}

func toOrderResponses(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toDeliveryUpdateResponses(updates []*domain.DeliveryUpdate) []deliveryUpdateResponse {
	out := make([]deliveryUpdateResponse, 0, len(updates))
	for _, u := range updates {
		r := deliveryUpdateResponse{
			ID:         u.ID,
			OrderID:    u.OrderID,
			CourierID:  u.CourierID,
			FromStatus: string(u.FromStatus),
			Status:     string(u.Status),
			Notes:      u.Notes,
			OccurredAt: u.OccurredAt.UTC(),
			CreatedAt:  u.CreatedAt.UTC(),
		}
		if u.Location != nil {
			r.Location = &locationRequest{Lat: u.Location.Lat, Lng: u.Location.Lng, Description: u.Location.Description}
		}
		out = append(out, r)
	}
	return out
}

func toStatsResponse(s *domain.OrderStats) statsResponse {
	byStatus := make(map[string]int64, len(domain.OrderStatuses))
	for _, st := range domain.OrderStatuses {
		byStatus[string(st)] = s.ByStatus[st]
	}
	return statsResponse{
		TotalOrders:     s.Total,
		ByStatus:        byStatus,
		DeliveredOrders: s.ByStatus[domain.StatusDelivered],
		DeliveryRate:    s.DeliveryRate(),
	}
}

func toOrderEventResponses(events []domain.OrderEvent) []orderEventResponse {
	out := make([]orderEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, orderEventResponse{
			ID:         e.ID,
			Type:       e.Type,
			OrderID:    e.OrderID,
			Status:     e.Status,
			Priority:   e.Priority,
			ActorID:    e.ActorID,
			OccurredAt: e.OccurredAt.UTC().Truncate(time.Microsecond),
		})
	}
	return out
}
