package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// UpdateQueue hands delivery updates to the async pipeline.
type UpdateQueue interface {
	EnqueueBatch(ctx context.Context, updates []ports.DeliveryUpdateInput) (int, error)
}

// DeliveryHandler handles courier status updates.
type DeliveryHandler struct {
	service ports.DeliveryService
	queue   UpdateQueue
	log     zerolog.Logger
}

func NewDeliveryHandler(service ports.DeliveryService, queue UpdateQueue, log zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{service: service, queue: queue, log: log}
}

// UpdateStatus applies a status change synchronously.
//
// @Summary      Update order status
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Order ID"
// @Param        body  body      statusUpdateRequest  true  "New status"
// @Success      200   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /orders/{id}/status [post]
func (h *DeliveryHandler) UpdateStatus(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	order, err := h.service.Apply(c.Request().Context(), principal, ports.DeliveryUpdateInput{
		OrderID:  c.Param("id"),
		Status:   req.Status,
		Notes:    req.Notes,
		Location: toLocation(req.Location),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// History lists the status updates recorded for an order.
//
// @Summary      Order status history
// @Tags         delivery
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {array}   deliveryUpdateResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id}/updates [get]
func (h *DeliveryHandler) History(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	updates, err := h.service.History(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeliveryUpdateResponses(updates))
}

// Batch validates a list of updates and queues them for async processing.
// Updates for the same order are applied in submission order.
//
// @Summary      Submit a batch of delivery updates
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []batchUpdateItem  true  "Updates"
// @Success      202   {object}  batchAcceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /delivery-updates/batch [post]
func (h *DeliveryHandler) Batch(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var items []batchUpdateItem
	if err := (&echo.DefaultBinder{}).BindBody(c, &items); err != nil {
		return invalidBody()
	}
	switch {
	case len(items) == 0:
		return domain.NewValidationError("body", "must contain at least one update")
	case len(items) > maxBatchSize:
		return domain.NewValidationError("body", fmt.Sprintf("must contain at most %d updates", maxBatchSize))
	}

	verr := &domain.ValidationError{}
	inputs := make([]ports.DeliveryUpdateInput, 0, len(items))
	for i := range items {
		prefix := fmt.Sprintf("[%d].", i)
		before := len(verr.Fields)
		if err := c.Validate(&items[i]); err != nil {
			var itemErr *domain.ValidationError
			if !errors.As(prefixFields(err, prefix), &itemErr) {
				return err
			}
			verr.Fields = append(verr.Fields, itemErr.Fields...)
		}
		if st := items[i].Status; st != "" {
			if _, ok := domain.ParseOrderStatus(st); !ok {
				verr.Add(prefix+"status", "is not a known status")
			}
		}
		if len(verr.Fields) == before {
			inputs = append(inputs, toBatchInput(items[i], principal.ID))
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	accepted, err := h.queue.EnqueueBatch(c.Request().Context(), inputs)
	if err != nil {
		h.log.Error().Err(err).Int("accepted", accepted).Int("total", len(inputs)).Msg("enqueue delivery updates")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "update queue unavailable")
	}
	return c.JSON(http.StatusAccepted, batchAcceptedResponse{Accepted: accepted})
}
