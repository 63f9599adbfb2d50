package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

// AdminHandler serves operator-only endpoints.
type AdminHandler struct {
	orders ports.OrderService
	events ports.EventReader
}

// NewAdminHandler returns an AdminHandler. events may be nil, in which case
// Events reports every order as having no audit trail.
func NewAdminHandler(orders ports.OrderService, events ports.EventReader) *AdminHandler {
	return &AdminHandler{orders: orders, events: events}
}

// Stats reports order counts by status and the delivery rate.
//
// @Summary      Order statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	stats, err := h.orders.Stats(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

// Events returns the audit trail recorded for an order, oldest first.
//
// @Summary      Order event audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {array}   orderEventResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/orders/{id}/events [get]
func (h *AdminHandler) Events(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrOrderNotFound
	}
	if h.events == nil {
		return c.JSON(http.StatusOK, []orderEventResponse{})
	}

	events, err := h.events.ListByOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderEventResponses(events))
}
