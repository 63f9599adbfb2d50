package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/swiftlogistics/order-api/internal/api/middleware"
	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware.
// A missing principal means the route was mounted without Auth.
func ctxPrincipal(c echo.Context) (*domain.User, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
