package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swiftlogistics/order-api/internal/core/domain"
	"github.com/swiftlogistics/order-api/internal/core/ports"
)

const principalKey = "principal"

// Auth resolves the bearer token through resolver and injects the principal
// into the request context.
func Auth(resolver ports.TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrUnauthenticated
			}

			user, err := resolver.Resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			SetPrincipal(c, user)
			return next(c)
		}
	}
}

// SetPrincipal stores the authenticated principal on the context.
func SetPrincipal(c echo.Context, user *domain.User) {
	c.Set(principalKey, user)
}

// Principal returns the principal injected by Auth, or nil.
func Principal(c echo.Context) *domain.User {
	u, _ := c.Get(principalKey).(*domain.User)
	return u
}
