package ports

import (
	"context"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     string
}

// TokenResolver maps a bearer token to the principal it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type AuthService interface {
	TokenResolver
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.AccessToken, *domain.User, error)
}
