package ports

import (
	"context"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

// UserRepository defines persistence operations for principals.
type UserRepository interface {
	// Create inserts user and returns domain.ErrDuplicateAccount when the
	// email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
