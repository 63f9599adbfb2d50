package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleClient  = "client"
	RoleCourier = "courier"
)

// knownRoles is the role set a principal may carry. Extend here to add roles.
var knownRoles = map[string]struct{}{
	RoleAdmin:   {},
	RoleClient:  {},
	RoleCourier: {},
}

// IsKnownRole reports whether role belongs to the role set.
func IsKnownRole(role string) bool {
	_, ok := knownRoles[role]
	return ok
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the principal holds the admin capability.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AccessToken is a bearer credential minted at login.
type AccessToken struct {
	Value     string
	TokenType string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining validity of the token relative to now.
func (t *AccessToken) ExpiresIn(now time.Time) time.Duration {
	if t == nil || !t.ExpiresAt.After(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}
