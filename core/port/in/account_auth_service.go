package in

import (
	"context"

	"account_server/core/domain"
)

// AuthService issues and rotates session tokens.
type AuthService interface {
	// Login verifies credentials and issues a token pair. Unknown email and
	// wrong password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)

	// Refresh rotates a refresh token and issues a fresh pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// Logout invalidates a refresh token.
	Logout(ctx context.Context, refreshToken string) error
}
