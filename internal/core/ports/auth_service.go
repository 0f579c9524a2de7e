package ports

import (
	"context"
	"time"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// SeedUser describes an account created at startup when missing.
type SeedUser struct {
	Username    string
	Password    string
	DisplayName string
	Role        domain.Role
}

type AuthService interface {
	Signup(ctx context.Context, username, password, displayName string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Seed(ctx context.Context, users []SeedUser) error
}

// SessionService issues and resolves the signed session tokens carried in the
// session cookie.
type SessionService interface {
	Issue(ctx context.Context, user *domain.User) (token string, expires time.Time, err error)
	// Resolve returns the guest identity for a missing, invalid, expired or
	// revoked token.
	Resolve(ctx context.Context, token string) domain.Identity
	Revoke(ctx context.Context, token string) error
}

// RevocationList remembers logged-out token ids until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
