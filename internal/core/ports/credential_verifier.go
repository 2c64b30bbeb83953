package ports

import (
	"context"
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

// SessionVerifier resolves a bearer token to the identity it was issued for.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*domain.User, error)
}

// CredentialVerifier resolves login and signup attempts to an identity.
// Exactly one implementation is active per deployment.
type CredentialVerifier interface {
	SessionVerifier
	Login(ctx context.Context, identifier, secret string) (*domain.Session, error)
	Signup(ctx context.Context, in SignupInput) (*domain.Session, error)
	// CreateAdmin provisions an admin account on behalf of actor.
	CreateAdmin(ctx context.Context, actor *domain.User, in SignupInput) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// SessionRefresher is implemented by verifiers that issue no bearer token. It
// re-reads the identity behind a stored session so that role changes and
// deletions apply on the next restore. It returns domain.ErrSessionInvalid
// when the identity is gone.
type SessionRefresher interface {
	RefreshSession(ctx context.Context, session domain.Session) (*domain.User, error)
}

// TokenRevoker remembers tokens invalidated before their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
