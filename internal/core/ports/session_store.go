package ports

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// SessionStore persists the single current session on the device.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	// Load returns nil, nil when no session is stored.
	Load(ctx context.Context) (*domain.Session, error)
	Clear(ctx context.Context) error
}
