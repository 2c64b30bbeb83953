package ports

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// UserRepository defines persistence for identities and their credentials.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByIdentifier matches identifier against username or email.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// Exists reports whether any user already holds username or email.
	Exists(ctx context.Context, username, email string) (bool, error)
	UserDirectory
}

// UserDirectory is the administrative view over identities.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns users newest first, without password hashes.
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
