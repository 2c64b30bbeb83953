package ports

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// ContactRepository defines persistence operations for contact inquiries.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	// List returns inquiries newest first.
	List(ctx context.Context) ([]domain.Contact, error)
	Delete(ctx context.Context, id string) error
}
