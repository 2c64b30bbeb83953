package ports

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns products newest first; an empty category means all.
	List(ctx context.Context, category string) ([]domain.Product, error)
	// Update merges patch into the stored product and stamps UpdatedAt.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}
