package ports

import (
	"context"
	"io"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name          string
	Price         int64
	Description   string
	Category      string
	ImageURL      string
	ImagePublicID string
}

// CatalogService defines catalog use cases. Mutations take the acting user.
type CatalogService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, actor *domain.User, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

// ContactInput carries a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ExportOptions selects the CSV header flavour.
type ExportOptions struct {
	DisplayHeader bool
}

// ContactService defines contact inquiry use cases.
type ContactService interface {
	Submit(ctx context.Context, in ContactInput) (*domain.Contact, error)
	List(ctx context.Context, actor *domain.User) ([]domain.Contact, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	// Export writes the CSV to w and returns the suggested filename.
	Export(ctx context.Context, actor *domain.User, w io.Writer, opts ExportOptions) (string, error)
}

// UserService defines administrative user management.
type UserService interface {
	List(ctx context.Context, actor *domain.User) ([]domain.User, error)
	ChangeRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

// ViewHistoryService records and resolves recently viewed products.
type ViewHistoryService interface {
	Record(ctx context.Context, ev ViewEvent) error
	Recent(ctx context.Context, userID string) ([]domain.Product, error)
}
