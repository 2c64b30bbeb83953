package localstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository keeps the catalog under KeyProducts, newest first.
type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	created := *p
	created.ID = uuid.NewString()
	err := Update(r.store, KeyProducts, func(products *[]domain.Product) error {
		*products = append([]domain.Product{created}, *products...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	products, err := r.all()
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *ProductRepository) List(_ context.Context, category string) ([]domain.Product, error) {
	products, err := r.all()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	var updated domain.Product
	err := Update(r.store, KeyProducts, func(products *[]domain.Product) error {
		for i := range *products {
			if (*products)[i].ID == id {
				patch.Apply(&(*products)[i])
				(*products)[i].UpdatedAt = time.Now().UTC()
				updated = (*products)[i]
				return nil
			}
		}
		return domain.ErrProductNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	return Update(r.store, KeyProducts, func(products *[]domain.Product) error {
		for i, p := range *products {
			if p.ID == id {
				*products = append((*products)[:i], (*products)[i+1:]...)
				return nil
			}
		}
		return domain.ErrProductNotFound
	})
}

func (r *ProductRepository) Categories(_ context.Context) ([]string, error) {
	products, err := r.all()
	if err != nil {
		return nil, err
	}
	return domain.Categories(products), nil
}

func (r *ProductRepository) all() ([]domain.Product, error) {
	var products []domain.Product
	if _, err := r.store.Get(KeyProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}
