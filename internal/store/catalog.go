// Package store keeps client-side copies of catalog and contact data. Each
// mutation calls the backend first and only then patches the cached slice,
// so a failed call leaves the cache untouched.
package store

import (
	"context"
	"sync"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

// ActorFunc returns the signed-in user, or nil.
type ActorFunc func() *domain.User

type Catalog struct {
	svc   ports.CatalogService
	actor ActorFunc

	mu         sync.RWMutex
	products   []domain.Product
	categories []string
}

func NewCatalog(svc ports.CatalogService, actor ActorFunc) *Catalog {
	return &Catalog{svc: svc, actor: actor, products: []domain.Product{}, categories: []string{}}
}

// Load replaces the cache with the backend's newest-first listing.
func (c *Catalog) Load(ctx context.Context) error {
	products, err := c.svc.List(ctx, "")
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.categories = domain.Categories(products)
	return nil
}

// Products returns a copy of the cached products.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product(nil), c.products...)
}

// ByCategory filters the cache; an empty category returns everything.
func (c *Catalog) ByCategory(category string) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.categories...)
}

// Get serves from the cache and falls back to the backend.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	for _, p := range c.products {
		if p.ID == id {
			c.mu.RUnlock()
			return &p, nil
		}
	}
	c.mu.RUnlock()
	return c.svc.Get(ctx, id)
}

// Create adds the product and puts it first in the cache.
func (c *Catalog) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	created, err := c.svc.Create(ctx, c.actor(), in)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append([]domain.Product{*created}, c.products...)
	c.categories = domain.Categories(c.products)
	return created, nil
}

func (c *Catalog) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	updated, err := c.svc.Update(ctx, c.actor(), id, patch)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i] = *updated
			break
		}
	}
	c.categories = domain.Categories(c.products)
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, c.actor(), id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == id {
			c.products = append(c.products[:i:i], c.products[i+1:]...)
			break
		}
	}
	c.categories = domain.Categories(c.products)
	return nil
}
