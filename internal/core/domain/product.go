package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog entry. Price is expressed in the smallest display unit.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	ImagePublicID string    `json:"image_public_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name          *string
	Price         *int64
	Description   *string
	Category      *string
	ImageURL      *string
	ImagePublicID *string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil &&
		p.Category == nil && p.ImageURL == nil && p.ImagePublicID == nil
}

// Apply merges the patch into prod.
func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.ImageURL != nil {
		prod.ImageURL = *p.ImageURL
	}
	if p.ImagePublicID != nil {
		prod.ImagePublicID = *p.ImagePublicID
	}
}

// Validate checks the invariants every stored product must hold.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(p.Category) == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// Categories returns the distinct categories of products in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
