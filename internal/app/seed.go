package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

// DemoProducts populate an empty catalog when SEED_DEMO is set.
var DemoProducts = []domain.Product{
	{
		Name:        "Professional Drill Set",
		Price:       2499,
		Description: "High-quality drill set with multiple bits for various materials.",
		Category:    "Power Tools",
		ImageURL:    "/images/drill.jpg",
	},
	{
		Name:        "Hammer Tool Kit",
		Price:       899,
		Description: "Durable hammer set with different weights and ergonomic handles.",
		Category:    "Hand Tools",
		ImageURL:    "/images/hammer.jpg",
	},
	{
		Name:        "LED Bulb Pack",
		Price:       299,
		Description: "Energy-efficient LED bulbs in various wattages and color temperatures.",
		Category:    "Electrical",
		ImageURL:    "/images/led-bulb.jpg",
	},
	{
		Name:        "Measuring Tape Set",
		Price:       199,
		Description: "Accurate measuring tapes in different lengths for construction and carpentry.",
		Category:    "Measuring Tools",
		ImageURL:    "/images/measuring-tape.jpg",
	},
	{
		Name:        "Paint Brush Collection",
		Price:       349,
		Description: "Paint brushes for interior and exterior work in several sizes.",
		Category:    "Painting",
		ImageURL:    "/images/paint-brush.jpg",
	},
	{
		Name:        "Screwdriver Set",
		Price:       599,
		Description: "Phillips, flathead and Torx bits with magnetic tips.",
		Category:    "Hand Tools",
		ImageURL:    "/images/screwdriver-set.jpg",
	},
}

// SeedCatalog inserts DemoProducts when the catalog is empty. A non-empty
// catalog is left alone.
func SeedCatalog(ctx context.Context, repo ports.ProductRepository, log zerolog.Logger) error {
	existing, err := repo.List(ctx, "")
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Debug().Int("products", len(existing)).Msg("catalog not empty, skipping demo seed")
		return nil
	}

	now := time.Now().UTC()
	for i, p := range DemoProducts {
		p := p
		// Later entries are newer so listings keep insertion order reversed.
		p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		p.UpdatedAt = p.CreatedAt
		if _, err := repo.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed catalog: %s: %w", p.Name, err)
		}
	}
	log.Info().Int("products", len(DemoProducts)).Msg("demo catalog seeded")
	return nil
}
