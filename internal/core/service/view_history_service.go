package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ViewHistoryService = (*ViewHistoryService)(nil)

type ViewHistoryService struct {
	store    ports.ViewHistoryStore
	products ports.ProductRepository
	log      zerolog.Logger
}

func NewViewHistoryService(store ports.ViewHistoryStore, products ports.ProductRepository, log zerolog.Logger) *ViewHistoryService {
	return &ViewHistoryService{store: store, products: products, log: log}
}

// Record moves productID to the front of the user's history.
func (s *ViewHistoryService) Record(ctx context.Context, ev ports.ViewEvent) error {
	if ev.UserID == "" || ev.ProductID == "" {
		return fmt.Errorf("%w: user and product are required", domain.ErrValidation)
	}
	if err := s.store.Push(ctx, ev.UserID, ev.ProductID, domain.MaxRecentlyViewed); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	metrics.ProductViewsTotal.Inc()
	return nil
}

// Recent resolves the stored ids to products, skipping ones deleted since.
func (s *ViewHistoryService) Recent(ctx context.Context, userID string) ([]domain.Product, error) {
	ids, err := s.store.Recent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recent views: %w", err)
	}

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("recent views: %w", err)
		}
		out = append(out, *p)
	}
	return out, nil
}
