package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.CatalogService = (*CatalogService)(nil)

// CatalogService implements product reads for everyone and writes for staff.
type CatalogService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) List(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) Create(ctx context.Context, actor *domain.User, in ports.ProductInput) (*domain.Product, error) {
	if err := authorize(actor, domain.ActionManageCatalog); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:          strings.TrimSpace(in.Name),
		Price:         in.Price,
		Description:   strings.TrimSpace(in.Description),
		Category:      strings.TrimSpace(in.Category),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		ImagePublicID: in.ImagePublicID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("product_id", created.ID).Str("actor", actor.ID).Msg("product created")
	return created, nil
}

// Update merges patch into the product. Concurrent writers are not detected;
// the last write wins.
func (s *CatalogService) Update(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := authorize(actor, domain.ActionManageCatalog); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("update product: %w", err)
	}

	metrics.ProductMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("product_id", id).Str("actor", actor.ID).Msg("product updated")
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := authorize(actor, domain.ActionManageCatalog); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("product_id", id).Str("actor", actor.ID).Msg("product deleted")
	return nil
}
