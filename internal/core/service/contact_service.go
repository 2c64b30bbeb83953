package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/export"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ContactService = (*ContactService)(nil)

// ContactService stores inquiries from any visitor and exposes them to staff.
type ContactService struct {
	repo   ports.ContactRepository
	logger zerolog.Logger
}

func NewContactService(repo ports.ContactRepository, logger zerolog.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

func (s *ContactService) Submit(ctx context.Context, in ports.ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: time.Now().UTC(),
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store contact")
		return nil, fmt.Errorf("submit contact: %w", err)
	}

	metrics.ContactsSubmittedTotal.Inc()
	return created, nil
}

func (s *ContactService) List(ctx context.Context, actor *domain.User) ([]domain.Contact, error) {
	if err := authorize(actor, domain.ActionReadContacts); err != nil {
		return nil, err
	}
	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := authorize(actor, domain.ActionDeleteContacts); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return err
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *ContactService) Export(ctx context.Context, actor *domain.User, w io.Writer, opts ports.ExportOptions) (string, error) {
	if err := authorize(actor, domain.ActionExportContacts); err != nil {
		return "", err
	}

	contacts, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("export contacts: %w", err)
	}

	style := export.HeaderFields
	if opts.DisplayHeader {
		style = export.HeaderDisplay
	}
	if err := export.WriteContacts(w, contacts, style); err != nil {
		return "", fmt.Errorf("export contacts: %w", err)
	}

	metrics.ContactExportRows.Observe(float64(len(contacts)))
	s.logger.Info().Int("rows", len(contacts)).Str("actor", actor.ID).Msg("contacts exported")
	return export.Filename(time.Now()), nil
}
