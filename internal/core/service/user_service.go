package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.UserService = (*UserService)(nil)

// UserService is the administrative surface over identities.
type UserService struct {
	dir    ports.UserDirectory
	logger zerolog.Logger
}

func NewUserService(dir ports.UserDirectory, logger zerolog.Logger) *UserService {
	return &UserService{dir: dir, logger: logger}
}

func (s *UserService) List(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := authorize(actor, domain.ActionManageUsers); err != nil {
		return nil, err
	}
	users, err := s.dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ChangeRole is the only path that changes a role after creation.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error) {
	if err := authorize(actor, domain.ActionChangeRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if id == actor.ID {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}

	user, err := s.dir.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("change role: %w", err)
	}

	s.logger.Info().Str("user_id", id).Str("role", string(role)).Str("actor", actor.ID).Msg("role changed")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := authorize(actor, domain.ActionManageUsers); err != nil {
		return err
	}
	if id == actor.ID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrForbidden)
	}

	target, err := s.dir.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if !actor.Role.AtLeast(target.Role) {
		return fmt.Errorf("%w: cannot delete an account with a higher role", domain.ErrForbidden)
	}

	if err := s.dir.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().Str("user_id", id).Str("actor", actor.ID).Msg("user deleted")
	return nil
}
