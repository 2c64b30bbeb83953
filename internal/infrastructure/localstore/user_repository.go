package localstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// storedUser is the on-disk form of a user; unlike domain.User it keeps the
// password hash.
type storedUser struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Name         string      `json:"name,omitempty"`
	Email        string      `json:"email,omitempty"`
	PasswordHash string      `json:"passwordHash"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u storedUser) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserRepository keeps users as a list under KeyUsers, in creation order.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	var created storedUser
	err := Update(r.store, KeyUsers, func(users *[]storedUser) error {
		for _, u := range *users {
			if u.Username == user.Username {
				return domain.ErrUserExists
			}
		}
		created = storedUser{
			ID:           uuid.NewString(),
			Username:     user.Username,
			Name:         user.Name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			Role:         user.Role,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		}
		*users = append(*users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created.toDomain(), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u storedUser) bool { return u.ID == id })
}

// FindByIdentifier matches a username exactly or an email case-insensitively.
func (r *UserRepository) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	return r.find(func(u storedUser) bool {
		return u.Username == identifier || (u.Email != "" && strings.EqualFold(u.Email, identifier))
	})
}

// Exists checks usernames only.
func (r *UserRepository) Exists(_ context.Context, username, _ string) (bool, error) {
	_, err := r.find(func(u storedUser) bool { return u.Username == username })
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	users, err := r.all()
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for i := len(users) - 1; i >= 0; i-- {
		u := users[i].toDomain()
		u.PasswordHash = ""
		out = append(out, *u)
	}
	return out, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	var updated storedUser
	err := Update(r.store, KeyUsers, func(users *[]storedUser) error {
		for i := range *users {
			if (*users)[i].ID == id {
				(*users)[i].Role = role
				(*users)[i].UpdatedAt = time.Now().UTC()
				updated = (*users)[i]
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	u := updated.toDomain()
	u.PasswordHash = ""
	return u, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	return Update(r.store, KeyUsers, func(users *[]storedUser) error {
		for i, u := range *users {
			if u.ID == id {
				*users = append((*users)[:i], (*users)[i+1:]...)
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
}

func (r *UserRepository) all() ([]storedUser, error) {
	var users []storedUser
	if _, err := r.store.Get(KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) find(match func(storedUser) bool) (*domain.User, error) {
	users, err := r.all()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return u.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}
