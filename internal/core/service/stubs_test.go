package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
)

var (
	superadmin = &domain.User{ID: "u-super", Username: "superadmin", Role: domain.RoleSuperAdmin}
	admin      = &domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	customer   = &domain.User{ID: "u-user", Username: "user", Role: domain.RoleUser}
)

type stubUserRepo struct {
	users  []*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users = append(r.users, stored)
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == identifier || (u.Email != "" && u.Email == strings.ToLower(identifier)) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Exists(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for i := len(r.users) - 1; i >= 0; i-- {
		out = append(out, *r.users[i])
	}
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			u.Role = role
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type stubRevoker struct {
	revoked map[string]time.Time
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, token string, until time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[token] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[token]
	return ok, nil
}

type stubProductRepo struct {
	products []domain.Product
	nextID   int
	err      error
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	stored := *p
	stored.ID = fmt.Sprintf("p-%d", r.nextID)
	r.products = append([]domain.Product{stored}, r.products...)
	return &stored, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			patch.Apply(&r.products[i])
			r.products[i].UpdatedAt = time.Now().UTC()
			updated := r.products[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func (r *stubProductRepo) Categories(_ context.Context) ([]string, error) {
	return domain.Categories(r.products), nil
}

type stubContactRepo struct {
	contacts []domain.Contact
	nextID   int
}

func (r *stubContactRepo) Create(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	r.nextID++
	stored := *c
	stored.ID = fmt.Sprintf("c-%d", r.nextID)
	r.contacts = append(r.contacts, stored)
	return &stored, nil
}

func (r *stubContactRepo) List(_ context.Context) ([]domain.Contact, error) {
	out := append([]domain.Contact(nil), r.contacts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubContactRepo) Delete(_ context.Context, id string) error {
	for i, c := range r.contacts {
		if c.ID == id {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return nil
		}
	}
	return domain.ErrContactNotFound
}

type stubViewStore struct {
	lists map[string][]string
}

func newStubViewStore() *stubViewStore {
	return &stubViewStore{lists: make(map[string][]string)}
}

func (s *stubViewStore) Push(_ context.Context, userID, productID string, limit int) error {
	s.lists[userID] = domain.PushRecent(s.lists[userID], productID, limit)
	return nil
}

func (s *stubViewStore) Recent(_ context.Context, userID string) ([]string, error) {
	return s.lists[userID], nil
}
