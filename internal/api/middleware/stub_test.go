package middleware

import (
	"context"
	"errors"

	"github.com/vermahardware/storefront/internal/core/domain"
)

type stubVerifier struct {
	tokens map[string]*domain.User
	err    error
}

func (s stubVerifier) VerifySession(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	return u, nil
}

var (
	verifier = stubVerifier{tokens: map[string]*domain.User{
		"user-token":  {ID: "u1", Username: "user", Role: domain.RoleUser},
		"admin-token": {ID: "a1", Username: "admin", Role: domain.RoleAdmin},
		"super-token": {ID: "s1", Username: "superadmin", Role: domain.RoleSuperAdmin},
	}}
	errBackend = errors.New("backend unavailable")
)
