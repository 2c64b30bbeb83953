package service

import "github.com/vermahardware/storefront/internal/core/domain"

// authorize maps the policy decision to the error callers surface: no
// identity is ErrUnauthenticated, a denied identity is ErrForbidden.
func authorize(actor *domain.User, action domain.Action) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !domain.Can(actor, action) {
		return domain.ErrForbidden
	}
	return nil
}
