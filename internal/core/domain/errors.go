package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("session invalid or expired")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrProductNotFound    = errors.New("product not found")
	ErrContactNotFound    = errors.New("contact not found")
	ErrValidation         = errors.New("validation failed")
)
