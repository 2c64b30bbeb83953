// Package localauth verifies credentials against the device-local user list.
// It issues no bearer token: a session is simply the stored user record.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var (
	_ ports.CredentialVerifier = (*Verifier)(nil)
	_ ports.SessionRefresher   = (*Verifier)(nil)
)

// DemoAccounts are created on first use when the user list is empty. The
// password of each account equals its username.
var DemoAccounts = []struct {
	Username string
	Role     domain.Role
}{
	{"superadmin", domain.RoleSuperAdmin},
	{"admin", domain.RoleAdmin},
	{"user", domain.RoleUser},
}

type Verifier struct {
	repo     ports.UserRepository
	hashCost int
	log      zerolog.Logger
}

type Option func(*Verifier)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(v *Verifier) { v.hashCost = cost }
}

func WithLogger(log zerolog.Logger) Option {
	return func(v *Verifier) { v.log = log }
}

func New(repo ports.UserRepository, opts ...Option) *Verifier {
	v := &Verifier{repo: repo, hashCost: bcrypt.DefaultCost, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SeedDemoAccounts creates DemoAccounts when no user exists yet.
func (v *Verifier) SeedDemoAccounts(ctx context.Context) error {
	users, err := v.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	if len(users) > 0 {
		return nil
	}
	for _, acct := range DemoAccounts {
		in := ports.SignupInput{Username: acct.Username, Password: acct.Username, Name: acct.Username}
		if _, err := v.create(ctx, in, acct.Role); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("seed accounts: %w", err)
		}
	}
	v.log.Info().Int("accounts", len(DemoAccounts)).Msg("demo accounts seeded")
	return nil
}

func (v *Verifier) Login(ctx context.Context, identifier, secret string) (*domain.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := v.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return &domain.Session{User: *user}, nil
}

func (v *Verifier) Signup(ctx context.Context, in ports.SignupInput) (*domain.Session, error) {
	user, err := v.create(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return &domain.Session{User: *user}, nil
}

// VerifySession always fails: this backend hands out no tokens.
func (v *Verifier) VerifySession(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrSessionInvalid
}

// RefreshSession re-reads the stored user by id. A deleted account, or a
// record whose username no longer matches, invalidates the session.
func (v *Verifier) RefreshSession(ctx context.Context, session domain.Session) (*domain.User, error) {
	if session.User.ID == "" {
		return nil, domain.ErrSessionInvalid
	}
	user, err := v.repo.FindByID(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if user.Username != session.User.Username {
		return nil, domain.ErrSessionInvalid
	}
	user.PasswordHash = ""
	return user, nil
}

func (v *Verifier) CreateAdmin(ctx context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.Can(actor, domain.ActionCreateAdmin) {
		return nil, domain.ErrForbidden
	}
	user, err := v.create(ctx, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	v.log.Info().Str("admin", user.Username).Str("created_by", actor.Username).Msg("admin account created")
	return user, nil
}

// Logout has nothing to revoke.
func (v *Verifier) Logout(context.Context, string) error {
	return nil
}

func (v *Verifier) create(ctx context.Context, in ports.SignupInput, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	exists, err := v.repo.Exists(ctx, username, "")
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), v.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := v.repo.Create(ctx, &domain.User{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
