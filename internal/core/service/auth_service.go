package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

const (
	// DefaultTokenTTL is the lifetime of issued bearer tokens.
	DefaultTokenTTL = 7 * 24 * time.Hour
	defaultHashCost = 12
)

var _ ports.CredentialVerifier = (*AuthService)(nil)

// dummyHash is compared against when the identifier is unknown, so both
// rejection paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("verma-hardware-placeholder"), defaultHashCost)
	return h
})

// AuthService verifies credentials against the user repository and issues
// signed, time-limited bearer tokens.
type AuthService struct {
	repo      ports.UserRepository
	revoker   ports.TokenRevoker
	jwtSecret []byte
	tokenTTL  time.Duration
	hashCost  int
	now       func() time.Time
	log       zerolog.Logger
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithClock overrides the time source used for token timestamps.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

// NewAuthService builds the token-issuing verifier. revoker may be nil, in
// which case logout cannot invalidate tokens before they expire.
func NewAuthService(repo ports.UserRepository, revoker ports.TokenRevoker, jwtSecret string, tokenTTL time.Duration, opts ...AuthOption) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	s := &AuthService{
		repo:      repo,
		revoker:   revoker,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		hashCost:  defaultHashCost,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.Session, error) {
	user, err := s.createAccount(ctx, in, domain.RoleUser)
	if err != nil {
		observe("signup", err)
		return nil, err
	}
	session, err := s.issue(user)
	observe("signup", err)
	return session, err
}

func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*domain.Session, error) {
	session, err := s.login(ctx, strings.TrimSpace(identifier), secret)
	observe("login", err)
	return session, err
}

func (s *AuthService) login(ctx context.Context, identifier, secret string) (*domain.Session, error) {
	if identifier == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(secret))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// VerifySession validates the token signature and expiry, rejects revoked
// tokens, and re-fetches the identity named by the subject claim.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.verify(ctx, token)
	observe("verify", err)
	return user, err
}

func (s *AuthService) verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, domain.ErrSessionInvalid
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("verify session: %w", err)
		}
		if revoked {
			return nil, domain.ErrSessionInvalid
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrSessionInvalid
	}

	user, err := s.repo.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}
	return sanitize(user), nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error) {
	if err := authorize(actor, domain.ActionCreateAdmin); err != nil {
		observe("create_admin", err)
		return nil, err
	}

	user, err := s.createAccount(ctx, in, domain.RoleAdmin)
	observe("create_admin", err)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("admin_id", user.ID).Str("created_by", actor.ID).Msg("admin account created")
	return sanitize(user), nil
}

// Logout revokes token until its natural expiry. Tokens that no longer
// parse are already unusable and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, token, exp.Time); err != nil {
		observe("logout", err)
		return fmt.Errorf("logout: %w", err)
	}
	observe("logout", nil)
	return nil
}

func (s *AuthService) createAccount(ctx context.Context, in ports.SignupInput, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	exists, err := s.repo.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.Session, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.Session{
		User:      *sanitize(user),
		Token:     signed,
		ExpiresAt: time.Unix(exp.Unix(), 0).UTC(),
	}, nil
}

func (s *AuthService) parse(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func sanitize(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// observe records the outcome of a credential operation.
func observe(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrSessionInvalid),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrValidation):
		result = "rejected"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
