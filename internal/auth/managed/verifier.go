// Package managed delegates credential storage and token issuance to a
// GoTrue-compatible auth service and keeps application roles in a profile
// table keyed by the managed identity id.
package managed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.CredentialVerifier = (*Verifier)(nil)

// Profiles stores the application side of a managed identity.
type Profiles interface {
	ports.UserDirectory
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// Config locates the auth service.
type Config struct {
	URL        string
	AnonKey    string
	ServiceKey string
	HTTPClient *http.Client
}

type Verifier struct {
	api      *client
	profiles Profiles
	now      func() time.Time
	log      zerolog.Logger
}

func New(cfg Config, profiles Profiles, log zerolog.Logger) *Verifier {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Verifier{
		api: &client{
			baseURL:    strings.TrimRight(cfg.URL, "/"),
			anonKey:    cfg.AnonKey,
			serviceKey: cfg.ServiceKey,
			http:       httpClient,
		},
		profiles: profiles,
		now:      time.Now,
		log:      log,
	}
}

// Login accepts an email or a username; usernames are resolved to the email
// on file before the password grant.
func (v *Verifier) Login(ctx context.Context, identifier, secret string) (*domain.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, domain.ErrInvalidCredentials
	}

	email := identifier
	if !strings.Contains(identifier, "@") {
		profile, err := v.profiles.FindByUsername(ctx, identifier)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrInvalidCredentials
			}
			return nil, fmt.Errorf("login: %w", err)
		}
		email = profile.Email
	}

	var tok tokenResponse
	body := map[string]string{"email": strings.ToLower(email), "password": secret}
	if err := v.api.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &tok); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	user, err := v.profiles.FindByID(ctx, tok.User.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		// Identity without a profile: deleted here or registered elsewhere.
		v.log.Warn().Str("identity_id", tok.User.ID).Msg("login refused for identity without profile")
		if err := v.Logout(ctx, tok.AccessToken); err != nil {
			v.log.Warn().Err(err).Msg("failed to end refused session")
		}
		return nil, domain.ErrInvalidCredentials
	}
	return v.session(user, tok), nil
}

// Signup registers the identity with the auth service and then records its
// profile with role user. When the service requires email confirmation no
// token is returned and the session carries none.
func (v *Verifier) Signup(ctx context.Context, in ports.SignupInput) (*domain.Session, error) {
	in, err := v.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var resp signupResponse
	body := map[string]any{
		"email":    in.Email,
		"password": in.Password,
		"data":     map[string]string{"username": in.Username, "name": in.Name},
	}
	if err := v.api.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, v.mapCreateErr("signup", err)
	}

	identity := resp.user()
	if identity.ID == "" {
		return nil, errors.New("signup: auth service returned no user id")
	}
	user, err := v.createProfile(ctx, identity.ID, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return v.session(user, resp.tokenResponse), nil
}

func (v *Verifier) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionInvalid
	}

	var identity authUser
	if err := v.api.do(ctx, http.MethodGet, "/auth/v1/user", token, nil, &identity); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	user, err := v.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}
	return user, nil
}

// CreateAdmin uses the service-role key to register a pre-confirmed identity.
func (v *Verifier) CreateAdmin(ctx context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.Can(actor, domain.ActionCreateAdmin) {
		return nil, domain.ErrForbidden
	}
	if v.api.serviceKey == "" {
		return nil, errors.New("create admin: service key not configured")
	}

	in, err := v.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var identity authUser
	body := map[string]any{
		"email":         in.Email,
		"password":      in.Password,
		"email_confirm": true,
		"user_metadata": map[string]string{"username": in.Username, "name": in.Name},
	}
	if err := v.api.do(ctx, http.MethodPost, "/auth/v1/admin/users", v.api.serviceKey, body, &identity); err != nil {
		return nil, v.mapCreateErr("create admin", err)
	}

	user, err := v.createProfile(ctx, identity.ID, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	v.log.Info().Str("admin_id", user.ID).Str("created_by", actor.ID).Msg("admin account created")
	return user, nil
}

// Logout ends the session at the auth service. Already invalid tokens are
// treated as logged out.
func (v *Verifier) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := v.api.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil, nil); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (v *Verifier) prepare(ctx context.Context, in ports.SignupInput) (ports.SignupInput, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" {
		return in, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if in.Username == "" {
		in.Username = localPart(in.Email)
	}

	taken, err := v.profiles.UsernameTaken(ctx, in.Username)
	if err != nil {
		return in, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return in, domain.ErrUserExists
	}
	return in, nil
}

func (v *Verifier) mapCreateErr(op string, err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		if apiErr.alreadyRegistered() {
			return domain.ErrUserExists
		}
		if apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %s", domain.ErrValidation, apiErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (v *Verifier) createProfile(ctx context.Context, id string, in ports.SignupInput, role domain.Role) (*domain.User, error) {
	user, err := v.profiles.Create(ctx, &domain.User{
		ID:       id,
		Username: in.Username,
		Name:     in.Name,
		Email:    in.Email,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return user, nil
}

// DeleteIdentity removes the identity from the auth service with the
// service-role key. An identity the service no longer knows counts as deleted.
func (v *Verifier) DeleteIdentity(ctx context.Context, id string) error {
	if v.api.serviceKey == "" {
		return errors.New("delete identity: service key not configured")
	}
	path := "/auth/v1/admin/users/" + url.PathEscape(id)
	if err := v.api.do(ctx, http.MethodDelete, path, v.api.serviceKey, nil, nil); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func (v *Verifier) session(user *domain.User, tok tokenResponse) *domain.Session {
	s := &domain.Session{User: *user, Token: tok.AccessToken}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0).UTC()
	case tok.ExpiresIn > 0:
		s.ExpiresAt = v.now().Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()
	}
	return s
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
