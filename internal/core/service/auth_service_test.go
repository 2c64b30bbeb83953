package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

func newTestAuthService(repo *stubUserRepo, revoker *stubRevoker, opts ...AuthOption) *AuthService {
	opts = append([]AuthOption{WithHashCost(bcrypt.MinCost)}, opts...)
	if revoker == nil {
		return NewAuthService(repo, nil, "secret", 0, opts...)
	}
	return NewAuthService(repo, revoker, "secret", 0, opts...)
}

func TestAuthService_Signup_AssignsUserRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	session, err := svc.Signup(context.Background(), ports.SignupInput{
		Username: "alice", Password: "pass123", Email: "Alice@Example.com",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if session.User.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", session.User.Role)
	}
	if session.User.PasswordHash != "" {
		t.Fatalf("session must not carry the password hash")
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}

	stored := repo.users[0]
	if stored.Email != "alice@example.com" {
		t.Fatalf("expected email to be normalised, got %q", stored.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), nil)

	cases := []ports.SignupInput{
		{Username: "", Password: "pass"},
		{Username: "bob", Password: ""},
		{Username: "   ", Password: "pass"},
	}
	for _, in := range cases {
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Signup_DuplicateLeavesStoreUnchanged(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	if _, err := svc.Signup(context.Background(), ports.SignupInput{Username: "bob", Password: "pass"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := svc.Signup(context.Background(), ports.SignupInput{Username: "bob", Password: "other"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
}

func TestAuthService_Login_ByUsernameOrEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, ports.SignupInput{Username: "carol", Password: "s3cret", Email: "carol@example.com"}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	for _, identifier := range []string{"carol", "carol@example.com", "  carol  "} {
		session, err := svc.Login(ctx, identifier, "s3cret")
		if err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
		if session.User.Username != "carol" {
			t.Fatalf("unexpected user: %+v", session.User)
		}
	}
}

func TestAuthService_Login_RejectionsAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	_, _ = svc.Signup(ctx, ports.SignupInput{Username: "dave", Password: "goodpass"})

	_, wrongSecret := svc.Login(ctx, "dave", "badpass")
	_, unknown := svc.Login(ctx, "ghost", "goodpass")
	_, empty := svc.Login(ctx, "", "")

	for name, err := range map[string]error{"wrong secret": wrongSecret, "unknown": unknown, "empty": empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongSecret.Error() != unknown.Error() {
		t.Fatalf("rejections differ: %q vs %q", wrongSecret, unknown)
	}
}

func TestAuthService_TokenClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil, WithClock(func() time.Time { return now }))

	session, err := svc.Signup(context.Background(), ports.SignupInput{Username: "erin", Password: "pw", Email: "erin@example.com"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != session.User.ID {
		t.Fatalf("expected sub %s, got %v", session.User.ID, claims["sub"])
	}
	if claims["email"] != "erin@example.com" {
		t.Fatalf("unexpected email claim: %v", claims["email"])
	}
	exp, _ := claims.GetExpirationTime()
	if got := exp.Sub(now); got != DefaultTokenTTL {
		t.Fatalf("expected 7 day expiry, got %s", got)
	}
	if !session.ExpiresAt.Equal(now.Add(DefaultTokenTTL)) {
		t.Fatalf("unexpected session expiry %s", session.ExpiresAt)
	}
}

func TestAuthService_VerifySession(t *testing.T) {
	repo := newStubUserRepo()
	revoker := newStubRevoker()
	svc := newTestAuthService(repo, revoker)
	ctx := context.Background()

	session, err := svc.Signup(ctx, ports.SignupInput{Username: "frank", Password: "pw"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	user, err := svc.VerifySession(ctx, session.Token)
	if err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}
	if user.ID != session.User.ID || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.VerifySession(ctx, "not-a-token"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for garbage, got %v", err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.VerifySession(ctx, session.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after logout, got %v", err)
	}
}

func TestAuthService_VerifySession_Expired(t *testing.T) {
	now := time.Now()
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil, WithClock(func() time.Time { return now }))

	session, err := svc.Signup(context.Background(), ports.SignupInput{Username: "gina", Password: "pw"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	now = now.Add(DefaultTokenTTL + time.Minute)
	if _, err := svc.VerifySession(context.Background(), session.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for expired token, got %v", err)
	}
}

func TestAuthService_VerifySession_RevocationStoreDownFailsClosed(t *testing.T) {
	repo := newStubUserRepo()
	revoker := newStubRevoker()
	svc := newTestAuthService(repo, revoker)

	session, err := svc.Signup(context.Background(), ports.SignupInput{Username: "hank", Password: "pw"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	revoker.err = errors.New("connection refused")
	if _, err := svc.VerifySession(context.Background(), session.Token); err == nil {
		t.Fatalf("expected error when revocation store is unavailable")
	}
}

func TestAuthService_VerifySession_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)

	session, _ := svc.Signup(context.Background(), ports.SignupInput{Username: "ivan", Password: "pw"})
	repo.users = nil

	if _, err := svc.VerifySession(context.Background(), session.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestAuthService_CreateAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()
	in := ports.SignupInput{Username: "staff", Password: "pw"}

	if _, err := svc.CreateAdmin(ctx, nil, in); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.CreateAdmin(ctx, customer, in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for role user, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("rejected call must not create users")
	}

	created, err := svc.CreateAdmin(ctx, admin, in)
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if created.Role != domain.RoleAdmin {
		t.Fatalf("expected role admin, got %s", created.Role)
	}
	if created.PasswordHash != "" {
		t.Fatalf("returned admin must not carry the password hash")
	}
	if repo.users[0].PasswordHash == "" {
		t.Fatalf("expected hash to be stored")
	}
}

func TestAuthService_Logout_IgnoresUnparseableToken(t *testing.T) {
	revoker := newStubRevoker()
	svc := newTestAuthService(newStubUserRepo(), revoker)

	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(revoker.revoked) != 0 {
		t.Fatalf("nothing should be revoked")
	}
}
