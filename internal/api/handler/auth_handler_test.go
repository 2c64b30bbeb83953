package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubVerifier{
		signupFn: func(_ context.Context, in ports.SignupInput) (*domain.Session, error) {
			if in.Username != "alice" || in.Email != "a@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Session{
				User:      domain.User{ID: "u9", Username: in.Username, Role: domain.RoleUser},
				Token:     "tok",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/auth/signup", `{"username":"alice","password":"secret","email":"a@example.com"}`, nil)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token in response: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password leaked in response")
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	h := NewAuthHandler(&stubVerifier{})

	for _, body := range []string{
		`{"username":"alice"}`,
		`{"password":"secret"}`,
		`{"username":"alice","password":"secret","email":"not-an-email"}`,
		`not json`,
	} {
		c, _ := newContext(t, http.MethodPost, "/auth/signup", body, nil)
		assertHTTPError(t, h.Signup(c), http.StatusBadRequest)
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	stub := &stubVerifier{
		signupFn: func(context.Context, ports.SignupInput) (*domain.Session, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newContext(t, http.MethodPost, "/auth/signup", `{"username":"bob","password":"secret"}`, nil)
	if err := h.Signup(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubVerifier{
		loginFn: func(_ context.Context, identifier, secret string) (*domain.Session, error) {
			if identifier == "admin" && secret == "admin" {
				return &domain.Session{User: *adminUser, Token: "tok"}, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/auth/login", `{"identifier":"admin","password":"admin"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(t, http.MethodPost, "/auth/login", `{"identifier":"admin","password":"nope"}`, nil)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	stub := &stubVerifier{}
	h := NewAuthHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/auth/logout", "", adminUser)
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(stub.loggedOut) != 1 || stub.loggedOut[0] != "token-a1" {
		t.Fatalf("unexpected logout result: %d %v", rec.Code, stub.loggedOut)
	}

	c, rec = newContext(t, http.MethodGet, "/auth/me", "", adminUser)
	if err := h.Me(c); err != nil {
		t.Fatalf("me error: %v", err)
	}
	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil || user.Username != "admin" {
		t.Fatalf("unexpected me payload: %s", rec.Body.String())
	}

	c, _ = newContext(t, http.MethodGet, "/auth/me", "", nil)
	assertHTTPError(t, h.Me(c), http.StatusUnauthorized)
}

func TestAuthHandler_CreateAdmin(t *testing.T) {
	stub := &stubVerifier{
		createAdminFn: func(_ context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error) {
			if !domain.Can(actor, domain.ActionCreateAdmin) {
				return nil, domain.ErrForbidden
			}
			return &domain.User{ID: "n1", Username: in.Username, Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(stub)
	body := `{"username":"newadmin","password":"secret"}`

	c, rec := newContext(t, http.MethodPost, "/auth/admins", body, adminUser)
	if err := h.CreateAdmin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newContext(t, http.MethodPost, "/auth/admins", body, customerUser)
	if err := h.CreateAdmin(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a plain user, got %v", err)
	}
}
