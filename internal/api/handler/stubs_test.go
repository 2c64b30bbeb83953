package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/api/middleware"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var (
	adminUser    = &domain.User{ID: "a1", Username: "admin", Role: domain.RoleAdmin}
	customerUser = &domain.User{ID: "u1", Username: "user", Role: domain.RoleUser}
)

// newContext builds an echo context with the validator registered, an
// optional JSON body, and an optional authenticated user.
func newContext(t *testing.T, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
		c.Set(middleware.ContextKeyToken, "token-"+user.ID)
	}
	return c, rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}

type stubVerifier struct {
	loginFn       func(ctx context.Context, identifier, secret string) (*domain.Session, error)
	signupFn      func(ctx context.Context, in ports.SignupInput) (*domain.Session, error)
	createAdminFn func(ctx context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error)
	loggedOut     []string
}

func (s *stubVerifier) Login(ctx context.Context, identifier, secret string) (*domain.Session, error) {
	return s.loginFn(ctx, identifier, secret)
}

func (s *stubVerifier) Signup(ctx context.Context, in ports.SignupInput) (*domain.Session, error) {
	return s.signupFn(ctx, in)
}

func (s *stubVerifier) VerifySession(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrSessionInvalid
}

func (s *stubVerifier) CreateAdmin(ctx context.Context, actor *domain.User, in ports.SignupInput) (*domain.User, error) {
	return s.createAdminFn(ctx, actor, in)
}

func (s *stubVerifier) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

type stubCatalog struct {
	products []domain.Product
	created  *ports.ProductInput
	patched  *domain.ProductPatch
}

func (s *stubCatalog) List(_ context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (s *stubCatalog) Categories(_ context.Context) ([]string, error) {
	return domain.Categories(s.products), nil
}

func (s *stubCatalog) Create(_ context.Context, actor *domain.User, in ports.ProductInput) (*domain.Product, error) {
	if !domain.Can(actor, domain.ActionManageCatalog) {
		return nil, domain.ErrForbidden
	}
	s.created = &in
	return &domain.Product{ID: "p-new", Name: in.Name, Price: in.Price, Category: in.Category}, nil
}

func (s *stubCatalog) Update(ctx context.Context, actor *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	s.patched = &patch
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	return p, nil
}

func (s *stubCatalog) Delete(_ context.Context, actor *domain.User, id string) error {
	if !domain.Can(actor, domain.ActionManageCatalog) {
		return domain.ErrForbidden
	}
	return nil
}

type stubSink struct {
	events []ports.ViewEvent
	full   bool
}

func (s *stubSink) Enqueue(ev ports.ViewEvent) bool {
	if s.full {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

type stubContacts struct {
	contacts []domain.Contact
	lastOpts ports.ExportOptions
	err      error
}

func (s *stubContacts) Submit(_ context.Context, in ports.ContactInput) (*domain.Contact, error) {
	c := domain.Contact{ID: "c-new", Name: in.Name, Email: in.Email, Message: in.Message}
	s.contacts = append([]domain.Contact{c}, s.contacts...)
	return &c, nil
}

func (s *stubContacts) List(_ context.Context, actor *domain.User) ([]domain.Contact, error) {
	if !domain.Can(actor, domain.ActionReadContacts) {
		return nil, domain.ErrForbidden
	}
	return s.contacts, nil
}

func (s *stubContacts) Delete(context.Context, *domain.User, string) error {
	return domain.ErrContactNotFound
}

func (s *stubContacts) Export(_ context.Context, actor *domain.User, w io.Writer, opts ports.ExportOptions) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.lastOpts = opts
	_, _ = io.WriteString(w, "\"name\",\"email\",\"message\",\"createdAt\"\n")
	return "contacts-2026-10-18.csv", nil
}

type stubUsers struct {
	changed domain.Role
}

func (s *stubUsers) List(context.Context, *domain.User) ([]domain.User, error) {
	return []domain.User{*adminUser, *customerUser}, nil
}

func (s *stubUsers) ChangeRole(_ context.Context, actor *domain.User, id string, role domain.Role) (*domain.User, error) {
	if !domain.Can(actor, domain.ActionChangeRole) {
		return nil, domain.ErrForbidden
	}
	s.changed = role
	return &domain.User{ID: id, Role: role}, nil
}

func (s *stubUsers) Delete(context.Context, *domain.User, string) error { return nil }

type stubHistory struct {
	recent map[string][]domain.Product
}

func (s *stubHistory) Record(context.Context, ports.ViewEvent) error { return nil }

func (s *stubHistory) Recent(_ context.Context, userID string) ([]domain.Product, error) {
	return s.recent[userID], nil
}

