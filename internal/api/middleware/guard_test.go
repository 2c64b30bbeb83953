package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/core/domain"
)

func TestGuard(t *testing.T) {
	cases := []struct {
		name     string
		token    string
		action   domain.Action
		code     int
		location string
	}{
		{"anonymous admin page", "", domain.ActionViewAdminDashboard, http.StatusFound, "/login"},
		{"invalid token", "nope", domain.ActionViewUserDashboard, http.StatusFound, "/login"},
		{"user on admin page", "user-token", domain.ActionViewAdminDashboard, http.StatusFound, "/user-dashboard"},
		{"user on user page", "user-token", domain.ActionViewUserDashboard, http.StatusOK, ""},
		{"admin on admin page", "admin-token", domain.ActionViewAdminDashboard, http.StatusOK, ""},
		{"superadmin on admin page", "super-token", domain.ActionViewAdminDashboard, http.StatusOK, ""},
	}

	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Guard(verifier, tc.action)(func(c echo.Context) error {
			if UserFrom(c) == nil {
				t.Fatalf("%s: rendered without a user", tc.name)
			}
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != tc.location {
			t.Fatalf("%s: expected location %q, got %q", tc.name, tc.location, got)
		}
	}
}
