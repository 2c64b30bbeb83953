package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("liveness error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	ok := Check{Name: "postgres", Ping: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	cases := []struct {
		checks []Check
		code   int
		status string
	}{
		{nil, http.StatusOK, "ok"},
		{[]Check{ok}, http.StatusOK, "ok"},
		{[]Check{ok, down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewReadinessHandler(tc.checks...).Readiness(c); err != nil {
			t.Fatalf("readiness error: %v", err)
		}
		if rec.Code != tc.code {
			t.Fatalf("expected %d, got %d", tc.code, rec.Code)
		}

		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Status != tc.status || len(resp.Dependencies) != len(tc.checks) {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if tc.code != http.StatusOK && resp.Dependencies["redis"].Error != "connection refused" {
			t.Fatalf("expected redis error detail, got %+v", resp.Dependencies["redis"])
		}
	}
}
