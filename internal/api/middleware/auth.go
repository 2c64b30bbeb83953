package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

// Context keys set by Auth and OptionalAuth.
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// SessionCookie is consulted when no Authorization header is present.
const SessionCookie = "session"

// Auth resolves the bearer token through verifier and stores the user in
// the context. Requests without a valid token get 401.
func Auth(verifier ports.SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			user, err := verifier.VerifySession(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyToken, token)
			return next(c)
		}
	}
}

// OptionalAuth behaves like Auth when a valid token is presented and lets
// the request through anonymously otherwise.
func OptionalAuth(verifier ports.SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil || token == "" {
				return next(c)
			}
			if user, err := verifier.VerifySession(c.Request().Context(), token); err == nil {
				c.Set(ContextKeyUser, user)
				c.Set(ContextKeyToken, token)
			}
			return next(c)
		}
	}
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ContextKeyUser).(*domain.User)
	return u
}

// TokenFrom returns the bearer token the request was authenticated with.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(ContextKeyToken).(string)
	return t
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			return cookie.Value, nil
		}
		return "", nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
