package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
	"github.com/vermahardware/storefront/internal/guard"
	"github.com/vermahardware/storefront/internal/identity"
)

// Guard protects a page route the same way the client does: anonymous
// visitors are redirected to the login page and users lacking a role for
// action to their landing page.
func Guard(verifier ports.SessionVerifier, action domain.Action) echo.MiddlewareFunc {
	allowed := domain.RolesFor(action)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := identity.State{Phase: identity.PhaseAnonymous}
			if token, err := bearerToken(c); err == nil && token != "" {
				if user, err := verifier.VerifySession(c.Request().Context(), token); err == nil {
					state = identity.State{Phase: identity.PhaseAuthenticated, User: user, Token: token}
					c.Set(ContextKeyUser, user)
					c.Set(ContextKeyToken, token)
				}
			}

			decision := guard.Decide(state, allowed)
			metrics.GuardDecisionsTotal.WithLabelValues(decision.Outcome.String()).Inc()

			switch decision.Outcome {
			case guard.Render:
				return next(c)
			case guard.RedirectLogin, guard.RedirectLanding:
				return c.Redirect(http.StatusFound, decision.Location)
			default:
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
	}
}
