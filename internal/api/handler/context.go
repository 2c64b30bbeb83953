package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/api/middleware"
	"github.com/vermahardware/storefront/internal/core/domain"
)

// ctxUser extracts the user injected by the Auth middleware and fails fast
// when the route was mounted without it.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
