package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// DashboardHandler serves the role-gated landing pages. Access is decided by
// the Guard middleware before these run.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// User handles GET /user-dashboard.
//
// @Summary      Signed-in user's landing page
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Success      302
// @Router       /user-dashboard [get]
func (h *DashboardHandler) User(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Dashboard: "user",
		User:      user,
		Links:     linksFor(user),
	})
}

// Admin handles GET /admin-dashboard.
//
// @Summary      Staff landing page
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Success      302
// @Router       /admin-dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Dashboard: "admin",
		User:      user,
		Links:     linksFor(user),
	})
}

var dashboardLinks = []struct {
	name   string
	href   string
	action domain.Action
}{
	{"products", "/products", domain.ActionManageCatalog},
	{"contacts", "/contacts", domain.ActionReadContacts},
	{"contacts_export", "/contacts/export", domain.ActionExportContacts},
	{"users", "/users", domain.ActionManageUsers},
	{"create_admin", "/auth/admins", domain.ActionCreateAdmin},
}

func linksFor(u *domain.User) map[string]string {
	links := map[string]string{
		"self":            "/auth/me",
		"recently_viewed": "/me/recently-viewed",
	}
	for _, l := range dashboardLinks {
		if domain.Can(u, l.action) {
			links[l.name] = l.href
		}
	}
	return links
}
