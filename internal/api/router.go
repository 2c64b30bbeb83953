package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vermahardware/storefront/docs"
	"github.com/vermahardware/storefront/internal/api/handler"
	"github.com/vermahardware/storefront/internal/api/middleware"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
	"github.com/vermahardware/storefront/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs to mount the API.
type Deps struct {
	Verifier ports.CredentialVerifier
	Catalog  ports.CatalogService
	Contacts ports.ContactService
	Users    ports.UserService
	History  ports.ViewHistoryService
	// Views receives product views for asynchronous recording. Optional.
	Views  handler.ViewSink
	Checks []handlers.Check
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Dependencies ---
	auth := middleware.Auth(d.Verifier)
	optionalAuth := middleware.OptionalAuth(d.Verifier)

	authHandler := handler.NewAuthHandler(d.Verifier)
	productHandler := handler.NewProductHandler(d.Catalog, d.Views)
	contactHandler := handler.NewContactHandler(d.Contacts)
	userHandler := handler.NewUserHandler(d.Users, d.History)
	dashboardHandler := handler.NewDashboardHandler()

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, auth)
	e.GET("/auth/me", authHandler.Me, auth)
	e.POST("/auth/admins", authHandler.CreateAdmin, auth, middleware.RBAC(domain.ActionCreateAdmin))

	// --- Catalog ---
	e.GET("/products", productHandler.List)
	e.GET("/products/:id", productHandler.Get, optionalAuth)
	e.GET("/categories", productHandler.Categories)

	manageCatalog := middleware.RBAC(domain.ActionManageCatalog)
	e.POST("/products", productHandler.Create, auth, manageCatalog)
	e.PATCH("/products/:id", productHandler.Update, auth, manageCatalog)
	e.DELETE("/products/:id", productHandler.Delete, auth, manageCatalog)

	// --- Contacts ---
	e.POST("/contacts", contactHandler.Submit)
	e.GET("/contacts", contactHandler.List, auth, middleware.RBAC(domain.ActionReadContacts))
	e.GET("/contacts/export", contactHandler.Export, auth, middleware.RBAC(domain.ActionExportContacts))
	e.DELETE("/contacts/:id", contactHandler.Delete, auth, middleware.RBAC(domain.ActionDeleteContacts))

	// --- Users ---
	e.GET("/users", userHandler.List, auth, middleware.RBAC(domain.ActionManageUsers))
	e.DELETE("/users/:id", userHandler.Delete, auth, middleware.RBAC(domain.ActionManageUsers))
	e.PATCH("/users/:id/role", userHandler.ChangeRole, auth, middleware.RBAC(domain.ActionChangeRole))
	e.GET("/me/recently-viewed", userHandler.RecentlyViewed, auth)

	// --- Guarded pages ---
	e.GET("/user-dashboard", dashboardHandler.User, middleware.Guard(d.Verifier, domain.ActionViewUserDashboard))
	e.GET("/admin-dashboard", dashboardHandler.Admin, middleware.Guard(d.Verifier, domain.ActionViewAdminDashboard))

	// --- Health, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
