package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/plugins/admin"
	"github.com/mmfoods/storefront/internal/plugins/auth"
	"github.com/mmfoods/storefront/internal/plugins/blog"
	"github.com/mmfoods/storefront/internal/plugins/cart"
	"github.com/mmfoods/storefront/internal/plugins/catalog"
	"github.com/mmfoods/storefront/internal/plugins/orders"
)

// RegisterRoutes sets up all application routes. It wires each plugin's
// services to the shared infrastructure and delegates to the plugin's
// route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.Redis.Ping(c.Request().Context()).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Services ---
	sessionService := auth.NewSessionService(a.Client, a.Redis, a.Config.Session.TTL)
	cartService := cart.NewService(a.Client, cart.NewRepository(a.Redis, a.Config.Session.TTL))

	// --- API group ---
	// Every /api route runs with a session: the cookie is minted on first
	// contact and the identity is resolved before any handler or guard.
	api := e.Group("/api",
		auth.EnsureSession(sessionService, a.Config.Session.CookieName, a.Config.Session.TTL, !a.Config.IsDevelopment()),
		auth.SessionContext(sessionService),
	)

	auth.RegisterRoutes(api, auth.NewHandler(sessionService))
	catalog.RegisterRoutes(api, catalog.NewHandler(a.Client))
	cart.RegisterRoutes(api, cart.NewHandler(cartService))
	orders.RegisterRoutes(api, orders.NewHandler(a.Client))
	blog.RegisterRoutes(api, blog.NewHandler(a.Client))
	admin.RegisterRoutes(api, admin.NewHandler(a.Client))
}
