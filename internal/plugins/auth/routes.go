package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/middleware"
)

// RegisterRoutes sets up the session endpoints on the given route group.
// These are public -- the guard middleware is exported separately for
// other plugins to use on their route groups.
//
// Credential endpoints are rate-limited to slow brute-force and
// credential stuffing: 10 attempts per IP per minute for login, 5 for
// register.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/session", h.Session)
	g.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	g.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	g.POST("/logout", h.Logout)
	g.PATCH("/profile", h.UpdateProfile, RequireAuth())
}
