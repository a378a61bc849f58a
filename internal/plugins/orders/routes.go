package orders

import (
	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// RegisterRoutes sets up the order history endpoint on the given group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/orders", h.List, auth.RequireAuth())
}
