package blog

import (
	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// RegisterRoutes sets up the blog endpoints on the given group. Reads
// are public, publishing needs a user, moderation needs an admin.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/blogs", h.List)
	g.GET("/blogs/:id", h.Get)
	g.POST("/blogs", h.Create, auth.RequireAuth())
	g.PUT("/blogs/:id", h.Update, auth.RequireAdmin())
	g.DELETE("/blogs/:id", h.Delete, auth.RequireAdmin())
}
