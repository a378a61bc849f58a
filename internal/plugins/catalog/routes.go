package catalog

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the public catalog endpoints on the given group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/products", h.List)
	g.GET("/products/:id", h.Get)
}
