package cart

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the cart endpoints on the given route group.
// The cart itself is session-scoped and works for anonymous visitors;
// only checkout demands a logged-in user, and that gate lives in the
// service so the error carries the auth-required classifier.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/cart", h.Get)
	g.POST("/cart/items", h.Add)
	// Both item routes share the :id name; PUT addresses lines by product
	// id, DELETE by position.
	g.PUT("/cart/items/:id", h.SetQuantity)
	g.DELETE("/cart/items/:id", h.Remove)
	g.POST("/checkout", h.Checkout)
}
