// Package orders exposes the authenticated user's order history. Orders
// are created by the cart's checkout; this plugin only reads them back.
package orders

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/backend"
	"github.com/mmfoods/storefront/internal/middleware"
	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// OrdersAPI is the slice of the upstream API this plugin reads from.
type OrdersAPI interface {
	ListOrders(ctx context.Context, creds backend.Credentials) ([]backend.Order, error)
}

// Handler handles HTTP requests for order history.
type Handler struct {
	api OrdersAPI
}

// NewHandler creates a new orders handler.
func NewHandler(api OrdersAPI) *Handler {
	return &Handler{api: api}
}

// List returns the caller's order history (GET /api/orders).
func (h *Handler) List(c echo.Context) error {
	orders, err := h.api.ListOrders(c.Request().Context(), auth.GetCredentials(c))
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []backend.Order{}
	}
	return middleware.JSON(c, http.StatusOK, orders)
}
