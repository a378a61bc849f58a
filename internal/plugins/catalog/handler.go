// Package catalog exposes the product catalog read endpoints. The
// catalog itself lives upstream; this plugin is a pass-through that
// keeps the gateway's error taxonomy on the way out.
package catalog

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/backend"
	"github.com/mmfoods/storefront/internal/middleware"
)

// CatalogAPI is the slice of the upstream API this plugin reads from.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
	GetProduct(ctx context.Context, id string) (*backend.Product, error)
}

// Handler handles HTTP requests for the catalog.
type Handler struct {
	api CatalogAPI
}

// NewHandler creates a new catalog handler.
func NewHandler(api CatalogAPI) *Handler {
	return &Handler{api: api}
}

// List returns all purchasable products (GET /api/products).
func (h *Handler) List(c echo.Context) error {
	products, err := h.api.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if products == nil {
		products = []backend.Product{}
	}
	return middleware.JSON(c, http.StatusOK, products)
}

// Get returns one product by id (GET /api/products/:id).
func (h *Handler) Get(c echo.Context) error {
	product, err := h.api.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, product)
}
