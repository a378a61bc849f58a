package cart

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/middleware"
	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// Handler handles HTTP requests for the cart. Handlers are thin: they
// bind the request, call the service, and render the response.
type Handler struct {
	service Service
}

// NewHandler creates a new cart handler with the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// cartResponse is the cart payload sent to the display client. The total
// is computed on the way out.
type cartResponse struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
}

func toResponse(c *Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return cartResponse{Lines: lines, Total: c.Total()}
}

// Get returns the session's rehydrated cart (GET /api/cart).
func (h *Handler) Get(c echo.Context) error {
	cart, err := h.service.Get(c.Request().Context(), auth.GetSessionID(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, toResponse(cart))
}

// addRequest is the body for POST /api/cart/items.
type addRequest struct {
	ProductID string `json:"product_id" form:"product_id"`
}

// Add puts one unit of a product into the cart (POST /api/cart/items).
func (h *Handler) Add(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return apperror.NewBadRequest("product_id is required")
	}

	cart, err := h.service.Add(c.Request().Context(), auth.GetSessionID(c), req.ProductID)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, toResponse(cart))
}

// quantityRequest is the body for PUT /api/cart/items/:id.
type quantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// SetQuantity sets a line's quantity (PUT /api/cart/items/:id, where id
// is the product id).
func (h *Handler) SetQuantity(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid quantity request")
	}

	cart, err := h.service.SetQuantity(c.Request().Context(), auth.GetSessionID(c), c.Param("id"), req.Quantity)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, toResponse(cart))
}

// Remove deletes the line at a position (DELETE /api/cart/items/:id,
// where id is the zero-based line index).
func (h *Handler) Remove(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperror.NewBadRequest("index must be a number")
	}

	cart, err := h.service.Remove(c.Request().Context(), auth.GetSessionID(c), index)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, toResponse(cart))
}

// Checkout submits the cart as an order (POST /api/checkout).
func (h *Handler) Checkout(c echo.Context) error {
	session := auth.GetSession(c)
	order, err := h.service.Checkout(c.Request().Context(), auth.GetSessionID(c), session.User, auth.GetCredentials(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusCreated, order)
}
