// Package admin provides the back-office surface: dashboard statistics,
// order fulfillment, product and user management, and manager invites.
// Everything here proxies to the upstream's admin endpoints with the
// caller's credential jar; the upstream re-checks the role on its side.
package admin

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
	"github.com/mmfoods/storefront/internal/middleware"
	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// AdminAPI is the slice of the upstream API the back office uses.
type AdminAPI interface {
	DashboardStats(ctx context.Context, creds backend.Credentials) (*backend.DashboardStats, error)
	ListAllOrders(ctx context.Context, creds backend.Credentials) ([]backend.Order, error)
	UpdateOrderStatus(ctx context.Context, creds backend.Credentials, orderID, status string) error
	CreateProduct(ctx context.Context, creds backend.Credentials, input backend.ProductInput) error
	UpdateProduct(ctx context.Context, creds backend.Credentials, id string, update backend.ProductUpdate) error
	UpdateProductImage(ctx context.Context, creds backend.Credentials, id, imageName string, imageData []byte) error
	DeleteProduct(ctx context.Context, creds backend.Credentials, id string) error
	ListUsers(ctx context.Context, creds backend.Credentials) ([]backend.User, error)
	UpdateUserRole(ctx context.Context, creds backend.Credentials, userID, role string) error
	DeleteUser(ctx context.Context, creds backend.Credentials, userID string) error
	InviteManager(ctx context.Context, creds backend.Credentials, email string) (string, error)
}

// Handler handles back-office HTTP requests.
type Handler struct {
	api AdminAPI
}

// NewHandler creates a new admin handler.
func NewHandler(api AdminAPI) *Handler {
	return &Handler{api: api}
}

// Dashboard returns store-wide counters (GET /api/admin/dashboard-stats).
func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.api.DashboardStats(c.Request().Context(), auth.GetCredentials(c))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, stats)
}

// --- Orders ---

// Orders returns every order in the store (GET /api/admin/orders).
func (h *Handler) Orders(c echo.Context) error {
	orders, err := h.api.ListAllOrders(c.Request().Context(), auth.GetCredentials(c))
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []backend.Order{}
	}
	return middleware.JSON(c, http.StatusOK, orders)
}

// statusRequest is the body for PATCH /api/admin/orders/:id.
type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// UpdateOrderStatus moves an order through fulfillment
// (PATCH /api/admin/orders/:id).
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return apperror.NewBadRequest("status is required")
	}
	if err := h.api.UpdateOrderStatus(c.Request().Context(), auth.GetCredentials(c), c.Param("id"), req.Status); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "order updated")
}

// --- Products ---

// CreateProduct adds a product to the catalog
// (POST /api/admin/products, multipart).
func (h *Handler) CreateProduct(c echo.Context) error {
	input := backend.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Quantity:    c.FormValue("quantity"),
	}
	if input.Name == "" || input.Price == "" {
		return apperror.NewValidation("name and price are required")
	}

	name, data, err := readUpload(c, "image")
	if err != nil {
		return err
	}
	input.ImageName = name
	input.ImageData = data

	if err := h.api.CreateProduct(c.Request().Context(), auth.GetCredentials(c), input); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusCreated, "product created")
}

// UpdateProduct changes a product's fields except its image
// (PUT /api/admin/products/:id).
func (h *Handler) UpdateProduct(c echo.Context) error {
	var update backend.ProductUpdate
	if err := c.Bind(&update); err != nil {
		return apperror.NewBadRequest("invalid product update")
	}
	if err := h.api.UpdateProduct(c.Request().Context(), auth.GetCredentials(c), c.Param("id"), update); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "product updated")
}

// UpdateProductImage replaces a product's image
// (PATCH /api/admin/products/:id/image, multipart).
func (h *Handler) UpdateProductImage(c echo.Context) error {
	name, data, err := readUpload(c, "image")
	if err != nil {
		return err
	}
	if data == nil {
		return apperror.NewValidation("image file is required")
	}
	if err := h.api.UpdateProductImage(c.Request().Context(), auth.GetCredentials(c), c.Param("id"), name, data); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "product image updated")
}

// DeleteProduct removes a product (DELETE /api/admin/products/:id).
func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.api.DeleteProduct(c.Request().Context(), auth.GetCredentials(c), c.Param("id")); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "product deleted")
}

// --- Users ---

// Users returns every registered account (GET /api/admin/users).
func (h *Handler) Users(c echo.Context) error {
	users, err := h.api.ListUsers(c.Request().Context(), auth.GetCredentials(c))
	if err != nil {
		return err
	}
	if users == nil {
		users = []backend.User{}
	}
	return middleware.JSON(c, http.StatusOK, users)
}

// roleRequest is the body for PUT /api/admin/users/:id/role.
type roleRequest struct {
	Role string `json:"role" form:"role"`
}

// UpdateUserRole changes an account's role (PUT /api/admin/users/:id/role).
func (h *Handler) UpdateUserRole(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return apperror.NewBadRequest("role is required")
	}
	if err := h.api.UpdateUserRole(c.Request().Context(), auth.GetCredentials(c), c.Param("id"), req.Role); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "role updated")
}

// DeleteUser removes an account (DELETE /api/admin/users/:id).
func (h *Handler) DeleteUser(c echo.Context) error {
	if err := h.api.DeleteUser(c.Request().Context(), auth.GetCredentials(c), c.Param("id")); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "user deleted")
}

// inviteRequest is the body for POST /api/admin/invite-manager.
type inviteRequest struct {
	Email string `json:"email" form:"email"`
}

// InviteManager issues a manager invitation token
// (POST /api/admin/invite-manager).
func (h *Handler) InviteManager(c echo.Context) error {
	var req inviteRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return apperror.NewValidation("email is required")
	}
	token, err := h.api.InviteManager(c.Request().Context(), auth.GetCredentials(c), req.Email)
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, map[string]string{"token": token})
}

// readUpload reads an optional multipart file field. A missing field is
// not an error; the caller decides whether the file is required.
func readUpload(c echo.Context, field string) (string, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, apperror.NewBadRequest("could not read uploaded file")
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, 8<<20))
	if err != nil {
		return "", nil, apperror.NewBadRequest("could not read uploaded file")
	}
	return file.Filename, data, nil
}
