package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/plugins/auth"
)

// RegisterRoutes sets up the back-office routes under /admin on the
// given API group. The whole group is admin-guarded; the upstream
// enforces the role again on every proxied call.
func RegisterRoutes(g *echo.Group, h *Handler) {
	admin := g.Group("/admin", auth.RequireAdmin())

	admin.GET("/dashboard-stats", h.Dashboard)

	admin.GET("/orders", h.Orders)
	admin.PATCH("/orders/:id", h.UpdateOrderStatus)

	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.PATCH("/products/:id/image", h.UpdateProductImage)
	admin.DELETE("/products/:id", h.DeleteProduct)

	admin.GET("/users", h.Users)
	admin.PUT("/users/:id/role", h.UpdateUserRole)
	admin.DELETE("/users/:id", h.DeleteUser)

	admin.POST("/invite-manager", h.InviteManager)
}
