package backend

import (
	"context"
	"net/http"
)

// CreateOrder submits an order for the authenticated session. The items
// carry the price snapshot from the cart -- the upstream validates them
// against its own catalog.
func (c *Client) CreateOrder(ctx context.Context, creds Credentials, items []OrderItem) (*Order, error) {
	body := map[string]any{"orderItems": items}
	var order Order
	if err := c.sendJSON(ctx, http.MethodPost, "/orders/", creds, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the authenticated user's order history.
func (c *Client) ListOrders(ctx context.Context, creds Credentials) ([]Order, error) {
	var orders []Order
	if err := c.getJSON(ctx, "/orders/", creds, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// --- Admin order management ---

// ListAllOrders returns every order in the store (admin only upstream).
func (c *Client) ListAllOrders(ctx context.Context, creds Credentials) ([]Order, error) {
	var orders []Order
	if err := c.getJSON(ctx, "/admin/orders", creds, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus patches an order's fulfillment status (admin only
// upstream). Valid statuses are owned by the upstream; the gateway passes
// the value through.
func (c *Client) UpdateOrderStatus(ctx context.Context, creds Credentials, orderID, status string) error {
	body := map[string]string{"status": status}
	return c.sendJSON(ctx, http.MethodPatch, "/admin/orders/"+orderID, creds, body, nil)
}
