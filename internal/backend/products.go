package backend

import (
	"context"
	"net/http"
)

// ListProducts fetches the full catalog. This is the catalog snapshot the
// cart reconciles against: authoritative for price and stock at fetch time.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/products/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.getJSON(ctx, "/products/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// --- Admin product management ---

// CreateProduct creates a product with an optional image (multipart).
func (c *Client) CreateProduct(ctx context.Context, creds Credentials, input ProductInput) error {
	fields := map[string]string{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price,
		"quantity":    input.Quantity,
	}
	body, contentType, err := encodeMultipart(fields, "image", input.ImageName, input.ImageData)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/products/", body, contentType, creds)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, nil)
}

// UpdateProduct updates a product's textual fields. The image has its own
// endpoint upstream, see UpdateProductImage.
func (c *Client) UpdateProduct(ctx context.Context, creds Credentials, id string, update ProductUpdate) error {
	return c.sendJSON(ctx, http.MethodPut, "/products/"+id, creds, update, nil)
}

// UpdateProductImage replaces a product's image (multipart PATCH).
func (c *Client) UpdateProductImage(ctx context.Context, creds Credentials, id, imageName string, imageData []byte) error {
	body, contentType, err := encodeMultipart(nil, "image", imageName, imageData)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, "/products/"+id, body, contentType, creds)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, nil)
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, creds Credentials, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/products/"+id, creds, nil, nil)
}
