// Package cart implements the session-scoped shopping cart. The cart
// keeps full product detail in memory for the duration of a request but
// persists only (product id, quantity) pairs; everything else is
// rehydrated from the live catalog so stale prices and stock figures
// never survive a restart.
package cart

import (
	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
)

// Line is one product entry in a cart. Product ids are unique across
// lines: adding an existing product merges into its line. MaxQuantity is
// the stock ceiling captured at rehydration time.
type Line struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Image       string  `json:"image,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
}

// Subtotal returns the line's quantity times its unit price.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Cart is the in-memory cart for one session. The zero value is an
// empty, usable cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Total returns the sum over all lines of quantity times unit price. It
// is always derived, never stored.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// find returns the index of the line for productID, or -1.
func (c *Cart) find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// add merges a product into the cart: an existing line is incremented by
// one, a new product gets a fresh line with quantity 1 and a price
// snapshot. Incrementing past the stock ceiling returns a capacity error
// and leaves the cart untouched.
func (c *Cart) add(p backend.Product) error {
	if p.Quantity < 1 {
		return apperror.NewCapacity("this product is out of stock")
	}
	if i := c.find(p.ID); i >= 0 {
		if c.Lines[i].Quantity >= c.Lines[i].MaxQuantity {
			return apperror.NewCapacity("no more stock available for this product")
		}
		c.Lines[i].Quantity++
		return nil
	}
	c.Lines = append(c.Lines, Line{
		ProductID:   p.ID,
		Name:        p.Name,
		Image:       p.Image,
		UnitPrice:   p.Price,
		Quantity:    1,
		MaxQuantity: p.Quantity,
	})
	return nil
}

// setQuantity sets the quantity of an existing line. Values outside
// [1, MaxQuantity] return a capacity error without mutating the line;
// removal goes through remove, never through a zero quantity.
func (c *Cart) setQuantity(productID string, qty int) error {
	i := c.find(productID)
	if i < 0 {
		return apperror.NewNotFound("product is not in your cart")
	}
	if qty < 1 {
		return apperror.NewCapacity("quantity must be at least 1")
	}
	if qty > c.Lines[i].MaxQuantity {
		return apperror.NewCapacity("not enough stock for the requested quantity")
	}
	c.Lines[i].Quantity = qty
	return nil
}

// remove deletes the line at the given position. Out-of-range indexes
// are a no-op.
func (c *Cart) remove(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

// persistedLine is the storage projection of a cart line. Only the
// product id and quantity survive persistence.
type persistedLine struct {
	ID  string `json:"_id"`
	Qty int    `json:"qty"`
}

// snapshot returns the cart's persistable projection.
func (c *Cart) snapshot() []persistedLine {
	out := make([]persistedLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, persistedLine{ID: l.ProductID, Qty: l.Quantity})
	}
	return out
}

// rehydrate rebuilds a cart from persisted pairs and the live catalog.
// Pairs whose product no longer exists or has no stock are dropped;
// surviving quantities are clamped to [1, stock]. The result depends
// only on the inputs, so rehydrating twice changes nothing.
func rehydrate(persisted []persistedLine, catalog []backend.Product) *Cart {
	byID := make(map[string]backend.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	cart := &Cart{}
	for _, entry := range persisted {
		p, ok := byID[entry.ID]
		if !ok || p.Quantity < 1 {
			continue
		}
		qty := entry.Qty
		if qty < 1 {
			qty = 1
		}
		if qty > p.Quantity {
			qty = p.Quantity
		}
		cart.Lines = append(cart.Lines, Line{
			ProductID:   p.ID,
			Name:        p.Name,
			Image:       p.Image,
			UnitPrice:   p.Price,
			Quantity:    qty,
			MaxQuantity: p.Quantity,
		})
	}
	return cart
}
