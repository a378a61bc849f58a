package cart

import (
	"context"
	"log/slog"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
)

// StoreAPI is the slice of the upstream API the cart needs: the live
// catalog for rehydration and order submission for checkout.
// backend.Client satisfies it.
type StoreAPI interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
	CreateOrder(ctx context.Context, creds backend.Credentials, items []backend.OrderItem) (*backend.Order, error)
}

// Service defines the cart operations. Every call rehydrates from the
// persisted pairs and the live catalog first, so callers always operate
// on current prices and stock.
type Service interface {
	// Get returns the rehydrated cart for the session.
	Get(ctx context.Context, sid string) (*Cart, error)

	// Add puts one unit of the product into the cart, merging into an
	// existing line.
	Add(ctx context.Context, sid, productID string) (*Cart, error)

	// SetQuantity sets an existing line's quantity directly.
	SetQuantity(ctx context.Context, sid, productID string, qty int) (*Cart, error)

	// Remove deletes the line at the given position.
	Remove(ctx context.Context, sid string, index int) (*Cart, error)

	// Checkout submits the cart as an order for the given user. The cart
	// is cleared only when the upstream accepts the order.
	Checkout(ctx context.Context, sid string, user *backend.User, creds backend.Credentials) (*backend.Order, error)
}

// service implements Service over the repository and the upstream API.
type service struct {
	api  StoreAPI
	repo Repository
}

// NewService creates a cart service with the given dependencies.
func NewService(api StoreAPI, repo Repository) Service {
	return &service{api: api, repo: repo}
}

// load rehydrates the session's cart from storage and the live catalog.
func (s *service) load(ctx context.Context, sid string) (*Cart, error) {
	persisted, err := s.repo.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	catalog, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return rehydrate(persisted, catalog), nil
}

// persist writes the cart's projection back to storage. Failures are
// logged, not returned: the in-memory mutation already succeeded and the
// next rehydration will simply see the previous state.
func (s *service) persist(ctx context.Context, sid string, c *Cart) {
	if err := s.repo.Save(ctx, sid, c.snapshot()); err != nil {
		slog.Warn("cart persist failed", "error", err, "session", abbrev(sid))
	}
}

func (s *service) Get(ctx context.Context, sid string) (*Cart, error) {
	return s.load(ctx, sid)
}

func (s *service) Add(ctx context.Context, sid, productID string) (*Cart, error) {
	persisted, err := s.repo.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	catalog, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	var product *backend.Product
	for i := range catalog {
		if catalog[i].ID == productID {
			product = &catalog[i]
			break
		}
	}
	if product == nil {
		return nil, apperror.NewNotFound("product not found")
	}

	cart := rehydrate(persisted, catalog)
	if err := cart.add(*product); err != nil {
		return nil, err
	}
	s.persist(ctx, sid, cart)
	return cart, nil
}

func (s *service) SetQuantity(ctx context.Context, sid, productID string, qty int) (*Cart, error) {
	cart, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := cart.setQuantity(productID, qty); err != nil {
		return nil, err
	}
	s.persist(ctx, sid, cart)
	return cart, nil
}

func (s *service) Remove(ctx context.Context, sid string, index int) (*Cart, error) {
	cart, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	before := len(cart.Lines)
	cart.remove(index)
	if len(cart.Lines) == before {
		// Out-of-range removal changes nothing, skip the write.
		return cart, nil
	}
	if cart.IsEmpty() {
		// Removing the last line empties the cart for real, which the
		// empty-skip in Save would otherwise swallow.
		if err := s.repo.Clear(ctx, sid); err != nil {
			slog.Warn("cart clear failed", "error", err, "session", abbrev(sid))
		}
		return cart, nil
	}
	s.persist(ctx, sid, cart)
	return cart, nil
}

// Checkout submits the cart's lines as an order. Gating comes first: an
// anonymous session is told to log in, an empty cart is rejected. The
// clear happens only after the upstream accepts the order, so a failed
// submission leaves both memory and storage exactly as they were.
func (s *service) Checkout(ctx context.Context, sid string, user *backend.User, creds backend.Credentials) (*backend.Order, error) {
	if user == nil {
		return nil, apperror.NewAuthRequired("you must be logged in to check out")
	}

	cart, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperror.NewEmptyCart()
	}

	items := make([]backend.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, backend.OrderItem{
			Product:  l.ProductID,
			Quantity: l.Quantity,
			Price:    l.UnitPrice,
		})
	}

	order, err := s.api.CreateOrder(ctx, creds, items)
	if err != nil {
		return nil, err
	}

	// The upstream has accepted the order, so the stored cart must go:
	// if it survives, a later visit rehydrates the already-submitted
	// lines and a retry would place the same order twice. Retry the
	// clear once before giving up; a persistent failure is logged loud
	// because that double-submission window is now open.
	if err := s.repo.Clear(ctx, sid); err != nil {
		if err := s.repo.Clear(ctx, sid); err != nil {
			slog.Error("cart clear after checkout failed, stored cart can be resubmitted",
				"error", err, "order", order.ID, "session", abbrev(sid))
		}
	}
	slog.Info("order placed", "order", order.ID, "user", user.Username, "items", len(items))
	return order, nil
}

// abbrev shortens a session id for log lines.
func abbrev(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
