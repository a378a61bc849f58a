package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
)

// --- Mock upstream API ---

// mockStoreAPI implements StoreAPI for testing.
type mockStoreAPI struct {
	listProductsFn func(ctx context.Context) ([]backend.Product, error)
	createOrderFn  func(ctx context.Context, creds backend.Credentials, items []backend.OrderItem) (*backend.Order, error)
}

func (m *mockStoreAPI) ListProducts(ctx context.Context) ([]backend.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx)
	}
	return testCatalog(), nil
}

func (m *mockStoreAPI) CreateOrder(ctx context.Context, creds backend.Credentials, items []backend.OrderItem) (*backend.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, creds, items)
	}
	return &backend.Order{ID: "o1", OrderItems: items}, nil
}

// mockRepository implements Repository for testing failure paths the
// Redis-backed one cannot simulate.
type mockRepository struct {
	loadFn  func(ctx context.Context, sid string) ([]persistedLine, error)
	saveFn  func(ctx context.Context, sid string, lines []persistedLine) error
	clearFn func(ctx context.Context, sid string) error
}

func (m *mockRepository) Load(ctx context.Context, sid string) ([]persistedLine, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, sid)
	}
	return nil, nil
}

func (m *mockRepository) Save(ctx context.Context, sid string, lines []persistedLine) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, sid, lines)
	}
	return nil
}

func (m *mockRepository) Clear(ctx context.Context, sid string) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, sid)
	}
	return nil
}

// --- Test helpers ---

func testCatalog() []backend.Product {
	return []backend.Product{
		{ID: "p1", Name: "Chili Oil", Price: 8.50, Quantity: 5},
		{ID: "p2", Name: "Rice Noodles", Price: 3.25, Quantity: 2},
		{ID: "p3", Name: "Soy Sauce", Price: 4.00, Quantity: 10},
	}
}

func newTestService(t *testing.T, api StoreAPI) (Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewService(api, NewRepository(rdb, time.Hour)), rdb
}

func testUser() *backend.User {
	return &backend.User{ID: "u1", Username: "alice", Role: backend.RoleUser}
}

// storedPairs reads the raw persisted projection for sid.
func storedPairs(t *testing.T, rdb *redis.Client, sid string) []persistedLine {
	t.Helper()
	raw, err := rdb.Get(context.Background(), cartKeyPrefix+sid).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		t.Fatalf("reading stored cart: %v", err)
	}
	var pairs []persistedLine
	if err := json.Unmarshal(raw, &pairs); err != nil {
		t.Fatalf("decoding stored cart: %v", err)
	}
	return pairs
}

func seedPairs(t *testing.T, rdb *redis.Client, sid string, pairs []persistedLine) {
	t.Helper()
	raw, err := json.Marshal(pairs)
	if err != nil {
		t.Fatalf("encoding seed cart: %v", err)
	}
	if err := rdb.Set(context.Background(), cartKeyPrefix+sid, raw, time.Hour).Err(); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}
}

// --- Tests ---

func TestAdd_MergesIntoExistingLine(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", "p1"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.Add(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Lines[0].Quantity)
	}
	if got, want := cart.Total(), 17.0; got != want {
		t.Errorf("expected total %.2f, got %.2f", want, got)
	}
}

func TestAdd_NewProductSnapshotsPrice(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})

	cart, err := svc.Add(context.Background(), "s1", "p2")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	line := cart.Lines[0]
	if line.Quantity != 1 || line.UnitPrice != 3.25 || line.MaxQuantity != 2 {
		t.Errorf("unexpected line %+v", line)
	}
}

func TestAdd_AtStockCeiling_CapacityWithoutMutation(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	// p2 has stock 2: two adds fill the line.
	svc.Add(ctx, "s1", "p2")
	svc.Add(ctx, "s1", "p2")

	_, err := svc.Add(ctx, "s1", "p2")
	if !apperror.IsCapacity(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	// The stored projection is unchanged.
	pairs := storedPairs(t, rdb, "s1")
	if len(pairs) != 1 || pairs[0].Qty != 2 {
		t.Errorf("expected stored qty 2, got %+v", pairs)
	}
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})

	_, err := svc.Add(context.Background(), "s1", "nope")
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestSetQuantity_BoundsAndNotFound(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")

	if _, err := svc.SetQuantity(ctx, "s1", "p1", 0); !apperror.IsCapacity(err) {
		t.Errorf("expected capacity error for qty 0, got %v", err)
	}
	if _, err := svc.SetQuantity(ctx, "s1", "p1", 6); !apperror.IsCapacity(err) {
		t.Errorf("expected capacity error for qty above stock, got %v", err)
	}
	if _, err := svc.SetQuantity(ctx, "s1", "p9", 1); !apperror.IsNotFound(err) {
		t.Errorf("expected not found for absent line, got %v", err)
	}

	cart, err := svc.SetQuantity(ctx, "s1", "p1", 5)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if cart.Lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Lines[0].Quantity)
	}
}

func TestSetQuantity_RejectedBoundLeavesCartUnchanged(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")
	svc.SetQuantity(ctx, "s1", "p1", 3)

	svc.SetQuantity(ctx, "s1", "p1", 99)

	pairs := storedPairs(t, rdb, "s1")
	if len(pairs) != 1 || pairs[0].Qty != 3 {
		t.Errorf("expected stored qty 3 after rejected set, got %+v", pairs)
	}
}

func TestRemove_OutOfRangeIsNoOp(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")

	for _, idx := range []int{-1, 1, 42} {
		cart, err := svc.Remove(ctx, "s1", idx)
		if err != nil {
			t.Fatalf("Remove(%d): %v", idx, err)
		}
		if len(cart.Lines) != 1 {
			t.Errorf("Remove(%d): expected line to survive, got %d lines", idx, len(cart.Lines))
		}
	}
	if pairs := storedPairs(t, rdb, "s1"); len(pairs) != 1 {
		t.Errorf("expected stored cart untouched, got %+v", pairs)
	}
}

func TestRemove_LastLineClearsStorage(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")
	cart, err := svc.Remove(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %d lines", len(cart.Lines))
	}
	if pairs := storedPairs(t, rdb, "s1"); pairs != nil {
		t.Errorf("expected stored cart to be cleared, got %+v", pairs)
	}
}

func TestPersist_OnlyIDAndQuantityAreStored(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")
	svc.Add(ctx, "s1", "p3")

	raw, err := rdb.Get(ctx, cartKeyPrefix+"s1").Bytes()
	if err != nil {
		t.Fatalf("reading stored cart: %v", err)
	}
	var generic []map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("decoding stored cart: %v", err)
	}
	for _, entry := range generic {
		if len(entry) != 2 {
			t.Errorf("expected only _id and qty per entry, got %v", entry)
		}
		if _, ok := entry["_id"]; !ok {
			t.Errorf("missing _id in %v", entry)
		}
		if _, ok := entry["qty"]; !ok {
			t.Errorf("missing qty in %v", entry)
		}
	}
}

func TestRehydrate_DropsMissingAndClampsToStock(t *testing.T) {
	svc, rdb := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	// Persisted from a previous visit: one product since deleted, one
	// whose stock dropped below the stored quantity.
	seedPairs(t, rdb, "s1", []persistedLine{
		{ID: "gone", Qty: 3},
		{ID: "p2", Qty: 9},
		{ID: "p1", Qty: 2},
	})

	cart, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 surviving lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].ProductID != "p2" || cart.Lines[0].Quantity != 2 {
		t.Errorf("expected p2 clamped to stock 2, got %+v", cart.Lines[0])
	}
	if cart.Lines[1].ProductID != "p1" || cart.Lines[1].Quantity != 2 {
		t.Errorf("expected p1 qty 2, got %+v", cart.Lines[1])
	}
}

func TestRehydrate_DropsZeroStockProducts(t *testing.T) {
	api := &mockStoreAPI{
		listProductsFn: func(ctx context.Context) ([]backend.Product, error) {
			return []backend.Product{{ID: "p1", Name: "Chili Oil", Price: 8.50, Quantity: 0}}, nil
		},
	}
	svc, rdb := newTestService(t, api)

	seedPairs(t, rdb, "s1", []persistedLine{{ID: "p1", Qty: 2}})

	cart, err := svc.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected sold-out product to be dropped, got %+v", cart.Lines)
	}
}

func TestRehydrate_EmptyResultDoesNotClobberStorage(t *testing.T) {
	// Catalog temporarily unavailable products: rehydration yields an
	// empty cart, but the stored pairs must survive for when stock
	// returns.
	api := &mockStoreAPI{
		listProductsFn: func(ctx context.Context) ([]backend.Product, error) {
			return nil, nil
		},
	}
	svc, rdb := newTestService(t, api)
	ctx := context.Background()

	seedPairs(t, rdb, "s1", []persistedLine{{ID: "p1", Qty: 2}})

	cart, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty rehydrated cart, got %+v", cart.Lines)
	}

	pairs := storedPairs(t, rdb, "s1")
	if len(pairs) != 1 || pairs[0].ID != "p1" || pairs[0].Qty != 2 {
		t.Errorf("expected stored pairs to survive, got %+v", pairs)
	}
}

func TestCheckout_RequiresAuthenticatedUser(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")

	_, err := svc.Checkout(ctx, "s1", nil, nil)
	if !apperror.IsAuthRequired(err) {
		t.Errorf("expected auth required error, got %v", err)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _ := newTestService(t, &mockStoreAPI{})

	_, err := svc.Checkout(context.Background(), "s1", testUser(), nil)
	if !apperror.IsEmptyCart(err) {
		t.Errorf("expected empty cart error, got %v", err)
	}
}

func TestCheckout_SubmitsSnapshotAndClears(t *testing.T) {
	var submitted []backend.OrderItem
	api := &mockStoreAPI{
		createOrderFn: func(ctx context.Context, creds backend.Credentials, items []backend.OrderItem) (*backend.Order, error) {
			submitted = items
			return &backend.Order{ID: "o1", OrderItems: items}, nil
		},
	}
	svc, rdb := newTestService(t, api)
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")
	svc.Add(ctx, "s1", "p1")
	svc.Add(ctx, "s1", "p3")

	order, err := svc.Checkout(ctx, "s1", testUser(), backend.Credentials{{Name: "jwt", Value: "v"}})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.ID != "o1" {
		t.Errorf("expected order o1, got %s", order.ID)
	}

	if len(submitted) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(submitted))
	}
	if submitted[0].Product != "p1" || submitted[0].Quantity != 2 || submitted[0].Price != 8.50 {
		t.Errorf("unexpected first item %+v", submitted[0])
	}
	if submitted[1].Product != "p3" || submitted[1].Quantity != 1 || submitted[1].Price != 4.00 {
		t.Errorf("unexpected second item %+v", submitted[1])
	}

	if pairs := storedPairs(t, rdb, "s1"); pairs != nil {
		t.Errorf("expected cart to be cleared after checkout, got %+v", pairs)
	}
	cart, _ := svc.Get(ctx, "s1")
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart after checkout, got %+v", cart.Lines)
	}
}

func TestCheckout_FailureLeavesCartIntact(t *testing.T) {
	api := &mockStoreAPI{
		createOrderFn: func(ctx context.Context, creds backend.Credentials, items []backend.OrderItem) (*backend.Order, error) {
			return nil, apperror.NewNetwork(errors.New("backend unreachable"))
		},
	}
	svc, rdb := newTestService(t, api)
	ctx := context.Background()

	svc.Add(ctx, "s1", "p1")
	svc.Add(ctx, "s1", "p3")

	_, err := svc.Checkout(ctx, "s1", testUser(), nil)
	if !apperror.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}

	pairs := storedPairs(t, rdb, "s1")
	if len(pairs) != 2 {
		t.Fatalf("expected cart to survive failed checkout, got %+v", pairs)
	}
	cart, _ := svc.Get(ctx, "s1")
	if len(cart.Lines) != 2 || cart.Total() != 12.50 {
		t.Errorf("expected intact cart, got %+v total %.2f", cart.Lines, cart.Total())
	}
}

func TestCheckout_ClearFailureStillReturnsOrderAndRetries(t *testing.T) {
	// The upstream accepted the order: a failing storage clear must not
	// turn that success into an error, and the clear is retried once to
	// shrink the double-submission window.
	clearCalls := 0
	repo := &mockRepository{
		loadFn: func(ctx context.Context, sid string) ([]persistedLine, error) {
			return []persistedLine{{ID: "p1", Qty: 1}}, nil
		},
		clearFn: func(ctx context.Context, sid string) error {
			clearCalls++
			return errors.New("redis unavailable")
		},
	}
	svc := NewService(&mockStoreAPI{}, repo)

	order, err := svc.Checkout(context.Background(), "s1", testUser(), nil)
	if err != nil {
		t.Fatalf("expected checkout to succeed despite clear failure, got %v", err)
	}
	if order == nil || order.ID != "o1" {
		t.Errorf("expected accepted order, got %+v", order)
	}
	if clearCalls != 2 {
		t.Errorf("expected clear to be retried once (2 calls), got %d", clearCalls)
	}
}

func TestTotal_DerivedFromLines(t *testing.T) {
	c := &Cart{Lines: []Line{
		{ProductID: "p1", UnitPrice: 8.50, Quantity: 2},
		{ProductID: "p3", UnitPrice: 4.00, Quantity: 3},
	}}
	if got, want := c.Total(), 29.0; got != want {
		t.Errorf("expected total %.2f, got %.2f", want, got)
	}

	c.Lines[0].Quantity = 1
	if got, want := c.Total(), 20.5; got != want {
		t.Errorf("expected recomputed total %.2f, got %.2f", want, got)
	}
}
