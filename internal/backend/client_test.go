package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/config"
)

// newTestClient points a Client at a httptest server.
func newTestClient(srv *httptest.Server) *Client {
	return New(config.BackendConfig{
		URL:     srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestLogin_CapturesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding login body: %v", err)
		}
		if body["username"] != "alice" || body["password"] != "secret" {
			t.Errorf("unexpected credentials: %v", body)
		}

		http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "tok-123"})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user":{"_id":"u1","username":"alice","role":"user"}}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	user, creds, err := client.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if len(creds) != 1 || creds[0].Name != "accessToken" || creds[0].Value != "tok-123" {
		t.Errorf("expected captured accessToken cookie, got %+v", creds)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid username or password"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, _, err := client.Login(context.Background(), "alice", "wrong")
	if !apperror.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if apperror.SafeMessage(err) != "invalid username or password" {
		t.Errorf("expected upstream message to be surfaced, got %q", apperror.SafeMessage(err))
	}
}

func TestCurrentUser_AttachesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("accessToken")
		if err != nil || ck.Value != "tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"data":{"user":{"_id":"u1","username":"alice","role":"admin"}}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	creds := Credentials{{Name: "accessToken", Value: "tok-123"}}

	user, err := client.CurrentUser(context.Background(), creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsAdmin() {
		t.Errorf("expected admin user, got role %q", user.Role)
	}

	// Without the jar the same call must come back as an auth error.
	_, err = client.CurrentUser(context.Background(), nil)
	if !apperror.IsAuth(err) {
		t.Fatalf("expected auth error without credentials, got %v", err)
	}
}

func TestListProducts_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"_id":"p1","name":"Samosa","price":10,"quantity":5}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" || products[0].Quantity != 5 {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestListProducts_BarePayload(t *testing.T) {
	// Some upstream endpoints skip the data envelope.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"p1","name":"Samosa","price":10,"quantity":5}]`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Samosa" {
		t.Errorf("unexpected products: %+v", products)
	}
}

func TestCreateOrder_SendsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if _, err := r.Cookie("accessToken"); err != nil {
			t.Error("expected credential cookie on order submission")
		}

		var body struct {
			OrderItems []OrderItem `json:"orderItems"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding order body: %v", err)
		}
		if len(body.OrderItems) != 1 || body.OrderItems[0].Product != "p1" ||
			body.OrderItems[0].Quantity != 2 || body.OrderItems[0].Price != 10 {
			t.Errorf("unexpected order items: %+v", body.OrderItems)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"_id":"o1","orderItems":[{"product":"p1","quantity":2,"price":10}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	creds := Credentials{{Name: "accessToken", Value: "tok-123"}}
	order, err := client.CreateOrder(context.Background(), creds, []OrderItem{
		{Product: "p1", Quantity: 2, Price: 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "o1" {
		t.Errorf("expected created order o1, got %+v", order)
	}
}

func TestUnreachableBackend_IsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Kill the server so the dial fails.

	client := newTestClient(srv)
	_, err := client.ListProducts(context.Background())
	if !apperror.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestUpstream5xx_IsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.ListProducts(context.Background())
	if !apperror.IsNetwork(err) {
		t.Fatalf("expected network error for 5xx, got %v", err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"product not found"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.GetProduct(context.Background(), "missing")
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
