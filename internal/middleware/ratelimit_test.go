package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func doLimited(t *testing.T, mw echo.MiddlewareFunc, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	mw := RateLimit(2, time.Minute)

	for i := 0; i < 2; i++ {
		rec := doLimited(t, mw, "10.0.0.1:1234")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := doLimited(t, mw, "10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst exhausted, got %d", rec.Code)
	}
}

func TestRateLimit_TracksClientsIndependently(t *testing.T) {
	mw := RateLimit(1, time.Minute)

	if rec := doLimited(t, mw, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", rec.Code)
	}
	if rec := doLimited(t, mw, "10.0.0.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("first client: expected 429 on second request, got %d", rec.Code)
	}
	if rec := doLimited(t, mw, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", rec.Code)
	}
}
