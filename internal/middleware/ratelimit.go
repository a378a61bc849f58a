// ratelimit.go implements a per-IP rate limiter on top of x/time/rate
// token buckets. Designed for the auth endpoints (login, register) where
// brute-force and credential-stuffing attempts concentrate.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiterEntry tracks the token bucket for a single IP plus the last time
// it was used, so idle entries can be evicted.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window. Returns 429 when exceeded.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	var mu sync.Mutex
	entries := make(map[string]*limiterEntry)
	lastSweep := time.Now()

	// Refill rate that admits maxRequests per window, with the full burst
	// available up front.
	limit := rate.Every(window / time.Duration(maxRequests))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			// Evict idle entries opportunistically, at most once per window.
			if now.Sub(lastSweep) > window {
				for k, entry := range entries {
					if now.Sub(entry.lastSeen) > window*2 {
						delete(entries, k)
					}
				}
				lastSweep = now
			}
			entry, ok := entries[ip]
			if !ok {
				entry = &limiterEntry{limiter: rate.NewLimiter(limit, maxRequests)}
				entries[ip] = entry
			}
			entry.lastSeen = now
			allowed := entry.limiter.Allow()
			mu.Unlock()

			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error":   "rate_limited",
					"message": "Too many requests. Please try again later.",
				})
			}
			return next(c)
		}
	}
}
