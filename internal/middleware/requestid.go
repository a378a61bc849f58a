package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// requestIDHeader carries the request ID on responses and is forwarded to
// the upstream backend so a single user action can be traced end to end.
const requestIDHeader = "X-Request-ID"

// contextKeyRequestID stores the request ID in the Echo context.
const contextKeyRequestID = "request_id"

// ctxKeyRequestID stores the request ID in the Go context so non-HTTP
// layers (the backend client) can read it without importing Echo.
type ctxKeyRequestID struct{}

// RequestID returns middleware that assigns every request a UUID (or keeps
// a caller-supplied one) and echoes it back on the response. The ID is
// also placed in the request's Go context for downstream propagation.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := req.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			c.Set(contextKeyRequestID, id)
			c.Response().Header().Set(requestIDHeader, id)

			ctx := context.WithValue(req.Context(), ctxKeyRequestID{}, id)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID from the Echo context, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(contextKeyRequestID).(string)
	return id
}

// RequestIDFromContext retrieves the request ID from a Go context, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}
