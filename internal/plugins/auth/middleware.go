package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
)

// Context keys for storing session data in Echo context. Other plugins
// use these keys (via the exported getter functions below) to access
// the resolved session.
const (
	contextKeySession     = "auth_session"
	contextKeySessionID   = "auth_session_id"
	contextKeyCredentials = "auth_credentials"
)

// EnsureSession returns middleware that guarantees every request carries
// a session cookie, minting one for first-time visitors. It only issues
// the cookie; resolution happens in SessionContext.
func EnsureSession(service SessionService, cookieName string, ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sid := getSessionToken(c, cookieName); sid != "" {
				c.Set(contextKeySessionID, sid)
				return next(c)
			}

			sid, err := service.NewSessionID()
			if err != nil {
				return err
			}
			c.SetCookie(&http.Cookie{
				Name:     cookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKeySessionID, sid)
			return next(c)
		}
	}
}

// SessionContext returns middleware that resolves the session before any
// handler or guard runs: it completes the once-per-session identity
// reconciliation, then stores the resolved session and credential jar in
// the request context. Guards therefore never act on an unresolved
// session.
func SessionContext(service SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := GetSessionID(c)
			if sid == "" {
				c.Set(contextKeySession, &Session{})
				return next(c)
			}

			ctx := c.Request().Context()
			service.Initialize(ctx, sid)

			session, creds, err := service.Current(ctx, sid)
			if err != nil {
				session = &Session{}
				creds = nil
			}
			c.Set(contextKeySession, session)
			c.Set(contextKeyCredentials, creds)
			return next(c)
		}
	}
}

// RequireAuth returns middleware that rejects requests without a verified
// user. It relies on SessionContext having already resolved the session.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !GetSession(c).IsAuthenticated() {
				return apperror.NewAuthRequired("you must be logged in")
			}
			return next(c)
		}
	}
}

// RequireAdmin returns middleware that rejects requests from anyone but
// an admin. Unauthenticated callers get 401, authenticated non-admins 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if !session.IsAuthenticated() {
				return apperror.NewAuthRequired("you must be logged in")
			}
			if !session.IsAdmin() {
				return apperror.NewForbidden("admin access required")
			}
			return next(c)
		}
	}
}

// GetSession returns the resolved session from the Echo context. It
// always returns a non-nil session.
func GetSession(c echo.Context) *Session {
	if s, ok := c.Get(contextKeySession).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}

// GetSessionID returns the session id from the Echo context, or "" when
// the request carries no session.
func GetSessionID(c echo.Context) string {
	if sid, ok := c.Get(contextKeySessionID).(string); ok {
		return sid
	}
	return ""
}

// GetCredentials returns the upstream credential jar for the current
// session, nil when unauthenticated.
func GetCredentials(c echo.Context) backend.Credentials {
	if creds, ok := c.Get(contextKeyCredentials).(backend.Credentials); ok {
		return creds
	}
	return nil
}

// getSessionToken extracts the session token from the request cookie.
func getSessionToken(c echo.Context, cookieName string) string {
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
