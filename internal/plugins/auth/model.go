// Package auth maintains the gateway's session store: one authoritative
// identity record per browser session, reconciled against the upstream
// store API and shared by every handler. It also provides the route guard
// middleware that protects authenticated and admin-only endpoints.
//
// The session token lives in a cookie; session state (identity, upstream
// credential jar) lives in Redis. A cached copy of the last known user --
// the hint cache -- is kept under separate keys purely to let the display
// layer avoid flicker; it is never consulted for guard decisions.
package auth

import (
	"time"

	"github.com/mmfoods/storefront/internal/backend"
)

// Session is the gateway's belief about the authenticated identity for one
// browser session. Handlers only ever see resolved sessions: the session
// middleware completes reconciliation before any guard decision, so
// Loading is false by the time a protected route looks at it.
type Session struct {
	// User is the verified identity, nil when unauthenticated.
	User *backend.User `json:"user"`

	// Loading is true only while the initial reconciliation against the
	// upstream is in flight. Once it resolves to false it never becomes
	// true again for this session.
	Loading bool `json:"loading"`
}

// IsAuthenticated reports whether the session has a verified user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.User != nil
}

// IsAdmin reports whether the session's user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.IsAdmin()
}

// record is the session state persisted in Redis under session:<sid>.
// User here is authoritative only after Initialized is true; before that
// it is a leftover hint from a previous process of this session.
type record struct {
	User        *backend.User       `json:"user,omitempty"`
	Credentials backend.Credentials `json:"credentials,omitempty"`
	Initialized bool                `json:"initialized"`
	CreatedAt   time.Time           `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest holds the credentials submitted to POST /api/login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Username string
	Password string
}
