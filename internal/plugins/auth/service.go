package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
)

// sessionKeyPrefix is the Redis key prefix for session records.
const sessionKeyPrefix = "session:"

// Hint cache key prefixes. These cache the last known identity so the
// display layer can render a username before reconciliation completes.
// They are advisory only and are cleared whenever reconciliation fails.
const (
	hintUserKeyPrefix   = "hint:user:"
	hintUserIDKeyPrefix = "hint:user_id:"
)

// sessionTokenBytes is the number of random bytes in a session token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const sessionTokenBytes = 32

// IdentityAPI is the slice of the upstream store API the session service
// depends on. backend.Client satisfies it.
type IdentityAPI interface {
	CurrentUser(ctx context.Context, creds backend.Credentials) (*backend.User, error)
	Login(ctx context.Context, username, password string) (*backend.User, backend.Credentials, error)
	Logout(ctx context.Context, creds backend.Credentials) error
	Register(ctx context.Context, input backend.RegisterInput) error
	UpdateProfile(ctx context.Context, creds backend.Credentials, input backend.ProfileUpdate) (*backend.User, error)
}

// SessionService defines the session store contract. Handlers and the
// session middleware call these methods; they never touch Redis directly.
type SessionService interface {
	// NewSessionID mints a fresh session token for a browser that does
	// not have one yet.
	NewSessionID() (string, error)

	// Initialize reconciles the session's identity with the upstream
	// exactly once per session lifetime. It never returns an error: any
	// failure (network, rejected credentials, malformed response) leaves
	// the session unauthenticated with the hint caches cleared.
	Initialize(ctx context.Context, sid string)

	// Current returns the resolved session and the upstream credential
	// jar for the given session id.
	Current(ctx context.Context, sid string) (*Session, backend.Credentials, error)

	// Login authenticates against the upstream and stores the verified
	// identity plus captured credentials under the existing session id.
	Login(ctx context.Context, sid string, input LoginInput) (*backend.User, error)

	// Logout makes a best-effort upstream logout call, then
	// unconditionally clears the local session state and hint caches.
	Logout(ctx context.Context, sid string)

	// Register creates a new account upstream. It does not log the
	// user in.
	Register(ctx context.Context, input backend.RegisterInput) error

	// UpdateProfile updates the authenticated user's profile upstream
	// and refreshes the stored identity.
	UpdateProfile(ctx context.Context, sid string, input backend.ProfileUpdate) (*backend.User, error)
}

// sessionService implements SessionService over Redis and the upstream API.
type sessionService struct {
	api        IdentityAPI
	redis      *redis.Client
	sessionTTL time.Duration
}

// NewSessionService creates a session service with the given dependencies.
func NewSessionService(api IdentityAPI, rdb *redis.Client, sessionTTL time.Duration) SessionService {
	return &sessionService{
		api:        api,
		redis:      rdb,
		sessionTTL: sessionTTL,
	}
}

// NewSessionID generates a cryptographically random session token.
func (s *sessionService) NewSessionID() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("generating session token: %w", err))
	}
	return hex.EncodeToString(buf), nil
}

// Initialize performs the once-per-session identity reconciliation. The
// stored record's user field is treated as a stale hint until this has
// run: the upstream's answer replaces it wholesale. A confirmed identity
// refreshes the hint caches; any failure clears both the identity and
// the hints so guards and the display layer agree the user is signed out.
func (s *sessionService) Initialize(ctx context.Context, sid string) {
	rec, err := s.loadRecord(ctx, sid)
	if err != nil {
		slog.Warn("session load failed during initialize", "error", err)
		rec = &record{CreatedAt: time.Now()}
	}
	if rec.Initialized {
		return
	}

	if len(rec.Credentials) == 0 {
		rec.User = nil
		rec.Initialized = true
		s.clearHints(ctx, sid)
		if err := s.saveRecord(ctx, sid, rec); err != nil {
			slog.Warn("session save failed during initialize", "error", err)
		}
		return
	}

	user, err := s.api.CurrentUser(ctx, rec.Credentials)
	if err != nil {
		if apperror.IsAuth(err) {
			slog.Info("stored credentials rejected, clearing session identity", "session", abbrev(sid))
			rec.Credentials = nil
		} else {
			slog.Warn("identity reconciliation failed", "error", err, "session", abbrev(sid))
		}
		rec.User = nil
		rec.Initialized = true
		s.clearHints(ctx, sid)
		if err := s.saveRecord(ctx, sid, rec); err != nil {
			slog.Warn("session save failed during initialize", "error", err)
		}
		return
	}

	rec.User = user
	rec.Initialized = true
	s.writeHints(ctx, sid, user)
	if err := s.saveRecord(ctx, sid, rec); err != nil {
		slog.Warn("session save failed during initialize", "error", err)
	}
}

// Current returns the session state for sid. An unknown or unreadable
// session id resolves to an anonymous session rather than an error so a
// Redis hiccup never locks a browser out of public pages.
func (s *sessionService) Current(ctx context.Context, sid string) (*Session, backend.Credentials, error) {
	rec, err := s.loadRecord(ctx, sid)
	if err != nil {
		slog.Warn("session load failed", "error", err)
		return &Session{Loading: false}, nil, nil
	}
	return &Session{User: rec.User, Loading: !rec.Initialized}, rec.Credentials, nil
}

// Login authenticates against the upstream and, on success, stores the
// verified user and the captured credential jar under the same session
// id the browser already holds. Keeping the id stable means state keyed
// by session (the cart in particular) survives signing in.
func (s *sessionService) Login(ctx context.Context, sid string, input LoginInput) (*backend.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	user, creds, err := s.api.Login(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	rec, loadErr := s.loadRecord(ctx, sid)
	if loadErr != nil {
		rec = &record{CreatedAt: time.Now()}
	}
	rec.User = user
	rec.Credentials = creds
	rec.Initialized = true
	if err := s.saveRecord(ctx, sid, rec); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("storing session: %w", err))
	}
	s.writeHints(ctx, sid, user)

	slog.Info("user logged in", "user", user.Username, "session", abbrev(sid))
	return user, nil
}

// Logout tells the upstream to invalidate its own session, then clears
// the local record and hint caches regardless of whether that call
// succeeded. The local clear is the guarantee; the upstream call is
// courtesy.
func (s *sessionService) Logout(ctx context.Context, sid string) {
	rec, err := s.loadRecord(ctx, sid)
	if err == nil && len(rec.Credentials) > 0 {
		if err := s.api.Logout(ctx, rec.Credentials); err != nil {
			slog.Warn("upstream logout failed, clearing local session anyway", "error", err)
		}
	}

	fresh := &record{Initialized: true, CreatedAt: time.Now()}
	if err := s.saveRecord(ctx, sid, fresh); err != nil {
		// Fall back to deleting the record outright.
		if delErr := s.redis.Del(ctx, sessionKeyPrefix+sid).Err(); delErr != nil {
			slog.Error("failed to clear session record", "error", delErr)
		}
	}
	s.clearHints(ctx, sid)
	slog.Info("user logged out", "session", abbrev(sid))
}

// Register creates an account upstream. The caller stays signed out; the
// store API expects a separate login afterwards.
func (s *sessionService) Register(ctx context.Context, input backend.RegisterInput) error {
	if input.Username == "" || input.Password == "" || input.Email == "" {
		return apperror.NewValidation("username, email and password are required")
	}
	return s.api.Register(ctx, input)
}

// UpdateProfile pushes profile changes upstream and updates the stored
// identity so subsequent session reads reflect the change immediately.
func (s *sessionService) UpdateProfile(ctx context.Context, sid string, input backend.ProfileUpdate) (*backend.User, error) {
	rec, err := s.loadRecord(ctx, sid)
	if err != nil || rec.User == nil {
		return nil, apperror.NewAuthRequired("you must be logged in to update your profile")
	}

	user, err := s.api.UpdateProfile(ctx, rec.Credentials, input)
	if err != nil {
		return nil, err
	}

	rec.User = user
	if err := s.saveRecord(ctx, sid, rec); err != nil {
		slog.Warn("session save failed after profile update", "error", err)
	}
	s.writeHints(ctx, sid, user)
	return user, nil
}

// loadRecord fetches and decodes the session record for sid. A missing
// key yields a zero record, not an error.
func (s *sessionService) loadRecord(ctx context.Context, sid string) (*record, error) {
	raw, err := s.redis.Get(ctx, sessionKeyPrefix+sid).Bytes()
	if err == redis.Nil {
		return &record{CreatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// saveRecord persists the session record with the configured TTL.
func (s *sessionService) saveRecord(ctx context.Context, sid string, rec *record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKeyPrefix+sid, raw, s.sessionTTL).Err()
}

// writeHints refreshes the advisory identity hint caches for sid.
func (s *sessionService) writeHints(ctx context.Context, sid string, user *backend.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, hintUserKeyPrefix+sid, raw, s.sessionTTL).Err(); err != nil {
		slog.Warn("failed to write user hint", "error", err)
	}
	if err := s.redis.Set(ctx, hintUserIDKeyPrefix+sid, user.ID, s.sessionTTL).Err(); err != nil {
		slog.Warn("failed to write user id hint", "error", err)
	}
}

// clearHints removes the identity hint caches for sid.
func (s *sessionService) clearHints(ctx context.Context, sid string) {
	if err := s.redis.Del(ctx, hintUserKeyPrefix+sid, hintUserIDKeyPrefix+sid).Err(); err != nil {
		slog.Warn("failed to clear identity hints", "error", err)
	}
}

// abbrev shortens a session id for log lines.
func abbrev(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
