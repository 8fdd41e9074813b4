// Package session replaces the bare client-held identity of older builds
// with server-issued session objects: an opaque token maps to the user's
// identity until it expires or is revoked on logout.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// HeaderName is the request header carrying the session token.
const HeaderName = "X-Session-Token"

// DefaultTTL applies when no explicit policy is configured.
const DefaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("session not found")

// Session is the server-side identity attached to a token.
type Session struct {
	Token     string    `json:"token"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions keyed by token. Put receives the TTL so stores
// with native expiry (Redis) can delegate to it.
type Store interface {
	Put(ctx context.Context, sess *Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves and revokes sessions. The clock is injectable so
// expiry is testable without waiting.
type Manager struct {
	store Store
	clock clockwork.Clock
	ttl   time.Duration
}

func NewManager(store Store, clock clockwork.Clock, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, clock: clock, ttl: ttl}
}

// Issue creates a session with a fresh random token.
func (m *Manager) Issue(ctx context.Context, userID uint, username string) (*Session, error) {
	now := m.clock.Now()
	sess := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Put(ctx, sess, m.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve returns the live session for a token. Expired sessions are deleted
// and reported as not found, so stores without native TTL stay clean.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !m.clock.Now().Before(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrNotFound
	}
	return sess, nil
}

// Revoke removes a session (logout).
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
