package session

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPin is returned when a configured PIN does not match.
var ErrInvalidPin = errors.New("session: invalid pin")

// Manager mints, validates and revokes bearer sessions on top of a
// Store. When no PIN is configured, any PIN opens a session; that is an
// operator choice for unattended deployments, not an oversight.
type Manager struct {
	store Store
	pin   string
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, pin string, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		pin:   pin,
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Open checks the PIN and mints a fresh session. Tokens are random
// UUIDs and never reused across sessions.
func (m *Manager) Open(pin string) (*Session, error) {
	if m.pin != "" && subtle.ConstantTimeCompare([]byte(m.pin), []byte(pin)) != 1 {
		return nil, ErrInvalidPin
	}

	now := m.now()
	s := &Session{
		Token:     uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.store.Save(s)
	return s, nil
}

// Validate resolves a bearer token to its live session. Unknown and
// expired tokens both resolve to nil; expired entries are removed on
// the way out.
func (m *Manager) Validate(token string) *Session {
	if token == "" {
		return nil
	}
	s, ok := m.store.Get(token)
	if !ok {
		return nil
	}
	return s
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.store.Delete(token)
}

func (m *Manager) Close() error {
	return m.store.Close()
}
