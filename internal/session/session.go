package session

import "time"

// Session is a bearer credential minted by a successful PIN exchange.
// Sessions are immutable once created; they are removed by explicit
// revocation or expiry, never mutated.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given
// instant. Callers must pass a single clock reading per validation.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved. Get performs
// lazy expiry: an expired entry is deleted and reported as absent.
type Store interface {
	Save(s *Session)
	Get(token string) (*Session, bool)
	Delete(token string)
	PurgeExpired()
	Close() error
}
