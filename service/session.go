package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSessionConflict is returned when a live session already exists and
// the caller did not ask to replace it.
var ErrSessionConflict = errors.New("an active session already exists")

// Session is the single authorization token gating access to action and
// monitor operations.
type Session struct {
	ID        string    `json:"session_id"`
	ExpiresAt time.Time `json:"-"`
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionManager is a single-tenant access gate: at most one session is
// alive at a time. Validation slides the expiration window forward;
// an expired session is lazily evicted on its first failed validation.
type SessionManager struct {
	mu      sync.RWMutex
	active  *Session
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// CreateSession mints a new session. If a non-expired session exists and
// clearExisting is false, it fails with ErrSessionConflict and leaves the
// stored session untouched.
func (m *SessionManager) CreateSession(clearExisting bool) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	if m.active != nil && !m.active.expired(now) && !clearExisting {
		return Session{}, ErrSessionConflict
	}

	session := Session{
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	m.active = &session
	return session, nil
}

// ValidateAndTouch checks the id against the stored session. A match on a
// live session extends its expiration by the configured duration and
// returns true. An expired stored session is evicted as a side effect.
func (m *SessionManager) ValidateAndTouch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.ID != id {
		return false
	}
	if m.active.expired(m.nowFunc()) {
		m.active = nil
		return false
	}
	m.active.ExpiresAt = m.nowFunc().Add(m.ttl)
	return true
}

// Clear unconditionally evicts the stored session.
func (m *SessionManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = nil
}

// HasActiveSession reports whether a non-expired session is stored.
func (m *SessionManager) HasActiveSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != nil && !m.active.expired(m.nowFunc())
}
