package service

import (
	"testing"
	"time"
)

func TestCreateSession(t *testing.T) {
	m := NewSessionManager(time.Minute)

	session, err := m.CreateSession(false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if session.ID == "" {
		t.Error("session id should be generated")
	}
	if !m.ValidateAndTouch(session.ID) {
		t.Error("freshly created session should validate")
	}
}

func TestCreateSessionConflict(t *testing.T) {
	m := NewSessionManager(time.Minute)

	first, err := m.CreateSession(false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := m.CreateSession(false); err != ErrSessionConflict {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}

	// The stored session must be untouched by the failed create.
	if !m.ValidateAndTouch(first.ID) {
		t.Error("original session should still validate after conflict")
	}
}

func TestCreateSessionClearExisting(t *testing.T) {
	m := NewSessionManager(time.Minute)

	first, _ := m.CreateSession(false)
	second, err := m.CreateSession(true)
	if err != nil {
		t.Fatalf("create with clear_existing failed: %v", err)
	}

	if m.ValidateAndTouch(first.ID) {
		t.Error("replaced session should no longer validate")
	}
	if !m.ValidateAndTouch(second.ID) {
		t.Error("replacement session should validate")
	}
}

func TestValidateUnknownID(t *testing.T) {
	m := NewSessionManager(time.Minute)

	if m.ValidateAndTouch("nope") {
		t.Error("validation should fail with no session stored")
	}

	m.CreateSession(false)
	if m.ValidateAndTouch("wrong-id") {
		t.Error("validation should fail for a mismatched id")
	}
}

func TestValidateTouchSlidesExpiration(t *testing.T) {
	m := NewSessionManager(time.Minute)
	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	session, _ := m.CreateSession(false)

	// 50 seconds later the session is still alive; touching it pushes
	// the expiration another full minute out.
	now = now.Add(50 * time.Second)
	if !m.ValidateAndTouch(session.ID) {
		t.Fatal("session should still be valid")
	}

	// 50 more seconds: past the original expiry, inside the extended one.
	now = now.Add(50 * time.Second)
	if !m.ValidateAndTouch(session.ID) {
		t.Error("touch should have extended the expiration")
	}
}

func TestExpiredSessionIsEvicted(t *testing.T) {
	m := NewSessionManager(time.Minute)
	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	session, _ := m.CreateSession(false)

	now = now.Add(2 * time.Minute)
	if m.ValidateAndTouch(session.ID) {
		t.Fatal("expired session should not validate")
	}

	// Eviction is idempotent: subsequent calls behave as if no session
	// ever existed, and a new session can be created without conflict.
	if m.ValidateAndTouch(session.ID) {
		t.Error("second validation should also fail")
	}
	if _, err := m.CreateSession(false); err != nil {
		t.Errorf("create after expiry should not conflict: %v", err)
	}
}

func TestClear(t *testing.T) {
	m := NewSessionManager(time.Minute)
	session, _ := m.CreateSession(false)

	m.Clear()
	if m.ValidateAndTouch(session.ID) {
		t.Error("cleared session should not validate")
	}
	if m.HasActiveSession() {
		t.Error("no session should be active after clear")
	}
}
