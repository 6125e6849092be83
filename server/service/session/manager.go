package session

import (
	"context"
	"sync"

	"github.com/amirb101/proofdeck/plugin/analytics"
	"github.com/amirb101/proofdeck/server/internal/errors"
)

// Manager hands out trackers one at a time: a new session can begin only
// after the previous one has ended. Trackers themselves are single-use.
type Manager struct {
	sink analytics.Sink

	mu      sync.Mutex
	current *Tracker
}

// NewManager creates a manager bound to an analytics sink.
func NewManager(sink analytics.Sink) *Manager {
	return &Manager{sink: sink}
}

// Begin creates and starts a fresh tracker for a new session.
func (m *Manager) Begin(ctx context.Context, userID string, sessionContext analytics.SessionContext) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.State() == Active {
		return nil, errors.SessionAlreadyActive(m.current.Session().ID)
	}

	tracker := NewTracker(m.sink)
	session, err := tracker.Start(ctx, userID, sessionContext)
	if err != nil {
		return nil, err
	}
	m.current = tracker
	return session, nil
}

// Current returns the tracker for the active or most recently ended session,
// or nil when no session has ever begun.
func (m *Manager) Current() *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
