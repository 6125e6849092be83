package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockSink is a mock implementation of Sink for testing.
type MockSink struct {
	mu sync.Mutex

	// Error injection for failure-path tests. A non-nil value makes the
	// corresponding call fail.
	StartErr  error
	RecordErr error
	EndErr    error

	nextID    int
	open      map[string]*mockSession
	summaries []*SessionSummary
}

type mockSession struct {
	userID         string
	sessionContext SessionContext
	startedAt      time.Time
	answers        []CardAnswer
}

// NewMockSink creates a new MockSink.
func NewMockSink() *MockSink {
	return &MockSink{
		open: make(map[string]*mockSession),
	}
}

// StartSession opens a session and returns a deterministic id.
func (m *MockSink) StartSession(_ context.Context, userID string, sessionContext SessionContext) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartErr != nil {
		return "", m.StartErr
	}

	m.nextID++
	id := fmt.Sprintf("mock-session-%d", m.nextID)
	m.open[id] = &mockSession{
		userID:         userID,
		sessionContext: sessionContext,
		startedAt:      time.Now(),
	}
	return id, nil
}

// RecordCardAnswer appends an answer to an open session.
func (m *MockSink) RecordCardAnswer(_ context.Context, sessionID string, answer CardAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}

	session, ok := m.open[sessionID]
	if !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	session.answers = append(session.answers, answer)
	return nil
}

// EndSession finalizes an open session and returns its summary.
func (m *MockSink) EndSession(_ context.Context, sessionID string, userID string) (*SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndErr != nil {
		return nil, m.EndErr
	}

	session, ok := m.open[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	delete(m.open, sessionID)

	summary := Summarize(sessionID, userID, session.startedAt, time.Now(), session.answers)
	m.summaries = append(m.summaries, summary)
	return summary, nil
}

// Summaries returns the summaries of every ended session (for testing).
func (m *MockSink) Summaries() []*SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*SessionSummary, len(m.summaries))
	copy(out, m.summaries)
	return out
}

// Answers returns the answers recorded so far for an open session (for testing).
func (m *MockSink) Answers(sessionID string) []CardAnswer {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.open[sessionID]
	if !ok {
		return nil
	}
	out := make([]CardAnswer, len(session.answers))
	copy(out, session.answers)
	return out
}

// OpenCount returns the number of sessions started but not yet ended.
func (m *MockSink) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// Ensure MockSink implements Sink
var _ Sink = (*MockSink)(nil)
