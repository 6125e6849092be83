// Package session implements the study-session lifecycle: a tracker moves
// NotStarted → Active → Ended and hands the final summary to an analytics
// sink. Ended is terminal; a new session needs a new tracker.
//
// Sink failures never block the study flow: every sink call is best-effort,
// logged and swallowed, and the Ended transition commits locally before the
// summary publish so a slow or failed sink can never reopen a session.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/amirb101/proofdeck/plugin/analytics"
	"github.com/amirb101/proofdeck/server/internal/errors"
	"github.com/amirb101/proofdeck/server/internal/observability"
)

// State is the lifecycle state of a tracker.
type State string

const (
	// NotStarted is the initial state before Start.
	NotStarted State = "NOT_STARTED"
	// Active is the state while the session is collecting answers.
	Active State = "ACTIVE"
	// Ended is the terminal state.
	Ended State = "ENDED"
)

// Session is the record owned by a tracker for one study session.
type Session struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   *time.Time             `json:"ended_at,omitempty"`
	Answers   []analytics.CardAnswer `json:"answers"`
}

// Tracker drives one study session through its lifecycle.
type Tracker struct {
	sink  analytics.Sink
	nowFn func() time.Time

	mu      sync.Mutex
	state   State
	session *Session
}

// NewTracker creates a tracker bound to an analytics sink.
func NewTracker(sink analytics.Sink) *Tracker {
	return &Tracker{
		sink:  sink,
		nowFn: time.Now,
		state: NotStarted,
	}
}

// State returns the tracker's current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Session returns a snapshot of the tracker's session, or nil before start.
func (t *Tracker) Session() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil
	}
	snapshot := *t.session
	snapshot.Answers = append([]analytics.CardAnswer(nil), t.session.Answers...)
	return &snapshot
}

// Start opens the session and transitions the tracker to Active. A tracker
// that is already active or ended rejects the call.
func (t *Tracker) Start(ctx context.Context, userID string, sessionContext analytics.SessionContext) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case Active:
		return nil, errors.SessionAlreadyActive(t.session.ID)
	case Ended:
		return nil, errors.InvalidArgument("session tracker has already ended")
	}

	session := &Session{
		ID:        shortuuid.New(),
		UserID:    userID,
		StartedAt: t.nowFn(),
	}

	// The sink may assign its own session id. A sink failure keeps the
	// locally generated id and never blocks the session from starting.
	if sinkID, err := t.sink.StartSession(ctx, userID, sessionContext); err != nil {
		slog.Warn("analytics sink rejected session start",
			observability.LogFieldSessionID, session.ID,
			observability.LogFieldUserID, userID,
			observability.LogFieldErrorCode, string(errors.ErrCodeAnalyticsUnavailable),
			"error", err,
		)
	} else if sinkID != "" {
		session.ID = sinkID
	}

	t.session = session
	t.state = Active
	return session, nil
}

// RecordAnswer appends an answered card to the active session. Outside an
// active session this is a logged no-op, not an error: callers may race with
// UI teardown, and a late answer must not reopen anything.
func (t *Tracker) RecordAnswer(ctx context.Context, answer analytics.CardAnswer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Active {
		slog.Info("dropping answer recorded outside an active session",
			observability.LogFieldCardUID, answer.CardUID,
			"state", string(t.state),
		)
		return
	}

	t.session.Answers = append(t.session.Answers, answer)

	if err := t.sink.RecordCardAnswer(ctx, t.session.ID, answer); err != nil {
		slog.Warn("analytics sink rejected card answer",
			observability.LogFieldSessionID, t.session.ID,
			observability.LogFieldCardUID, answer.CardUID,
			observability.LogFieldErrorCode, string(errors.ErrCodeAnalyticsUnavailable),
			"error", err,
		)
	}
}

// End finalizes the session and returns its summary. The Ended transition
// commits before the sink publish. A second call is a no-op and does not
// re-send the summary; End before Start is likewise a no-op. Both return nil.
func (t *Tracker) End(ctx context.Context) *analytics.SessionSummary {
	t.mu.Lock()

	if t.state != Active {
		if t.state == Ended {
			slog.Debug("end called on an ended session, ignoring")
		} else {
			slog.Info("end called before any session started, ignoring")
		}
		t.mu.Unlock()
		return nil
	}

	endedAt := t.nowFn()
	t.session.EndedAt = &endedAt
	t.state = Ended

	session := t.session
	summary := analytics.Summarize(session.ID, session.UserID, session.StartedAt, endedAt, session.Answers)
	t.mu.Unlock()

	// Publish after the transition has committed. Racing RecordAnswer calls
	// already observe Ended and drop their answers.
	if _, err := t.sink.EndSession(ctx, session.ID, session.UserID); err != nil {
		slog.Warn("analytics sink rejected session end, summary lost",
			observability.LogFieldSessionID, session.ID,
			observability.LogFieldUserID, session.UserID,
			observability.LogFieldErrorCode, string(errors.ErrCodeAnalyticsUnavailable),
			"error", err,
		)
	}

	return summary
}
