// Package analytics provides the study-session analytics sink consumed by the
// session tracker: a store-backed persister for production use and a
// mutex-guarded mock for tests.
package analytics

import (
	"context"
	"time"
)

// Sink receives study-session lifecycle events. Any call may fail; callers
// treat sink errors as non-fatal and never let them block the study flow.
type Sink interface {
	// StartSession opens a session for the user and returns its id.
	StartSession(ctx context.Context, userID string, sessionContext SessionContext) (string, error)

	// RecordCardAnswer appends one answered card to an open session.
	RecordCardAnswer(ctx context.Context, sessionID string, answer CardAnswer) error

	// EndSession finalizes an open session and returns its summary.
	EndSession(ctx context.Context, sessionID string, userID string) (*SessionSummary, error)
}

// SessionContext describes where a session was started.
type SessionContext struct {
	Deck   string `json:"deck,omitempty"`
	Source string `json:"source,omitempty"`
}

// CardAnswer is the per-card payload recorded during a session.
type CardAnswer struct {
	CardUID          string `json:"card_uid"`
	TimeSpentSeconds int64  `json:"time_spent_seconds"`
	WasCorrect       bool   `json:"was_correct"`
	// Confidence is the learner's quality rating for the answer, 1 to 5.
	Confidence int `json:"confidence"`
}

// SessionSummary is the aggregate produced when a session ends.
type SessionSummary struct {
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	AnsweredCount    int       `json:"answered_count"`
	CorrectCount     int       `json:"correct_count"`
	Accuracy         float64   `json:"accuracy"`
	TotalTimeSeconds int64     `json:"total_time_seconds"`
}

// Summarize computes a session summary from its recorded answers.
// An empty session has an accuracy of 0, not NaN.
func Summarize(sessionID, userID string, startedAt, endedAt time.Time, answers []CardAnswer) *SessionSummary {
	summary := &SessionSummary{
		SessionID:     sessionID,
		UserID:        userID,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
		AnsweredCount: len(answers),
	}
	for _, answer := range answers {
		if answer.WasCorrect {
			summary.CorrectCount++
		}
		summary.TotalTimeSeconds += answer.TimeSpentSeconds
	}
	if summary.AnsweredCount > 0 {
		summary.Accuracy = float64(summary.CorrectCount) / float64(summary.AnsweredCount)
	}
	return summary
}
