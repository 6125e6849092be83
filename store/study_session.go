package store

import (
	"context"
	"time"
)

// StudySession is the object representing a completed review session.
// Sessions are written once, after they end.
type StudySession struct {
	ID               int32
	UID              string
	UserID           string
	CreatedTs        int64
	StartedTs        int64
	EndedTs          int64
	AnsweredCount    int32
	CorrectCount     int32
	TotalTimeSeconds int64
}

// FindStudySession is the find condition for study session.
type FindStudySession struct {
	ID     *int32
	UID    *string
	UserID *string

	// Time range filters on session start.
	StartedAfterTs  *int64
	StartedBeforeTs *int64

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteStudySession is the delete request for study session.
type DeleteStudySession struct {
	ID int32
}

// Accuracy returns the fraction of answered cards that were correct.
// An empty session has an accuracy of 0.
func (s *StudySession) Accuracy() float64 {
	if s.AnsweredCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.AnsweredCount)
}

// StartedTime parses the session start timestamp to time.Time.
func (s *StudySession) StartedTime() time.Time {
	return time.Unix(s.StartedTs, 0)
}

// EndedTime parses the session end timestamp to time.Time.
func (s *StudySession) EndedTime() time.Time {
	return time.Unix(s.EndedTs, 0)
}

// CreateStudySession creates a new study session record.
func (s *Store) CreateStudySession(ctx context.Context, create *StudySession) (*StudySession, error) {
	return s.driver.CreateStudySession(ctx, create)
}

// ListStudySessions lists study sessions with filter, most recent first.
func (s *Store) ListStudySessions(ctx context.Context, find *FindStudySession) ([]*StudySession, error) {
	return s.driver.ListStudySessions(ctx, find)
}

// GetStudySession gets a study session with filter, or nil when no session matches.
func (s *Store) GetStudySession(ctx context.Context, find *FindStudySession) (*StudySession, error) {
	list, err := s.driver.ListStudySessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteStudySession deletes a study session.
func (s *Store) DeleteStudySession(ctx context.Context, delete *DeleteStudySession) error {
	return s.driver.DeleteStudySession(ctx, delete)
}
