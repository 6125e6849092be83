package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/plugin/analytics"
	"github.com/amirb101/proofdeck/server/internal/errors"
	"github.com/amirb101/proofdeck/server/service/session"
	"github.com/amirb101/proofdeck/store"
)

// BeginSessionRequest is the body of POST /api/v1/sessions.
type BeginSessionRequest struct {
	UserID string `json:"user_id"`
	Deck   string `json:"deck"`
	Source string `json:"source"`
}

// CurrentSessionResponse is the body of GET /api/v1/sessions/current.
type CurrentSessionResponse struct {
	State   session.State    `json:"state"`
	Session *session.Session `json:"session"`
}

// RecordAnswerRequest is the body of POST /api/v1/sessions/current/answers,
// for answers graded outside the card review endpoint.
type RecordAnswerRequest struct {
	CardUID          string `json:"card_uid"`
	TimeSpentSeconds int64  `json:"time_spent_seconds"`
	WasCorrect       bool   `json:"was_correct"`
	Confidence       int    `json:"confidence"`
}

// RecordAnswerResponse reports the tracker state the answer landed in.
// Answers arriving after the session ended are dropped, not errors.
type RecordAnswerResponse struct {
	State session.State `json:"state"`
}

// StudySessionRecord is one persisted study session.
type StudySessionRecord struct {
	UID              string    `json:"uid"`
	UserID           string    `json:"user_id"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	AnsweredCount    int32     `json:"answered_count"`
	CorrectCount     int32     `json:"correct_count"`
	Accuracy         float64   `json:"accuracy"`
	TotalTimeSeconds int64     `json:"total_time_seconds"`
}

// ListSessionsResponse is the body of GET /api/v1/sessions.
type ListSessionsResponse struct {
	Sessions []*StudySessionRecord `json:"sessions"`
}

// BeginSession starts a study session. Only one session can be active at a
// time.
func (s *APIV1Service) BeginSession(c echo.Context) error {
	body := &BeginSessionRequest{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	userID := body.UserID
	if userID == "" {
		userID = defaultUserID
	}

	started, err := s.SessionManager.Begin(c.Request().Context(), userID, analytics.SessionContext{
		Deck:   body.Deck,
		Source: body.Source,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, started)
}

// GetCurrentSession returns the active or most recently ended session.
func (s *APIV1Service) GetCurrentSession(c echo.Context) error {
	tracker := s.SessionManager.Current()
	if tracker == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no study session has begun")
	}
	return c.JSON(http.StatusOK, &CurrentSessionResponse{
		State:   tracker.State(),
		Session: tracker.Session(),
	})
}

// RecordAnswer logs an answered card to the current session.
func (s *APIV1Service) RecordAnswer(c echo.Context) error {
	body := &RecordAnswerRequest{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.CardUID == "" {
		return toHTTPError(errors.InvalidArgument("card_uid is required"))
	}
	if body.Confidence != 0 && (body.Confidence < 1 || body.Confidence > 5) {
		return toHTTPError(errors.InvalidQuality(body.Confidence))
	}

	tracker := s.SessionManager.Current()
	if tracker == nil {
		return toHTTPError(errors.SessionNotActive("no study session has begun"))
	}

	tracker.RecordAnswer(c.Request().Context(), analytics.CardAnswer{
		CardUID:          body.CardUID,
		TimeSpentSeconds: body.TimeSpentSeconds,
		WasCorrect:       body.WasCorrect,
		Confidence:       body.Confidence,
	})
	return c.JSON(http.StatusOK, &RecordAnswerResponse{State: tracker.State()})
}

// EndSession finalizes the active session and returns its summary.
func (s *APIV1Service) EndSession(c echo.Context) error {
	tracker := s.SessionManager.Current()
	if tracker == nil {
		return toHTTPError(errors.SessionNotActive("no study session has begun"))
	}

	summary := tracker.End(c.Request().Context())
	if summary == nil {
		return toHTTPError(errors.SessionNotActive("no active session to end"))
	}
	return c.JSON(http.StatusOK, summary)
}

// ListSessions returns persisted study sessions, most recent first.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	find := &store.FindStudySession{}
	if userID := c.QueryParam("user_id"); userID != "" {
		find.UserID = &userID
	}
	if ts, ok := queryInt64(c, "started_after"); ok {
		find.StartedAfterTs = &ts
	}
	if ts, ok := queryInt64(c, "started_before"); ok {
		find.StartedBeforeTs = &ts
	}
	if limit := queryInt(c, "limit", 0); limit > 0 {
		find.Limit = &limit
	}
	if offset := queryInt(c, "offset", 0); offset > 0 {
		find.Offset = &offset
	}

	rows, err := s.Store.ListStudySessions(c.Request().Context(), find)
	if err != nil {
		return toHTTPError(errors.StoreUnavailable("failed to list study sessions", err))
	}

	response := &ListSessionsResponse{Sessions: make([]*StudySessionRecord, 0, len(rows))}
	for _, row := range rows {
		response.Sessions = append(response.Sessions, &StudySessionRecord{
			UID:              row.UID,
			UserID:           row.UserID,
			StartedAt:        row.StartedTime(),
			EndedAt:          row.EndedTime(),
			AnsweredCount:    row.AnsweredCount,
			CorrectCount:     row.CorrectCount,
			Accuracy:         row.Accuracy(),
			TotalTimeSeconds: row.TotalTimeSeconds,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteSession removes a persisted study session.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	uid := c.Param("uid")
	row, err := s.Store.GetStudySession(c.Request().Context(), &store.FindStudySession{UID: &uid})
	if err != nil {
		return toHTTPError(errors.StoreUnavailable("failed to get study session", err))
	}
	if row == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("study session not found: %s", uid))
	}
	if err := s.Store.DeleteStudySession(c.Request().Context(), &store.DeleteStudySession{ID: row.ID}); err != nil {
		return toHTTPError(errors.StoreUnavailable("failed to delete study session", err))
	}
	return c.NoContent(http.StatusNoContent)
}
