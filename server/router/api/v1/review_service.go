package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/plugin/analytics"
	"github.com/amirb101/proofdeck/server/service/review"
)

// SubmitReviewRequest is the body of POST /api/v1/cards/{uid}/review.
type SubmitReviewRequest struct {
	// Quality is the learner's recall rating, 1 to 5.
	Quality int `json:"quality"`
	// TimeSpentSeconds is how long the answer took. Only used for session
	// analytics.
	TimeSpentSeconds int64 `json:"time_spent_seconds"`
}

// RescheduleAllResponse is the body of POST /api/v1/reschedule.
type RescheduleAllResponse struct {
	Updated int `json:"updated"`
}

// GetQueue returns the review queue ordered ascending by next review time.
func (s *APIV1Service) GetQueue(c echo.Context) error {
	snapshot, err := s.ReviewService.GetQueue(c.Request().Context(), &review.QueueRequest{
		Deck:    c.QueryParam("deck"),
		DueOnly: queryBool(c, "due_only"),
		Limit:   queryInt(c, "limit", 0),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// SubmitReview grades one card. When a study session is active, the answer
// is also logged to the session tracker.
func (s *APIV1Service) SubmitReview(c echo.Context) error {
	body := &SubmitReviewRequest{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	cardUID := c.Param("uid")
	result, err := s.ReviewService.SubmitReview(ctx, cardUID, body.Quality)
	if err != nil {
		return toHTTPError(err)
	}

	if tracker := s.SessionManager.Current(); tracker != nil {
		tracker.RecordAnswer(ctx, analytics.CardAnswer{
			CardUID:          cardUID,
			TimeSpentSeconds: body.TimeSpentSeconds,
			WasCorrect:       !result.Lapsed,
			Confidence:       body.Quality,
		})
	}
	return c.JSON(http.StatusOK, result)
}

// GetBreakdown classifies active cards by study progress, optionally
// scoped to one deck.
func (s *APIV1Service) GetBreakdown(c echo.Context) error {
	breakdown, err := s.ReviewService.GetBreakdown(c.Request().Context(), c.QueryParam("deck"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, breakdown)
}

// RescheduleAll heals scheduling rows that drifted from scheduler
// invariants.
func (s *APIV1Service) RescheduleAll(c echo.Context) error {
	updated, err := s.ReviewService.RescheduleAll(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, &RescheduleAllResponse{Updated: updated})
}
