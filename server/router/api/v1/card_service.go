package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/server/service/review"
)

// CreateCardRequest is the body of POST /api/v1/cards.
type CreateCardRequest struct {
	Deck      string   `json:"deck"`
	Statement string   `json:"statement"`
	Proof     string   `json:"proof"`
	Hints     []string `json:"hints"`
	Tags      []string `json:"tags"`
}

// UpdateCardRequest is the body of PATCH /api/v1/cards/{uid}. Absent fields
// are left unchanged.
type UpdateCardRequest struct {
	Deck      *string  `json:"deck"`
	Statement *string  `json:"statement"`
	Proof     *string  `json:"proof"`
	Hints     []string `json:"hints"`
	Tags      []string `json:"tags"`
}

// ListCardsResponse is the body of GET /api/v1/cards.
type ListCardsResponse struct {
	Cards []*review.Card `json:"cards"`
}

// ListCards returns cards, optionally narrowed by deck and by a CEL filter
// expression passed in the filter query parameter.
func (s *APIV1Service) ListCards(c echo.Context) error {
	cards, err := s.ReviewService.ListCards(c.Request().Context(), &review.ListCardsRequest{
		Deck:            c.QueryParam("deck"),
		Filter:          c.QueryParam("filter"),
		IncludeArchived: queryBool(c, "include_archived"),
		Limit:           queryInt(c, "limit", 0),
		Offset:          queryInt(c, "offset", 0),
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, &ListCardsResponse{Cards: cards})
}

// CreateCard adds a theorem card.
func (s *APIV1Service) CreateCard(c echo.Context) error {
	body := &CreateCardRequest{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	card, err := s.ReviewService.CreateCard(c.Request().Context(), &review.CreateCardRequest{
		Deck:      body.Deck,
		Statement: body.Statement,
		Proof:     body.Proof,
		Hints:     body.Hints,
		Tags:      body.Tags,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}

// GetCard returns one card with its scheduling state.
func (s *APIV1Service) GetCard(c echo.Context) error {
	card, err := s.ReviewService.GetCard(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}

// UpdateCard applies a partial update to a card.
func (s *APIV1Service) UpdateCard(c echo.Context) error {
	body := &UpdateCardRequest{}
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	card, err := s.ReviewService.UpdateCard(c.Request().Context(), c.Param("uid"), &review.UpdateCardRequest{
		Deck:      body.Deck,
		Statement: body.Statement,
		Proof:     body.Proof,
		Hints:     body.Hints,
		Tags:      body.Tags,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}

// DeleteCard removes a card and its scheduling state.
func (s *APIV1Service) DeleteCard(c echo.Context) error {
	if err := s.ReviewService.DeleteCard(c.Request().Context(), c.Param("uid")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ArchiveCard removes a card from scheduling without deleting it.
func (s *APIV1Service) ArchiveCard(c echo.Context) error {
	card, err := s.ReviewService.ArchiveCard(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}

// RestoreCard returns an archived card to scheduling.
func (s *APIV1Service) RestoreCard(c echo.Context) error {
	card, err := s.ReviewService.RestoreCard(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}

// ResetCard erases a card's scheduling progress.
func (s *APIV1Service) ResetCard(c echo.Context) error {
	card, err := s.ReviewService.ResetCard(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, card)
}
