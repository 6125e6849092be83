// Package feed serves Atom and RSS documents listing the cards that are due
// for review, so a feed reader can double as a study reminder.
package feed

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/plugin/markdown"
	"github.com/amirb101/proofdeck/server/internal/observability"
	"github.com/amirb101/proofdeck/server/service/review"
	"github.com/amirb101/proofdeck/store"
)

const (
	// maxFeedItems caps feed size so an overdue backlog does not produce an
	// unbounded document.
	maxFeedItems = 50

	itemTitleLength = 80
)

// FeedService renders the due queue as a web feed.
type FeedService struct {
	Profile       *profile.Profile
	ReviewService review.Service

	renderer *markdown.Renderer
}

// NewFeedService creates a feed service backed by the given store.
func NewFeedService(profile *profile.Profile, store *store.Store) (*FeedService, error) {
	reviewService, err := review.NewService(store)
	if err != nil {
		return nil, err
	}
	return &FeedService{
		Profile:       profile,
		ReviewService: reviewService,
		renderer:      markdown.NewRenderer(),
	}, nil
}

// RegisterRoutes mounts the feed endpoints on the echo server.
func (s *FeedService) RegisterRoutes(echoServer *echo.Echo) {
	feedGroup := echoServer.Group("/feed")
	feedGroup.GET("/due.atom", s.GetDueAtom)
	feedGroup.GET("/due.rss", s.GetDueRSS)
}

// GetDueAtom serves the due queue as an Atom feed. An optional deck query
// parameter narrows the feed to one deck.
func (s *FeedService) GetDueAtom(c echo.Context) error {
	dueFeed, err := s.buildDueFeed(c)
	if err != nil {
		return err
	}
	atom, err := dueFeed.ToAtom()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode feed")
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

// GetDueRSS serves the same feed in RSS form for older readers.
func (s *FeedService) GetDueRSS(c echo.Context) error {
	dueFeed, err := s.buildDueFeed(c)
	if err != nil {
		return err
	}
	rss, err := dueFeed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode feed")
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (s *FeedService) buildDueFeed(c echo.Context) (*feeds.Feed, error) {
	if !s.Profile.FeedEnabled {
		return nil, echo.NewHTTPError(http.StatusNotFound, "feed is disabled")
	}

	snapshot, err := s.ReviewService.GetQueue(c.Request().Context(), &review.QueueRequest{
		Deck:    c.QueryParam("deck"),
		DueOnly: true,
		Limit:   maxFeedItems,
	})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "failed to load due cards")
	}

	dueFeed := &feeds.Feed{
		Title:       s.Profile.FeedTitle,
		Link:        &feeds.Link{Href: s.Profile.InstanceURL},
		Description: "Theorem cards due for review.",
		Created:     snapshot.GeneratedAt,
	}
	for _, card := range snapshot.Cards {
		item, err := s.feedItem(card)
		if err != nil {
			slog.Warn("failed to render card for feed",
				slog.String(observability.LogFieldCardUID, card.UID),
				slog.String("error", err.Error()))
			continue
		}
		dueFeed.Items = append(dueFeed.Items, item)
	}
	return dueFeed, nil
}

// feedItem renders one card as a feed entry. Only the statement side is
// published so the feed never spoils a proof.
func (s *FeedService) feedItem(card *review.Card) (*feeds.Item, error) {
	content, err := s.renderer.ToHTML(card.Statement)
	if err != nil {
		return nil, err
	}
	link := s.cardURL(card.UID)
	return &feeds.Item{
		Id:          link,
		Title:       fmt.Sprintf("[%s] %s", card.Deck, s.renderer.Snippet(card.Statement, itemTitleLength)),
		Link:        &feeds.Link{Href: link},
		Description: card.Snippet,
		Content:     content,
		Created:     card.CreatedAt,
		Updated:     card.UpdatedAt,
	}, nil
}

func (s *FeedService) cardURL(uid string) string {
	return fmt.Sprintf("%s/cards/%s", strings.TrimSuffix(s.Profile.InstanceURL, "/"), uid)
}
