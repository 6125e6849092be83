// Package review provides the card review workflow: due-ordered queue
// construction, grade submission through the SM-2 scheduler, study-progress
// classification and card management.
//
// Key features:
//   - Review queue seeded from persisted scheduling rows, never-graded
//     cards entering as due immediately
//   - Per-answer interval growth; grading twice on the same day advances
//     the schedule twice
//   - CEL filter expressions over card attributes
//   - Progress breakdown into new, learning and reviewing cards
//
// The service layer abstracts business logic from the store layer and
// provides a clean interface for upper layers.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/errgroup"

	"github.com/amirb101/proofdeck/plugin/filter"
	"github.com/amirb101/proofdeck/plugin/markdown"
	"github.com/amirb101/proofdeck/server/internal/errors"
	"github.com/amirb101/proofdeck/server/internal/observability"
	"github.com/amirb101/proofdeck/server/scheduler/queue"
	"github.com/amirb101/proofdeck/server/scheduler/sm2"
	"github.com/amirb101/proofdeck/server/stats"
	"github.com/amirb101/proofdeck/store"
)

// rescheduleWorkers bounds the concurrent store writes of RescheduleAll.
const rescheduleWorkers = 4

type service struct {
	store    Store
	engine   *filter.Engine
	renderer *markdown.Renderer
	nowFn    func() time.Time
}

// Store is the interface for store operations needed by the review service.
type Store interface {
	CreateCard(ctx context.Context, create *store.Card) (*store.Card, error)
	ListCards(ctx context.Context, find *store.FindCard) ([]*store.Card, error)
	GetCard(ctx context.Context, find *store.FindCard) (*store.Card, error)
	UpdateCard(ctx context.Context, update *store.UpdateCard) (*store.Card, error)
	DeleteCard(ctx context.Context, delete *store.DeleteCard) error
	UpsertReviewState(ctx context.Context, upsert *store.ReviewState) (*store.ReviewState, error)
	ListReviewStates(ctx context.Context, find *store.FindReviewState) ([]*store.ReviewState, error)
	GetReviewState(ctx context.Context, find *store.FindReviewState) (*store.ReviewState, error)
	DeleteReviewState(ctx context.Context, delete *store.DeleteReviewState) error
}

// NewService creates a new review service.
func NewService(store *store.Store) (Service, error) {
	engine, err := filter.NewEngine()
	if err != nil {
		return nil, err
	}
	return &service{
		store:    store,
		engine:   engine,
		renderer: markdown.NewRenderer(),
		nowFn:    time.Now,
	}, nil
}

// GetQueue returns the ordered review queue with its progress breakdown.
func (s *service) GetQueue(ctx context.Context, req *QueueRequest) (*QueueSnapshot, error) {
	if req == nil {
		req = &QueueRequest{}
	}

	cards, states, err := s.loadWorkingSet(ctx, req.Deck)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	byUID := make(map[string]*store.Card, len(cards))
	raw := make([]queue.RawCard, 0, len(cards))
	for _, card := range cards {
		byUID[card.UID] = card
		raw = append(raw, rawCard(card.UID, states[card.UID]))
	}

	q := queue.Seed(raw, now)
	ordered := q.States()
	if req.DueOnly {
		ordered = q.Due(now)
	}
	if req.Limit > 0 && len(ordered) > req.Limit {
		ordered = ordered[:req.Limit]
	}

	snapshot := &QueueSnapshot{
		GeneratedAt: now,
		Cards:       make([]*Card, 0, len(ordered)),
		Breakdown:   q.Classify(now),
	}
	for _, state := range ordered {
		snapshot.Cards = append(snapshot.Cards, s.cardViewWithState(byUID[state.CardUID], state, now))
	}
	return snapshot, nil
}

// SubmitReview grades one card and persists the rescheduled state.
func (s *service) SubmitReview(ctx context.Context, cardUID string, quality int) (*ReviewResult, error) {
	q := sm2.Quality(quality)
	if !q.IsValid() {
		return nil, errors.InvalidQuality(quality)
	}

	card, row, err := s.findCard(ctx, cardUID)
	if err != nil {
		return nil, err
	}
	if card.RowStatus == store.Archived {
		return nil, errors.InvalidArgument(fmt.Sprintf("card %s is archived", cardUID))
	}

	now := s.nowFn()
	next := sm2.Update(seededState(cardUID, row, now), q, now)
	if _, err := s.store.UpsertReviewState(ctx, rowFromState(next)); err != nil {
		return nil, errors.StoreUnavailable("failed to persist review state", err)
	}

	slog.Info("review graded",
		slog.String(observability.LogFieldOperation, "submit_review"),
		slog.String(observability.LogFieldCardUID, cardUID),
		slog.Int(observability.LogFieldQuality, quality),
		slog.Int("interval_days", next.IntervalDays),
		slog.Float64("ease_factor", next.EaseFactor),
	)

	return &ReviewResult{
		CardUID:  cardUID,
		Quality:  quality,
		Lapsed:   q.IsLapse(),
		Schedule: scheduleFromState(next, now),
	}, nil
}

// GetBreakdown classifies active cards by study progress.
func (s *service) GetBreakdown(ctx context.Context, deck string) (stats.Breakdown, error) {
	cards, states, err := s.loadWorkingSet(ctx, deck)
	if err != nil {
		return stats.Breakdown{}, err
	}

	now := s.nowFn()
	raw := make([]queue.RawCard, 0, len(cards))
	for _, card := range cards {
		raw = append(raw, rawCard(card.UID, states[card.UID]))
	}
	return queue.Seed(raw, now).Classify(now), nil
}

// RescheduleAll heals persisted scheduling rows that drifted from scheduler
// invariants, typically after an external import: ease factors are floored
// and re-rounded, and next review times are re-derived from the last review
// plus the stored interval. Healthy rows are left untouched.
func (s *service) RescheduleAll(ctx context.Context) (int, error) {
	rows, err := s.store.ListReviewStates(ctx, &store.FindReviewState{})
	if err != nil {
		return 0, errors.StoreUnavailable("failed to list review states", err)
	}

	var updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rescheduleWorkers)
	for _, row := range rows {
		g.Go(func() error {
			healed, changed := normalizeRow(row)
			if !changed {
				return nil
			}
			if _, err := s.store.UpsertReviewState(gctx, healed); err != nil {
				return errors.StoreUnavailable(fmt.Sprintf("failed to reschedule card %s", row.CardUID), err)
			}
			updated.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(updated.Load()), err
	}

	slog.Info("reschedule pass finished",
		slog.String(observability.LogFieldOperation, "reschedule_all"),
		slog.Int("scanned", len(rows)),
		slog.Int64("updated", updated.Load()),
	)
	return int(updated.Load()), nil
}

// CreateCard adds a theorem card. New cards are due immediately.
func (s *service) CreateCard(ctx context.Context, create *CreateCardRequest) (*Card, error) {
	deck := normalizeDeck(create.Deck)
	if deck == "" {
		return nil, errors.InvalidArgument("deck is required")
	}
	if strings.TrimSpace(create.Statement) == "" {
		return nil, errors.InvalidArgument("statement is required")
	}
	if strings.TrimSpace(create.Proof) == "" {
		return nil, errors.InvalidArgument("proof is required")
	}

	card, err := s.store.CreateCard(ctx, &store.Card{
		UID:       shortuuid.New(),
		Deck:      deck,
		Statement: create.Statement,
		Proof:     create.Proof,
		Hints:     encodeStringList(create.Hints),
		Tags:      encodeStringList(create.Tags),
	})
	if err != nil {
		return nil, errors.StoreUnavailable("failed to create card", err)
	}

	slog.Info("card created",
		slog.String(observability.LogFieldOperation, "create_card"),
		slog.String(observability.LogFieldCardUID, card.UID),
		slog.String(observability.LogFieldDeck, card.Deck),
	)
	return s.cardView(card, nil), nil
}

// GetCard returns one card joined with its scheduling state.
func (s *service) GetCard(ctx context.Context, uid string) (*Card, error) {
	card, row, err := s.findCard(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.cardView(card, row), nil
}

// ListCards returns cards, optionally narrowed by deck and by a CEL filter
// expression. Pagination applies after filtering.
func (s *service) ListCards(ctx context.Context, req *ListCardsRequest) ([]*Card, error) {
	if req == nil {
		req = &ListCardsRequest{}
	}

	var compiled *filter.Filter
	if req.Filter != "" {
		f, err := s.engine.Compile(req.Filter)
		if err != nil {
			return nil, errors.InvalidFilter("invalid filter expression", err)
		}
		compiled = f
	}

	find := &store.FindCard{}
	if req.Deck != "" {
		deck := normalizeDeck(req.Deck)
		find.Deck = &deck
	}
	if !req.IncludeArchived {
		normal := store.Normal
		find.RowStatus = &normal
	}
	cards, err := s.store.ListCards(ctx, find)
	if err != nil {
		return nil, errors.StoreUnavailable("failed to list cards", err)
	}
	states, err := s.reviewStatesByUID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	out := make([]*Card, 0, len(cards))
	for _, card := range cards {
		view := s.cardViewWithState(card, seededState(card.UID, states[card.UID], now), now)
		if compiled != nil {
			matched, err := compiled.Match(filter.Card{
				UID:         view.UID,
				Deck:        view.Deck,
				Statement:   view.Statement,
				Proof:       view.Proof,
				Tags:        view.Tags,
				HasHints:    len(view.Hints) > 0,
				ReviewCount: view.Schedule.ReviewCount,
				Due:         view.Schedule.Due,
			})
			if err != nil {
				return nil, errors.InvalidFilter("failed to evaluate filter", err)
			}
			if !matched {
				continue
			}
		}
		out = append(out, view)
	}

	if req.Offset > 0 {
		if req.Offset >= len(out) {
			return []*Card{}, nil
		}
		out = out[req.Offset:]
	}
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// UpdateCard applies a partial update to a card's faces and labels.
func (s *service) UpdateCard(ctx context.Context, uid string, update *UpdateCardRequest) (*Card, error) {
	card, row, err := s.findCard(ctx, uid)
	if err != nil {
		return nil, err
	}

	storeUpdate := &store.UpdateCard{ID: card.ID}
	if update.Deck != nil {
		deck := normalizeDeck(*update.Deck)
		if deck == "" {
			return nil, errors.InvalidArgument("deck cannot be empty")
		}
		storeUpdate.Deck = &deck
	}
	if update.Statement != nil {
		if strings.TrimSpace(*update.Statement) == "" {
			return nil, errors.InvalidArgument("statement cannot be empty")
		}
		storeUpdate.Statement = update.Statement
	}
	if update.Proof != nil {
		if strings.TrimSpace(*update.Proof) == "" {
			return nil, errors.InvalidArgument("proof cannot be empty")
		}
		storeUpdate.Proof = update.Proof
	}
	if update.Hints != nil {
		storeUpdate.Hints = encodeStringList(update.Hints)
	}
	if update.Tags != nil {
		storeUpdate.Tags = encodeStringList(update.Tags)
	}

	updated, err := s.store.UpdateCard(ctx, storeUpdate)
	if err != nil {
		return nil, errors.StoreUnavailable("failed to update card", err)
	}
	return s.cardView(updated, row), nil
}

// ArchiveCard removes a card from scheduling without deleting it. The
// scheduling state is kept, so restoring resumes where the card left off.
func (s *service) ArchiveCard(ctx context.Context, uid string) (*Card, error) {
	return s.setRowStatus(ctx, uid, store.Archived)
}

// RestoreCard returns an archived card to scheduling.
func (s *service) RestoreCard(ctx context.Context, uid string) (*Card, error) {
	return s.setRowStatus(ctx, uid, store.Normal)
}

// ResetCard erases a card's scheduling progress, making it new again.
func (s *service) ResetCard(ctx context.Context, uid string) (*Card, error) {
	card, _, err := s.findCard(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteReviewState(ctx, &store.DeleteReviewState{CardUID: uid}); err != nil {
		return nil, errors.StoreUnavailable("failed to reset review state", err)
	}

	slog.Info("card progress reset",
		slog.String(observability.LogFieldOperation, "reset_card"),
		slog.String(observability.LogFieldCardUID, uid),
	)
	return s.cardView(card, nil), nil
}

// DeleteCard removes a card and its scheduling state.
func (s *service) DeleteCard(ctx context.Context, uid string) error {
	card, err := s.store.GetCard(ctx, &store.FindCard{UID: &uid})
	if err != nil {
		return errors.StoreUnavailable("failed to get card", err)
	}
	if card == nil {
		return errors.CardNotFound(uid)
	}
	if err := s.store.DeleteCard(ctx, &store.DeleteCard{ID: card.ID}); err != nil {
		return errors.StoreUnavailable("failed to delete card", err)
	}

	slog.Info("card deleted",
		slog.String(observability.LogFieldOperation, "delete_card"),
		slog.String(observability.LogFieldCardUID, uid),
	)
	return nil
}

// findCard loads a card and its optional scheduling row, mapping a missing
// card onto ErrCodeCardNotFound.
func (s *service) findCard(ctx context.Context, uid string) (*store.Card, *store.ReviewState, error) {
	card, err := s.store.GetCard(ctx, &store.FindCard{UID: &uid})
	if err != nil {
		return nil, nil, errors.StoreUnavailable("failed to get card", err)
	}
	if card == nil {
		return nil, nil, errors.CardNotFound(uid)
	}
	row, err := s.store.GetReviewState(ctx, &store.FindReviewState{CardUID: &uid})
	if err != nil {
		return nil, nil, errors.StoreUnavailable("failed to get review state", err)
	}
	return card, row, nil
}

// loadWorkingSet returns active cards of the given deck (all decks when
// empty) plus every scheduling row keyed by card UID.
func (s *service) loadWorkingSet(ctx context.Context, deck string) ([]*store.Card, map[string]*store.ReviewState, error) {
	normal := store.Normal
	find := &store.FindCard{RowStatus: &normal}
	if deck != "" {
		normalized := normalizeDeck(deck)
		find.Deck = &normalized
	}
	cards, err := s.store.ListCards(ctx, find)
	if err != nil {
		return nil, nil, errors.StoreUnavailable("failed to list cards", err)
	}
	states, err := s.reviewStatesByUID(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cards, states, nil
}

func (s *service) reviewStatesByUID(ctx context.Context) (map[string]*store.ReviewState, error) {
	rows, err := s.store.ListReviewStates(ctx, &store.FindReviewState{})
	if err != nil {
		return nil, errors.StoreUnavailable("failed to list review states", err)
	}
	states := make(map[string]*store.ReviewState, len(rows))
	for _, row := range rows {
		states[row.CardUID] = row
	}
	return states, nil
}

func (s *service) setRowStatus(ctx context.Context, uid string, status store.RowStatus) (*Card, error) {
	card, row, err := s.findCard(ctx, uid)
	if err != nil {
		return nil, err
	}
	if card.RowStatus == status {
		return s.cardView(card, row), nil
	}

	updated, err := s.store.UpdateCard(ctx, &store.UpdateCard{ID: card.ID, RowStatus: &status})
	if err != nil {
		return nil, errors.StoreUnavailable("failed to update card status", err)
	}

	slog.Info("card status changed",
		slog.String(observability.LogFieldOperation, "set_card_status"),
		slog.String(observability.LogFieldCardUID, uid),
		slog.String("row_status", status.String()),
	)
	return s.cardView(updated, row), nil
}

// cardView joins a card row with its optional scheduling row at the current
// time.
func (s *service) cardView(card *store.Card, row *store.ReviewState) *Card {
	now := s.nowFn()
	return s.cardViewWithState(card, seededState(card.UID, row, now), now)
}

func (s *service) cardViewWithState(card *store.Card, state sm2.ReviewState, now time.Time) *Card {
	return &Card{
		UID:       card.UID,
		Deck:      card.Deck,
		Statement: card.Statement,
		Proof:     card.Proof,
		Hints:     decodeStringList(card.Hints),
		Tags:      decodeStringList(card.Tags),
		Snippet:   s.renderer.Snippet(card.Statement, markdown.DefaultSnippetLength),
		Archived:  card.RowStatus == store.Archived,
		CreatedAt: time.Unix(card.CreatedTs, 0),
		UpdatedAt: time.Unix(card.UpdatedTs, 0),
		Schedule:  scheduleFromState(state, now),
	}
}
