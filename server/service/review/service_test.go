package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/plugin/filter"
	"github.com/amirb101/proofdeck/plugin/markdown"
	"github.com/amirb101/proofdeck/server/internal/errors"
	"github.com/amirb101/proofdeck/store"
	teststore "github.com/amirb101/proofdeck/store/test"
)

func newTestService(t *testing.T, now time.Time) (*service, *store.Store) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	engine, err := filter.NewEngine()
	require.NoError(t, err)

	svc := &service{
		store:    st,
		engine:   engine,
		renderer: markdown.NewRenderer(),
		nowFn:    func() time.Time { return now },
	}
	return svc, st
}

func createCard(t *testing.T, svc *service, deck, statement string, tags []string) *Card {
	card, err := svc.CreateCard(context.Background(), &CreateCardRequest{
		Deck:      deck,
		Statement: statement,
		Proof:     "Proof of " + statement,
		Tags:      tags,
	})
	require.NoError(t, err)
	return card
}

func TestService_CreateAndGetCard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	created, err := svc.CreateCard(ctx, &CreateCardRequest{
		Deck:      "Real Analysis",
		Statement: "Every Cauchy sequence in **R** converges.",
		Proof:     "Bound the sequence, extract a convergent subsequence, squeeze.",
		Hints:     []string{"Is the sequence bounded?"},
		Tags:      []string{"completeness"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.UID)
	assert.Equal(t, "real-analysis", created.Deck)
	assert.Equal(t, []string{"Is the sequence bounded?"}, created.Hints)
	assert.Equal(t, []string{"completeness"}, created.Tags)
	assert.NotEmpty(t, created.Snippet)
	assert.NotContains(t, created.Snippet, "**")
	assert.False(t, created.Archived)

	// New cards carry the seed schedule and are due immediately.
	assert.Equal(t, 0, created.Schedule.Repetition)
	assert.Equal(t, 0, created.Schedule.IntervalDays)
	assert.Equal(t, 2.5, created.Schedule.EaseFactor)
	assert.Equal(t, 0, created.Schedule.ReviewCount)
	assert.Nil(t, created.Schedule.LastReviewed)
	assert.True(t, created.Schedule.NextReview.Equal(now))
	assert.True(t, created.Schedule.Due)

	fetched, err := svc.GetCard(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, created.UID, fetched.UID)
	assert.Equal(t, created.Statement, fetched.Statement)

	_, err = svc.GetCard(ctx, "missing-card")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardNotFound))
}

func TestService_CreateCardValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		create *CreateCardRequest
	}{
		{
			name:   "missing deck",
			create: &CreateCardRequest{Statement: "s", Proof: "p"},
		},
		{
			name:   "blank statement",
			create: &CreateCardRequest{Deck: "algebra", Statement: "   ", Proof: "p"},
		},
		{
			name:   "blank proof",
			create: &CreateCardRequest{Deck: "algebra", Statement: "s", Proof: ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCard(ctx, tt.create)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
		})
	}
}

func TestService_SubmitReviewProgression(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, st := newTestService(t, now)
	card := createCard(t, svc, "real-analysis", "Bolzano-Weierstrass.", nil)

	// First success: one day out, ease factor unchanged at quality 4.
	result, err := svc.SubmitReview(ctx, card.UID, 4)
	require.NoError(t, err)
	assert.False(t, result.Lapsed)
	assert.Equal(t, 1, result.Schedule.Repetition)
	assert.Equal(t, 1, result.Schedule.IntervalDays)
	assert.Equal(t, 2.5, result.Schedule.EaseFactor)
	assert.Equal(t, 1, result.Schedule.ReviewCount)
	assert.True(t, result.Schedule.NextReview.Equal(now.AddDate(0, 0, 1)))
	assert.False(t, result.Schedule.Due)
	require.NotNil(t, result.Schedule.LastReviewed)
	assert.True(t, result.Schedule.LastReviewed.Equal(now))

	// Second success jumps to six days.
	result, err = svc.SubmitReview(ctx, card.UID, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Schedule.Repetition)
	assert.Equal(t, 6, result.Schedule.IntervalDays)
	assert.Equal(t, 2.5, result.Schedule.EaseFactor)

	// Third success multiplies by the ease factor held before this answer.
	result, err = svc.SubmitReview(ctx, card.UID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Schedule.Repetition)
	assert.Equal(t, 15, result.Schedule.IntervalDays)
	assert.Equal(t, 2.6, result.Schedule.EaseFactor)

	// A lapse resets the progression but keeps the ease factor.
	result, err = svc.SubmitReview(ctx, card.UID, 2)
	require.NoError(t, err)
	assert.True(t, result.Lapsed)
	assert.Equal(t, 0, result.Schedule.Repetition)
	assert.Equal(t, 1, result.Schedule.IntervalDays)
	assert.Equal(t, 2.6, result.Schedule.EaseFactor)
	assert.Equal(t, 4, result.Schedule.ReviewCount)

	row, err := st.GetReviewState(ctx, &store.FindReviewState{CardUID: &card.UID})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.EqualValues(t, 0, row.Repetition)
	assert.EqualValues(t, 1, row.IntervalDays)
	assert.Equal(t, 2.6, row.EaseFactor)
	assert.EqualValues(t, 4, row.ReviewCount)
	assert.Equal(t, now.AddDate(0, 0, 1).Unix(), row.NextReviewTs)
}

func TestService_SubmitReviewValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	card := createCard(t, svc, "group-theory", "Lagrange's theorem.", nil)

	for _, quality := range []int{0, -1, 6, 42} {
		_, err := svc.SubmitReview(ctx, card.UID, quality)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidQuality), "quality %d", quality)
	}

	_, err := svc.SubmitReview(ctx, "missing-card", 4)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardNotFound))

	_, err = svc.ArchiveCard(ctx, card.UID)
	require.NoError(t, err)
	_, err = svc.SubmitReview(ctx, card.UID, 4)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestService_GetQueueOrdering(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	reviewed := createCard(t, svc, "real-analysis", "Monotone convergence.", nil)
	fresh := createCard(t, svc, "real-analysis", "Nested intervals.", nil)
	distant := createCard(t, svc, "real-analysis", "Heine-Borel.", nil)

	_, err := svc.SubmitReview(ctx, reviewed.UID, 5)
	require.NoError(t, err)
	for range 2 {
		_, err = svc.SubmitReview(ctx, distant.UID, 4)
		require.NoError(t, err)
	}

	snapshot, err := svc.GetQueue(ctx, nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Cards, 3)
	// Ascending by next review: due now, tomorrow, six days out.
	assert.Equal(t, fresh.UID, snapshot.Cards[0].UID)
	assert.Equal(t, reviewed.UID, snapshot.Cards[1].UID)
	assert.Equal(t, distant.UID, snapshot.Cards[2].UID)

	assert.Equal(t, 3, snapshot.Breakdown.Total)
	assert.Equal(t, 1, snapshot.Breakdown.Due)
	assert.Equal(t, 1, snapshot.Breakdown.New)
	assert.Equal(t, 2, snapshot.Breakdown.Learning)
	assert.Equal(t, 0, snapshot.Breakdown.Reviewing)

	dueOnly, err := svc.GetQueue(ctx, &QueueRequest{DueOnly: true})
	require.NoError(t, err)
	require.Len(t, dueOnly.Cards, 1)
	assert.Equal(t, fresh.UID, dueOnly.Cards[0].UID)

	// A limit trims the cards, not the breakdown.
	limited, err := svc.GetQueue(ctx, &QueueRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited.Cards, 2)
	assert.Equal(t, 3, limited.Breakdown.Total)
}

func TestService_GetQueueEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	snapshot, err := svc.GetQueue(ctx, &QueueRequest{Deck: "no-such-deck"})
	require.NoError(t, err)
	assert.Empty(t, snapshot.Cards)
	assert.Equal(t, 0, snapshot.Breakdown.Total)
}

func TestService_ListCardsFilter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	ivt := createCard(t, svc, "real-analysis", "Intermediate value theorem.", []string{"continuity"})
	induction := createCard(t, svc, "number-theory", "Strong induction principle.", []string{"induction"})
	createCard(t, svc, "number-theory", "Euclid's lemma.", nil)

	byDeck, err := svc.ListCards(ctx, &ListCardsRequest{Filter: `deck == "real-analysis"`})
	require.NoError(t, err)
	require.Len(t, byDeck, 1)
	assert.Equal(t, ivt.UID, byDeck[0].UID)

	byTag, err := svc.ListCards(ctx, &ListCardsRequest{Filter: `"induction" in tags`})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, induction.UID, byTag[0].UID)

	// Every card is new, so every card is due.
	due, err := svc.ListCards(ctx, &ListCardsRequest{Filter: `due`})
	require.NoError(t, err)
	assert.Len(t, due, 3)

	_, err = svc.ListCards(ctx, &ListCardsRequest{Filter: `deck ==`})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFilter))

	_, err = svc.ListCards(ctx, &ListCardsRequest{Filter: `review_count + 1`})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFilter))
}

func TestService_ListCardsPagination(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	for _, statement := range []string{"First.", "Second.", "Third."} {
		createCard(t, svc, "linear-algebra", statement, nil)
	}

	page, err := svc.ListCards(ctx, &ListCardsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.ListCards(ctx, &ListCardsRequest{Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	none, err := svc.ListCards(ctx, &ListCardsRequest{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_UpdateCard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	card := createCard(t, svc, "linear-algebra", "Rank-nullity theorem.", []string{"dimension"})

	statement := "Rank-nullity: dim V = rank + nullity."
	updated, err := svc.UpdateCard(ctx, card.UID, &UpdateCardRequest{
		Statement: &statement,
		Tags:      []string{"dimension", "kernels"},
	})
	require.NoError(t, err)
	assert.Equal(t, statement, updated.Statement)
	assert.Equal(t, []string{"dimension", "kernels"}, updated.Tags)
	// Untouched fields survive.
	assert.Equal(t, card.Proof, updated.Proof)
	assert.Equal(t, "linear-algebra", updated.Deck)

	// An empty slice clears the labels.
	cleared, err := svc.UpdateCard(ctx, card.UID, &UpdateCardRequest{Tags: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)

	deck := "Functional Analysis"
	moved, err := svc.UpdateCard(ctx, card.UID, &UpdateCardRequest{Deck: &deck})
	require.NoError(t, err)
	assert.Equal(t, "functional-analysis", moved.Deck)

	blank := "  "
	_, err = svc.UpdateCard(ctx, card.UID, &UpdateCardRequest{Statement: &blank})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestService_ArchiveRestoreReset(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	card := createCard(t, svc, "topology", "Compactness is preserved by continuous maps.", nil)

	_, err := svc.SubmitReview(ctx, card.UID, 4)
	require.NoError(t, err)

	archived, err := svc.ArchiveCard(ctx, card.UID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	snapshot, err := svc.GetQueue(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Cards)

	// Restoring resumes the schedule where the card left off.
	restored, err := svc.RestoreCard(ctx, card.UID)
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.Equal(t, 1, restored.Schedule.Repetition)
	assert.Equal(t, 1, restored.Schedule.IntervalDays)

	reset, err := svc.ResetCard(ctx, card.UID)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.Schedule.Repetition)
	assert.Equal(t, 0, reset.Schedule.ReviewCount)
	assert.Equal(t, 2.5, reset.Schedule.EaseFactor)
	assert.True(t, reset.Schedule.Due)
}

func TestService_DeleteCard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	card := createCard(t, svc, "topology", "Tychonoff's theorem.", nil)

	require.NoError(t, svc.DeleteCard(ctx, card.UID))

	_, err := svc.GetCard(ctx, card.UID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardNotFound))

	err = svc.DeleteCard(ctx, card.UID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardNotFound))
}

func TestService_GetBreakdownPartition(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	veteran := createCard(t, svc, "real-analysis", "Mean value theorem.", nil)
	learner := createCard(t, svc, "real-analysis", "Rolle's theorem.", nil)
	createCard(t, svc, "real-analysis", "Darboux's theorem.", nil)
	createCard(t, svc, "group-theory", "First isomorphism theorem.", nil)

	for range 5 {
		_, err := svc.SubmitReview(ctx, veteran.UID, 4)
		require.NoError(t, err)
	}
	_, err := svc.SubmitReview(ctx, learner.UID, 3)
	require.NoError(t, err)

	breakdown, err := svc.GetBreakdown(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, breakdown.Total)
	assert.Equal(t, 2, breakdown.New)
	assert.Equal(t, 1, breakdown.Learning)
	assert.Equal(t, 1, breakdown.Reviewing)
	assert.Equal(t, breakdown.Total, breakdown.New+breakdown.Learning+breakdown.Reviewing)

	scoped, err := svc.GetBreakdown(ctx, "group-theory")
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.Total)
	assert.Equal(t, 1, scoped.New)
}

func TestService_RescheduleAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, st := newTestService(t, now)

	healthy := createCard(t, svc, "real-analysis", "Squeeze theorem.", nil)
	drifted := createCard(t, svc, "real-analysis", "Ratio test.", nil)
	for _, uid := range []string{healthy.UID, drifted.UID} {
		_, err := svc.SubmitReview(ctx, uid, 4)
		require.NoError(t, err)
	}

	// Simulate an external import that wrote an out-of-range ease factor
	// and a next review inconsistent with the stored interval.
	_, err := st.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:        drifted.UID,
		Repetition:     1,
		IntervalDays:   1,
		EaseFactor:     1.17,
		ReviewCount:    1,
		LastReviewedTs: now.Unix(),
		NextReviewTs:   now.AddDate(0, 0, 9).Unix(),
	})
	require.NoError(t, err)

	updated, err := svc.RescheduleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	row, err := st.GetReviewState(ctx, &store.FindReviewState{CardUID: &drifted.UID})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 1.3, row.EaseFactor)
	assert.Equal(t, now.AddDate(0, 0, 1).Unix(), row.NextReviewTs)

	// A second pass over the healed database rewrites nothing.
	updated, err = svc.RescheduleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}
