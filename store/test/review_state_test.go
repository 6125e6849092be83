package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/store"
)

func TestReviewStateStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	card, err := ts.CreateCard(ctx, &store.Card{
		UID:       "card-ivt",
		Deck:      "real-analysis",
		Statement: "State the intermediate value theorem.",
		Proof:     "Bisection.",
	})
	require.NoError(t, err)

	now := time.Now().Unix()
	state, err := ts.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:        card.UID,
		Repetition:     1,
		IntervalDays:   1,
		EaseFactor:     2.5,
		ReviewCount:    1,
		LastReviewedTs: now,
		NextReviewTs:   now + 86400,
	})
	require.NoError(t, err)
	require.NotZero(t, state.ID)
	require.Equal(t, int32(1), state.Repetition)
	require.Equal(t, 2.5, state.EaseFactor)

	// Upserting again for the same card updates the existing row in place.
	next, err := ts.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:        card.UID,
		Repetition:     2,
		IntervalDays:   6,
		EaseFactor:     2.36,
		ReviewCount:    2,
		LastReviewedTs: now,
		NextReviewTs:   now + 6*86400,
	})
	require.NoError(t, err)
	require.Equal(t, state.ID, next.ID)
	require.Equal(t, int32(2), next.Repetition)
	require.Equal(t, int32(6), next.IntervalDays)
	require.Equal(t, 2.36, next.EaseFactor)

	found, err := ts.GetReviewState(ctx, &store.FindReviewState{CardUID: &card.UID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, int32(2), found.Repetition)
	require.True(t, found.IsDueAt(now+6*86400))
	require.False(t, found.IsDueAt(now))
}

func TestReviewStateStoreDueFilter(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	now := time.Now().Unix()
	cards := []struct {
		uid    string
		nextTs int64
	}{
		{"card-overdue", now - 2*86400},
		{"card-today", now},
		{"card-future", now + 5*86400},
	}
	for _, c := range cards {
		_, err := ts.CreateCard(ctx, &store.Card{
			UID:       c.uid,
			Deck:      "real-analysis",
			Statement: "Statement for " + c.uid,
			Proof:     "Proof for " + c.uid,
		})
		require.NoError(t, err)
		_, err = ts.UpsertReviewState(ctx, &store.ReviewState{
			CardUID:        c.uid,
			Repetition:     1,
			IntervalDays:   1,
			EaseFactor:     2.5,
			ReviewCount:    1,
			LastReviewedTs: now - 86400,
			NextReviewTs:   c.nextTs,
		})
		require.NoError(t, err)
	}

	due, err := ts.ListReviewStates(ctx, &store.FindReviewState{DueBeforeTs: &now})
	require.NoError(t, err)
	require.Len(t, due, 2)
	// Earliest due first.
	require.Equal(t, "card-overdue", due[0].CardUID)
	require.Equal(t, "card-today", due[1].CardUID)

	all, err := ts.ListReviewStates(ctx, &store.FindReviewState{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestReviewStateStoreDelete(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	card, err := ts.CreateCard(ctx, &store.Card{
		UID:       "card-mvt",
		Deck:      "real-analysis",
		Statement: "State the mean value theorem.",
		Proof:     "Rolle's theorem.",
	})
	require.NoError(t, err)

	_, err = ts.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:      card.UID,
		Repetition:   3,
		IntervalDays: 15,
		EaseFactor:   2.6,
		ReviewCount:  3,
	})
	require.NoError(t, err)

	err = ts.DeleteReviewState(ctx, &store.DeleteReviewState{CardUID: card.UID})
	require.NoError(t, err)

	state, err := ts.GetReviewState(ctx, &store.FindReviewState{CardUID: &card.UID})
	require.NoError(t, err)
	require.Nil(t, state)

	// Resetting a card that was never reviewed is a no-op.
	err = ts.DeleteReviewState(ctx, &store.DeleteReviewState{CardUID: card.UID})
	require.NoError(t, err)
}
