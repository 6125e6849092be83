package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/store"
)

func TestCardStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	hints := `["Apply Rolle's theorem to an auxiliary function."]`
	tags := `["differentiation"]`
	card, err := ts.CreateCard(ctx, &store.Card{
		UID:       "card-mvt",
		Deck:      "real-analysis",
		Statement: "State the mean value theorem.",
		Proof:     "Apply Rolle's theorem to g(x) = f(x) - kx.",
		Hints:     &hints,
		Tags:      &tags,
	})
	require.NoError(t, err)
	require.NotZero(t, card.ID)
	require.NotZero(t, card.CreatedTs)
	require.Equal(t, store.Normal, card.RowStatus)

	found, err := ts.GetCard(ctx, &store.FindCard{UID: &card.UID})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, card.ID, found.ID)
	require.NotNil(t, found.Hints)
	require.Equal(t, hints, *found.Hints)
	require.NotNil(t, found.Tags)
	require.Equal(t, tags, *found.Tags)

	// Second lookup is served from the cache.
	cached, err := ts.GetCard(ctx, &store.FindCard{UID: &card.UID})
	require.NoError(t, err)
	require.Equal(t, found.ID, cached.ID)

	proof := "Apply Rolle's theorem to g(x) = f(x) - f(a) - k(x - a)."
	updated, err := ts.UpdateCard(ctx, &store.UpdateCard{
		ID:    card.ID,
		Proof: &proof,
	})
	require.NoError(t, err)
	require.Equal(t, proof, updated.Proof)
	require.Equal(t, card.Statement, updated.Statement)

	missing, err := ts.GetCard(ctx, &store.FindCard{UID: stringPtr("card-nope")})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCardStoreListByDeck(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for _, c := range []*store.Card{
		{UID: "card-ivt", Deck: "real-analysis", Statement: "State the intermediate value theorem.", Proof: "Bisection."},
		{UID: "card-rank", Deck: "linear-algebra", Statement: "State the rank-nullity theorem.", Proof: "Extend a basis of the kernel."},
		{UID: "card-heine", Deck: "real-analysis", Statement: "State the Heine-Borel theorem.", Proof: "Closed and bounded iff compact."},
	} {
		_, err := ts.CreateCard(ctx, c)
		require.NoError(t, err)
	}

	analysis, err := ts.ListCards(ctx, &store.FindCard{Deck: stringPtr("real-analysis")})
	require.NoError(t, err)
	require.Len(t, analysis, 2)
	// Creation order is preserved.
	require.Equal(t, "card-ivt", analysis[0].UID)
	require.Equal(t, "card-heine", analysis[1].UID)

	all, err := ts.ListCards(ctx, &store.FindCard{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	limited, err := ts.ListCards(ctx, &store.FindCard{Limit: intPtr(1), Offset: intPtr(1)})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "card-rank", limited[0].UID)
}

func TestCardStoreArchive(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	card, err := ts.CreateCard(ctx, &store.Card{
		UID:       "card-cayley",
		Deck:      "group-theory",
		Statement: "State Cayley's theorem.",
		Proof:     "Left multiplication embeds G into Sym(G).",
	})
	require.NoError(t, err)

	archived := store.Archived
	updated, err := ts.UpdateCard(ctx, &store.UpdateCard{ID: card.ID, RowStatus: &archived})
	require.NoError(t, err)
	require.Equal(t, store.Archived, updated.RowStatus)

	normal := store.Normal
	active, err := ts.ListCards(ctx, &store.FindCard{RowStatus: &normal})
	require.NoError(t, err)
	require.Empty(t, active)

	shelved, err := ts.ListCards(ctx, &store.FindCard{RowStatus: &archived})
	require.NoError(t, err)
	require.Len(t, shelved, 1)
}

func TestCardStoreDeleteCascades(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	card, err := ts.CreateCard(ctx, &store.Card{
		UID:       "card-bolzano",
		Deck:      "real-analysis",
		Statement: "State the Bolzano-Weierstrass theorem.",
		Proof:     "Nested intervals.",
	})
	require.NoError(t, err)

	_, err = ts.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:      card.UID,
		Repetition:   1,
		IntervalDays: 1,
		EaseFactor:   2.5,
		ReviewCount:  1,
	})
	require.NoError(t, err)

	err = ts.DeleteCard(ctx, &store.DeleteCard{ID: card.ID})
	require.NoError(t, err)

	gone, err := ts.GetCard(ctx, &store.FindCard{UID: &card.UID})
	require.NoError(t, err)
	require.Nil(t, gone)

	state, err := ts.GetReviewState(ctx, &store.FindReviewState{CardUID: &card.UID})
	require.NoError(t, err)
	require.Nil(t, state)

	err = ts.DeleteCard(ctx, &store.DeleteCard{ID: card.ID})
	require.Error(t, err)
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
