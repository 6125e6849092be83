package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/store"
	teststore "github.com/amirb101/proofdeck/store/test"
)

func TestCollector_Collect(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	c := NewCollector(st, 0)
	c.nowFn = func() time.Time { return now }

	_, ok := c.Current()
	assert.False(t, ok)

	// One reviewed card scheduled out, one never reviewed.
	reviewed, err := st.CreateCard(ctx, &store.Card{
		UID:       "card-reviewed",
		Deck:      "real-analysis",
		Statement: "Mean value theorem.",
		Proof:     "Apply Rolle to the tilted difference.",
	})
	require.NoError(t, err)
	_, err = st.CreateCard(ctx, &store.Card{
		UID:       "card-fresh",
		Deck:      "real-analysis",
		Statement: "Rolle's theorem.",
		Proof:     "Interior extremum has zero derivative.",
	})
	require.NoError(t, err)
	_, err = st.UpsertReviewState(ctx, &store.ReviewState{
		CardUID:        reviewed.UID,
		Repetition:     2,
		IntervalDays:   6,
		EaseFactor:     2.5,
		ReviewCount:    2,
		LastReviewedTs: now.Unix(),
		NextReviewTs:   now.AddDate(0, 0, 6).Unix(),
	})
	require.NoError(t, err)

	_, err = st.CreateStudySession(ctx, &store.StudySession{
		UID:              "session-1",
		UserID:           "learner",
		StartedTs:        now.Add(-time.Hour).Unix(),
		EndedTs:          now.Unix(),
		AnsweredCount:    4,
		CorrectCount:     3,
		TotalTimeSeconds: 240,
	})
	require.NoError(t, err)
	_, err = st.CreateStudySession(ctx, &store.StudySession{
		UID:              "session-2",
		UserID:           "learner",
		StartedTs:        now.Unix(),
		EndedTs:          now.Add(time.Hour).Unix(),
		AnsweredCount:    6,
		CorrectCount:     5,
		TotalTimeSeconds: 360,
	})
	require.NoError(t, err)

	snapshot, err := c.Collect(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.CollectedAt.Equal(now))

	assert.Equal(t, 2, snapshot.Cards.Total)
	assert.Equal(t, 1, snapshot.Cards.New)
	assert.Equal(t, 1, snapshot.Cards.Learning)
	assert.Equal(t, 1, snapshot.Cards.Due)

	assert.Equal(t, 2, snapshot.Sessions.Count)
	assert.EqualValues(t, 10, snapshot.Sessions.AnsweredCount)
	assert.EqualValues(t, 8, snapshot.Sessions.CorrectCount)
	assert.InDelta(t, 0.8, snapshot.Sessions.Accuracy, 1e-9)
	assert.EqualValues(t, 600, snapshot.Sessions.TotalTimeSeconds)

	current, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, snapshot, current)
}

func TestCollector_EmptyStore(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	c := NewCollector(st, 0)
	snapshot, err := c.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.Cards.Total)
	assert.Equal(t, 0, snapshot.Sessions.Count)
	assert.Zero(t, snapshot.Sessions.Accuracy)
}

func TestCollector_StartClose(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	c := NewCollector(st, 10*time.Millisecond)
	c.Start()

	assert.Eventually(t, func() bool {
		_, ok := c.Current()
		return ok
	}, time.Second, 5*time.Millisecond)

	c.Close()
}
