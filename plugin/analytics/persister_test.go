package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirb101/proofdeck/store"
	teststore "github.com/amirb101/proofdeck/store/test"
)

func TestPersister_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)

	persister := NewPersister(ts, DefaultPersisterConfig())

	sessionID, err := persister.StartSession(ctx, "learner", SessionContext{Deck: "real-analysis", Source: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	answers := []CardAnswer{
		{CardUID: "card-a", TimeSpentSeconds: 30, WasCorrect: true, Confidence: 5},
		{CardUID: "card-b", TimeSpentSeconds: 45, WasCorrect: false, Confidence: 2},
		{CardUID: "card-c", TimeSpentSeconds: 25, WasCorrect: true, Confidence: 4},
	}
	for _, answer := range answers {
		require.NoError(t, persister.RecordCardAnswer(ctx, sessionID, answer))
	}

	summary, err := persister.EndSession(ctx, sessionID, "learner")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.AnsweredCount)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.InDelta(t, 2.0/3.0, summary.Accuracy, 1e-9)
	assert.Equal(t, int64(100), summary.TotalTimeSeconds)

	// The row appears only after a flush.
	row, err := ts.GetStudySession(ctx, &store.FindStudySession{UID: &sessionID})
	require.NoError(t, err)
	require.Nil(t, row)

	require.NoError(t, persister.Flush(ctx))

	row, err = ts.GetStudySession(ctx, &store.FindStudySession{UID: &sessionID})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "learner", row.UserID)
	assert.Equal(t, int32(3), row.AnsweredCount)
	assert.Equal(t, int32(2), row.CorrectCount)
	assert.Equal(t, int64(100), row.TotalTimeSeconds)
}

func TestPersister_UnknownSession(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)

	persister := NewPersister(ts, DefaultPersisterConfig())

	err := persister.RecordCardAnswer(ctx, "nope", CardAnswer{CardUID: "card-a"})
	assert.Error(t, err)

	_, err = persister.EndSession(ctx, "nope", "learner")
	assert.Error(t, err)
}

func TestPersister_CloseFlushesEndedSessions(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)

	persister := NewPersister(ts, PersisterConfig{FlushInterval: time.Hour})
	persister.Start()

	sessionID, err := persister.StartSession(ctx, "learner", SessionContext{})
	require.NoError(t, err)
	_, err = persister.EndSession(ctx, sessionID, "learner")
	require.NoError(t, err)

	// The ticker will not fire for an hour; Close must run the final flush.
	persister.Close()

	row, err := ts.GetStudySession(ctx, &store.FindStudySession{UID: &sessionID})
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestPersister_AbandonedSessionNeverPersisted(t *testing.T) {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)

	persister := NewPersister(ts, DefaultPersisterConfig())

	sessionID, err := persister.StartSession(ctx, "learner", SessionContext{})
	require.NoError(t, err)
	require.NoError(t, persister.RecordCardAnswer(ctx, sessionID, CardAnswer{CardUID: "card-a", WasCorrect: true}))

	// Never ended: flushing writes nothing.
	require.NoError(t, persister.Flush(ctx))

	sessions, err := ts.ListStudySessions(ctx, &store.FindStudySession{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSummarize_EmptySession(t *testing.T) {
	now := time.Now()
	summary := Summarize("s", "u", now, now, nil)
	assert.Equal(t, 0, summary.AnsweredCount)
	assert.Zero(t, summary.Accuracy)
	assert.Zero(t, summary.TotalTimeSeconds)
}
