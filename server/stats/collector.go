package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirb101/proofdeck/server/scheduler/sm2"
	"github.com/amirb101/proofdeck/store"
)

// DefaultCollectInterval is how often the collector samples the store when
// no interval is configured.
const DefaultCollectInterval = 5 * time.Minute

// Snapshot is one instance-wide statistics sample.
type Snapshot struct {
	CollectedAt time.Time    `json:"collected_at"`
	Cards       Breakdown    `json:"cards"`
	Sessions    SessionStats `json:"sessions"`
}

// SessionStats aggregates every persisted study session. Accuracy is
// answer-weighted across sessions, not a mean of per-session accuracies.
type SessionStats struct {
	Count            int     `json:"count"`
	AnsweredCount    int64   `json:"answered_count"`
	CorrectCount     int64   `json:"correct_count"`
	Accuracy         float64 `json:"accuracy"`
	TotalTimeSeconds int64   `json:"total_time_seconds"`
}

// CollectorStore is the slice of the store the collector reads.
type CollectorStore interface {
	ListCards(ctx context.Context, find *store.FindCard) ([]*store.Card, error)
	ListReviewStates(ctx context.Context, find *store.FindReviewState) ([]*store.ReviewState, error)
	ListStudySessions(ctx context.Context, find *store.FindStudySession) ([]*store.StudySession, error)
}

// Collector samples instance statistics on a fixed interval and serves the
// latest sample without touching the store on the read path.
type Collector struct {
	store    CollectorStore
	interval time.Duration
	nowFn    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	last *Snapshot
}

// NewCollector creates a collector. A non-positive interval falls back to
// DefaultCollectInterval.
func NewCollector(store CollectorStore, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		store:    store,
		interval: interval,
		nowFn:    time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sampling loop, taking an immediate first sample.
func (c *Collector) Start() {
	c.wg.Add(1)
	go c.loop()
}

// Close stops the sampling loop and waits for it to exit.
func (c *Collector) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Collector) loop() {
	defer c.wg.Done()

	if _, err := c.Collect(c.ctx); err != nil {
		slog.Error("statistics collection failed", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Collect(c.ctx); err != nil {
				slog.Error("statistics collection failed", "error", err)
			}
		}
	}
}

// Current returns the most recent sample, or false when none has been taken.
func (c *Collector) Current() (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return nil, false
	}
	return c.last, true
}

// Collect samples the store immediately and records the result as current.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	now := c.nowFn()

	normal := store.Normal
	cards, err := c.store.ListCards(ctx, &store.FindCard{RowStatus: &normal})
	if err != nil {
		return nil, err
	}
	rows, err := c.store.ListReviewStates(ctx, &store.FindReviewState{})
	if err != nil {
		return nil, err
	}
	sessions, err := c.store.ListStudySessions(ctx, &store.FindStudySession{})
	if err != nil {
		return nil, err
	}

	byUID := make(map[string]*store.ReviewState, len(rows))
	for _, row := range rows {
		byUID[row.CardUID] = row
	}
	states := make([]sm2.ReviewState, 0, len(cards))
	for _, card := range cards {
		states = append(states, collectorState(card.UID, byUID[card.UID], now))
	}

	snapshot := &Snapshot{
		CollectedAt: now,
		Cards:       Classify(states, now),
		Sessions:    aggregateSessions(sessions),
	}

	c.mu.Lock()
	c.last = snapshot
	c.mu.Unlock()
	return snapshot, nil
}

// collectorState maps a scheduling row to the scheduler's value type. Cards
// without a row classify as new and due.
func collectorState(uid string, row *store.ReviewState, now time.Time) sm2.ReviewState {
	if row == nil {
		return sm2.NewState(uid, now)
	}
	return sm2.ReviewState{
		CardUID:      uid,
		Repetition:   int(row.Repetition),
		IntervalDays: int(row.IntervalDays),
		EaseFactor:   row.EaseFactor,
		ReviewCount:  int(row.ReviewCount),
		LastReviewed: row.LastReviewedTime(),
		NextReview:   row.NextReviewTime(),
	}
}

func aggregateSessions(sessions []*store.StudySession) SessionStats {
	agg := SessionStats{Count: len(sessions)}
	for _, session := range sessions {
		agg.AnsweredCount += int64(session.AnsweredCount)
		agg.CorrectCount += int64(session.CorrectCount)
		agg.TotalTimeSeconds += session.TotalTimeSeconds
	}
	if agg.AnsweredCount > 0 {
		agg.Accuracy = float64(agg.CorrectCount) / float64(agg.AnsweredCount)
	}
	return agg
}
