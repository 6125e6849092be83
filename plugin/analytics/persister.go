package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/amirb101/proofdeck/store"
)

// Persister is the store-backed Sink. Ended sessions are buffered in memory
// and written to the store by a background flush loop. Open sessions are never
// persisted, so an abandoned session leaves no row behind.
type Persister struct {
	store *store.Store

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	flushInterval time.Duration
	nowFn         func() time.Time

	mu        sync.Mutex
	open      map[string]*openSession
	completed []*store.StudySession
}

type openSession struct {
	userID    string
	startedAt time.Time
	answers   []CardAnswer
}

// PersisterConfig configures the analytics persister.
type PersisterConfig struct {
	FlushInterval time.Duration // How often to write ended sessions to the store (default: 30s)
}

// DefaultPersisterConfig returns the default persister configuration.
func DefaultPersisterConfig() PersisterConfig {
	return PersisterConfig{
		FlushInterval: 30 * time.Second,
	}
}

// NewPersister creates a store-backed analytics sink.
func NewPersister(s *store.Store, cfg PersisterConfig) *Persister {
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Persister{
		store:         s,
		ctx:           ctx,
		cancel:        cancel,
		flushInterval: cfg.FlushInterval,
		nowFn:         time.Now,
		open:          make(map[string]*openSession),
	}
}

// Start begins the background flush loop.
func (p *Persister) Start() {
	p.wg.Add(1)
	go p.flushLoop()
}

// Close stops the flush loop and writes any remaining ended sessions.
// Sessions still open at close time are dropped, not persisted.
func (p *Persister) Close() {
	p.cancel()
	p.wg.Wait()
}

// StartSession opens a session and returns its id.
func (p *Persister) StartSession(_ context.Context, userID string, _ SessionContext) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := shortuuid.New()
	p.open[id] = &openSession{
		userID:    userID,
		startedAt: p.nowFn(),
	}
	return id, nil
}

// RecordCardAnswer appends an answer to an open session.
func (p *Persister) RecordCardAnswer(_ context.Context, sessionID string, answer CardAnswer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.open[sessionID]
	if !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	session.answers = append(session.answers, answer)
	return nil
}

// EndSession finalizes an open session, queues its row for the next flush,
// and returns the summary.
func (p *Persister) EndSession(_ context.Context, sessionID string, userID string) (*SessionSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.open[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	delete(p.open, sessionID)

	endedAt := p.nowFn()
	summary := Summarize(sessionID, userID, session.startedAt, endedAt, session.answers)
	p.completed = append(p.completed, &store.StudySession{
		UID:              sessionID,
		UserID:           userID,
		StartedTs:        session.startedAt.Unix(),
		EndedTs:          endedAt.Unix(),
		AnsweredCount:    int32(summary.AnsweredCount),
		CorrectCount:     int32(summary.CorrectCount),
		TotalTimeSeconds: summary.TotalTimeSeconds,
	})
	return summary, nil
}

// Flush writes all buffered ended sessions to the store. Rows that fail to
// write are logged and dropped; session analytics are best-effort.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.completed
	p.completed = nil
	p.mu.Unlock()

	for _, session := range pending {
		if _, err := p.store.CreateStudySession(ctx, session); err != nil {
			slog.Error("failed to persist study session",
				"session_uid", session.UID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Persister) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			// Final flush before shutdown
			_ = p.Flush(context.Background())
			return
		case <-ticker.C:
			if err := p.Flush(p.ctx); err != nil {
				slog.Error("periodic analytics flush failed", "error", err)
			}
		}
	}
}

// Ensure Persister implements Sink
var _ Sink = (*Persister)(nil)
