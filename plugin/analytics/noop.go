package analytics

import "context"

// NoopSink discards all session analytics. It backs the session tracker when
// analytics are disabled: sessions still run and summaries still compute, but
// nothing is persisted.
type NoopSink struct{}

// NewNoopSink creates a sink that drops everything it receives.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

// StartSession returns an empty id so the tracker keeps its locally generated
// one.
func (NoopSink) StartSession(context.Context, string, SessionContext) (string, error) {
	return "", nil
}

// RecordCardAnswer drops the answer.
func (NoopSink) RecordCardAnswer(context.Context, string, CardAnswer) error {
	return nil
}

// EndSession drops the session. The tracker computes its own summary.
func (NoopSink) EndSession(context.Context, string, string) (*SessionSummary, error) {
	return nil, nil
}

var _ Sink = NoopSink{}
