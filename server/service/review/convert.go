package review

import (
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/amirb101/proofdeck/server/scheduler/queue"
	"github.com/amirb101/proofdeck/server/scheduler/sm2"
	"github.com/amirb101/proofdeck/store"
)

// normalizeDeck maps free-form deck names onto the canonical slug form used
// as the grouping key: trimmed, lower-cased, spaces collapsed to hyphens.
func normalizeDeck(deck string) string {
	deck = strings.ToLower(strings.TrimSpace(deck))
	return strings.Join(strings.Fields(deck), "-")
}

// rawCard converts a persisted scheduling row to the queue's seed input.
// A missing row leaves every field nil, so the card seeds as never
// reviewed and due immediately.
func rawCard(uid string, row *store.ReviewState) queue.RawCard {
	raw := queue.RawCard{CardUID: uid}
	if row == nil {
		return raw
	}

	repetition := int(row.Repetition)
	interval := int(row.IntervalDays)
	ease := row.EaseFactor
	count := int(row.ReviewCount)
	nextReview := row.NextReviewTime()
	raw.Repetition = &repetition
	raw.IntervalDays = &interval
	raw.EaseFactor = &ease
	raw.ReviewCount = &count
	raw.NextReview = &nextReview
	if row.LastReviewedTs > 0 {
		lastReviewed := row.LastReviewedTime()
		raw.LastReviewed = &lastReviewed
	}
	return raw
}

// seededState loads the scheduler state for a card, going through the queue
// seeding path so default semantics live in exactly one place.
func seededState(uid string, row *store.ReviewState, now time.Time) sm2.ReviewState {
	return queue.Seed([]queue.RawCard{rawCard(uid, row)}, now).States()[0]
}

// rowFromState converts scheduler output back to its persisted form.
func rowFromState(state sm2.ReviewState) *store.ReviewState {
	return &store.ReviewState{
		CardUID:        state.CardUID,
		Repetition:     int32(state.Repetition),
		IntervalDays:   int32(state.IntervalDays),
		EaseFactor:     state.EaseFactor,
		ReviewCount:    int32(state.ReviewCount),
		LastReviewedTs: state.LastReviewed.Unix(),
		NextReviewTs:   state.NextReview.Unix(),
	}
}

func scheduleFromState(state sm2.ReviewState, now time.Time) Schedule {
	sched := Schedule{
		Repetition:   state.Repetition,
		IntervalDays: state.IntervalDays,
		EaseFactor:   state.EaseFactor,
		ReviewCount:  state.ReviewCount,
		NextReview:   state.NextReview,
		Due:          state.IsDue(now),
	}
	if !state.LastReviewed.IsZero() {
		lastReviewed := state.LastReviewed
		sched.LastReviewed = &lastReviewed
	}
	return sched
}

// normalizeRow clamps a persisted row back onto scheduler invariants. The
// returned flag reports whether anything changed. Rows written by
// SubmitReview always come back unchanged, so a reschedule pass over a
// healthy database rewrites nothing.
func normalizeRow(row *store.ReviewState) (*store.ReviewState, bool) {
	healed := *row
	changed := false

	ease := math.Max(sm2.MinEaseFactor, math.Round(row.EaseFactor*100)/100)
	if ease != row.EaseFactor {
		healed.EaseFactor = ease
		changed = true
	}
	if row.IntervalDays < 0 {
		healed.IntervalDays = 0
		changed = true
	}
	if row.LastReviewedTs > 0 {
		next := time.Unix(row.LastReviewedTs, 0).AddDate(0, 0, int(healed.IntervalDays)).Unix()
		if next != row.NextReviewTs {
			healed.NextReviewTs = next
			changed = true
		}
	}
	return &healed, changed
}

// encodeStringList marshals labels to their JSON column form. A nil list
// maps to a missing column value; an empty list encodes as "[]".
func encodeStringList(values []string) *string {
	if values == nil {
		return nil
	}
	raw, _ := json.Marshal(values)
	encoded := string(raw)
	return &encoded
}

// decodeStringList parses a JSON array column. Malformed rows decode to nil
// rather than failing the whole read.
func decodeStringList(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		slog.Warn("malformed label column", "error", err)
		return nil
	}
	return values
}
