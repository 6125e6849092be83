// Package sm2 implements the modified SM-2 spaced repetition algorithm
// that schedules card reviews. Update is a pure function over value-typed
// state, so callers can reschedule distinct cards concurrently.
package sm2

import (
	"math"
	"time"
)

// ReviewState is the scheduling state of a single card.
type ReviewState struct {
	CardUID      string    `json:"card_uid"`
	Repetition   int       `json:"repetition"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewCount  int       `json:"review_count"`
	LastReviewed time.Time `json:"last_reviewed"`
	NextReview   time.Time `json:"next_review"`
}

// Quality is the learner's self-assessed recall quality for one answer.
type Quality int

const (
	// QualityBlackout - no recall at all.
	QualityBlackout Quality = 1
	// QualityIncorrect - wrong, but the answer looked familiar.
	QualityIncorrect Quality = 2
	// QualityDifficult - correct with serious effort.
	QualityDifficult Quality = 3
	// QualityHesitant - correct after some hesitation.
	QualityHesitant Quality = 4
	// QualityPerfect - instant recall.
	QualityPerfect Quality = 5
)

// MinQuality and MaxQuality bound the accepted rating scale.
const (
	MinQuality = QualityBlackout
	MaxQuality = QualityPerfect
)

// DefaultEaseFactor is the initial ease factor for cards that have never
// been reviewed.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which the ease factor never drops,
// no matter how many consecutive lapses occur.
const MinEaseFactor = 1.3

// IsValid reports whether q is on the accepted 1..5 scale. Update assumes
// validated input; callers reject invalid ratings at their own boundary.
func (q Quality) IsValid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// IsLapse reports whether q counts as a forgotten card (quality below 3).
func (q Quality) IsLapse() bool {
	return q < QualityDifficult
}

func (q Quality) String() string {
	switch q {
	case QualityBlackout:
		return "blackout"
	case QualityIncorrect:
		return "incorrect"
	case QualityDifficult:
		return "difficult"
	case QualityHesitant:
		return "hesitant"
	case QualityPerfect:
		return "perfect"
	}
	return "invalid"
}

// NewState returns the seed state for a card entering the queue for the
// first time: never reviewed, due immediately.
func NewState(cardUID string, now time.Time) ReviewState {
	return ReviewState{
		CardUID:    cardUID,
		EaseFactor: DefaultEaseFactor,
		NextReview: now,
	}
}

// IsDue reports whether the card should be shown at the given time.
func (s ReviewState) IsDue(now time.Time) bool {
	return !s.NextReview.After(now)
}

// Update applies one review to state and returns the resulting state. The
// input is not mutated.
//
// A lapse (quality 1-2) resets repetition and schedules the card for
// tomorrow; the ease factor is left untouched. A success grows the interval
// through the 1, 6, round(interval*EF) progression and adjusts the ease
// factor, rounded to two decimals and floored at MinEaseFactor.
//
// Repetition and interval advance on every call, not once per calendar
// day: a card answered twice in the same day progresses twice.
func Update(state ReviewState, quality Quality, now time.Time) ReviewState {
	next := state

	if quality.IsLapse() {
		next.Repetition = 0
		next.IntervalDays = 1
	} else {
		switch next.Repetition {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(next.IntervalDays) * next.EaseFactor))
		}
		next.Repetition++

		miss := float64(MaxQuality - quality)
		delta := 0.1 - miss*(0.08+miss*0.02)
		next.EaseFactor = math.Max(MinEaseFactor, round2(next.EaseFactor+delta))
	}

	next.ReviewCount++
	next.LastReviewed = now
	next.NextReview = now.AddDate(0, 0, next.IntervalDays)
	return next
}

// round2 rounds to exactly two decimal places. Applying it on every update
// keeps long-run ease factors free of floating point drift.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
