// Package queue maintains the working set of card review states, ordered
// ascending by next review time.
package queue

import (
	"sort"
	"time"

	"github.com/amirb101/proofdeck/server/scheduler/sm2"
	"github.com/amirb101/proofdeck/server/stats"
)

// RawCard carries a card's identity plus whatever scheduling fields the
// card source already had. Nil fields are seeded with defaults; present
// fields pass through untouched.
type RawCard struct {
	CardUID      string
	Repetition   *int
	IntervalDays *int
	EaseFactor   *float64
	ReviewCount  *int
	LastReviewed *time.Time
	NextReview   *time.Time
}

// Queue is the ordered working set. It is owned by one logical caller at a
// time and is not safe for concurrent use.
type Queue struct {
	states []sm2.ReviewState
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Seed builds a queue from raw cards, defaulting missing scheduling fields
// (never reviewed, due immediately) and sorting ascending by next review.
// An empty input yields an empty queue, not an error.
func Seed(cards []RawCard, now time.Time) *Queue {
	q := &Queue{states: make([]sm2.ReviewState, 0, len(cards))}
	for _, card := range cards {
		q.states = append(q.states, seedState(card, now))
	}
	q.Reorder()
	return q
}

func seedState(card RawCard, now time.Time) sm2.ReviewState {
	state := sm2.NewState(card.CardUID, now)
	if card.Repetition != nil {
		state.Repetition = *card.Repetition
	}
	if card.IntervalDays != nil {
		state.IntervalDays = *card.IntervalDays
	}
	if card.EaseFactor != nil {
		state.EaseFactor = *card.EaseFactor
	}
	if card.ReviewCount != nil {
		state.ReviewCount = *card.ReviewCount
	}
	if card.LastReviewed != nil {
		state.LastReviewed = *card.LastReviewed
	}
	if card.NextReview != nil {
		state.NextReview = *card.NextReview
	}
	return state
}

// Len returns the number of cards in the queue.
func (q *Queue) Len() int {
	return len(q.states)
}

// States returns a copy of the queue contents in current order.
func (q *Queue) States() []sm2.ReviewState {
	out := make([]sm2.ReviewState, len(q.states))
	copy(out, q.states)
	return out
}

// Reorder re-sorts the queue ascending by next review time. The sort is
// stable: cards sharing a next review time keep their prior relative order.
func (q *Queue) Reorder() {
	sort.SliceStable(q.states, func(i, j int) bool {
		return q.states[i].NextReview.Before(q.states[j].NextReview)
	})
}

// Next returns the first due card, if any. With the queue ordered
// ascending, a head that is not due means nothing is.
func (q *Queue) Next(now time.Time) (sm2.ReviewState, bool) {
	if len(q.states) == 0 || !q.states[0].IsDue(now) {
		return sm2.ReviewState{}, false
	}
	return q.states[0], true
}

// Due returns all due cards in queue order.
func (q *Queue) Due(now time.Time) []sm2.ReviewState {
	var out []sm2.ReviewState
	for _, s := range q.states {
		if !s.IsDue(now) {
			break
		}
		out = append(out, s)
	}
	return out
}

// Put replaces the state of the card with the same UID, or appends the
// state if the card is not yet in the queue, then reorders.
func (q *Queue) Put(state sm2.ReviewState) {
	replaced := false
	for i := range q.states {
		if q.states[i].CardUID == state.CardUID {
			q.states[i] = state
			replaced = true
			break
		}
	}
	if !replaced {
		q.states = append(q.states, state)
	}
	q.Reorder()
}

// Classify returns the study-progress breakdown of the current contents.
func (q *Queue) Classify(now time.Time) stats.Breakdown {
	return stats.Classify(q.states, now)
}
