// Package stats classifies review state snapshots into study-progress
// counts and collects instance-wide study statistics. The classification is
// deliberately independent of queue ordering and mutation so it can be
// tested and reused on its own.
package stats

import (
	"time"

	"github.com/amirb101/proofdeck/server/scheduler/sm2"
)

// ReviewingThreshold is the review count at which a card graduates from
// learning to reviewing.
const ReviewingThreshold = 5

// Breakdown partitions a snapshot by study progress. New, Learning and
// Reviewing always sum to Total. Due is an overlay, not part of the
// partition: it counts cards whose next review is at or before the
// classification time.
type Breakdown struct {
	Total     int `json:"total"`
	Due       int `json:"due"`
	New       int `json:"new"`
	Learning  int `json:"learning"`
	Reviewing int `json:"reviewing"`
}

// Classify computes the breakdown of states at the given time. An empty
// snapshot yields all zeros.
func Classify(states []sm2.ReviewState, now time.Time) Breakdown {
	b := Breakdown{Total: len(states)}
	for _, s := range states {
		if s.IsDue(now) {
			b.Due++
		}
		switch {
		case s.ReviewCount == 0:
			b.New++
		case s.ReviewCount < ReviewingThreshold:
			b.Learning++
		default:
			b.Reviewing++
		}
	}
	return b
}
