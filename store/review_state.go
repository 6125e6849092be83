package store

import (
	"context"
	"time"
)

// ReviewState is the object representing the scheduling state of a card.
// A card without a review state row has never been graded.
type ReviewState struct {
	ID             int32
	CardUID        string
	CreatedTs      int64
	UpdatedTs      int64
	Repetition     int32
	IntervalDays   int32
	EaseFactor     float64
	ReviewCount    int32
	LastReviewedTs int64
	NextReviewTs   int64
}

// FindReviewState is the find condition for review state.
type FindReviewState struct {
	CardUID *string

	// DueBeforeTs filters states whose next review is at or before the
	// given unix timestamp.
	DueBeforeTs *int64

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteReviewState is the delete request for review state.
type DeleteReviewState struct {
	CardUID string
}

// LastReviewedTime parses the last reviewed timestamp to time.Time.
func (r *ReviewState) LastReviewedTime() time.Time {
	return time.Unix(r.LastReviewedTs, 0)
}

// NextReviewTime parses the next review timestamp to time.Time.
func (r *ReviewState) NextReviewTime() time.Time {
	return time.Unix(r.NextReviewTs, 0)
}

// IsDueAt reports whether the state is due at the given unix timestamp.
func (r *ReviewState) IsDueAt(ts int64) bool {
	return r.NextReviewTs <= ts
}

// UpsertReviewState creates or replaces the review state of a card.
func (s *Store) UpsertReviewState(ctx context.Context, upsert *ReviewState) (*ReviewState, error) {
	state, err := s.driver.UpsertReviewState(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.reviewStateCache.Set(ctx, state.CardUID, state)
	return state, nil
}

// ListReviewStates lists review states with filter, ordered by next review time.
func (s *Store) ListReviewStates(ctx context.Context, find *FindReviewState) ([]*ReviewState, error) {
	return s.driver.ListReviewStates(ctx, find)
}

// GetReviewState gets the review state of a card, or nil when the card has
// never been reviewed.
func (s *Store) GetReviewState(ctx context.Context, find *FindReviewState) (*ReviewState, error) {
	if find.CardUID != nil && find.DueBeforeTs == nil {
		if value, ok := s.reviewStateCache.Get(ctx, *find.CardUID); ok {
			if state, ok := value.(*ReviewState); ok {
				return state, nil
			}
		}
	}

	list, err := s.driver.ListReviewStates(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	state := list[0]
	s.reviewStateCache.Set(ctx, state.CardUID, state)
	return state, nil
}

// DeleteReviewState deletes the review state of a card, resetting its
// scheduling progress.
func (s *Store) DeleteReviewState(ctx context.Context, delete *DeleteReviewState) error {
	if err := s.driver.DeleteReviewState(ctx, delete); err != nil {
		return err
	}
	s.reviewStateCache.Delete(ctx, delete.CardUID)
	return nil
}
