package store

import (
	"context"
)

// Card is the object representing a theorem card.
// A card carries three faces: the statement shown at review time,
// the proof the reviewer must reproduce, and optional hints in between.
type Card struct {
	ID        int32
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64
	Deck      string
	Statement string
	Proof     string
	// Hints is a JSON array of progressive hint strings.
	Hints *string
	// Tags is a JSON array of free-form labels.
	Tags *string
}

// FindCard is the find condition for card.
type FindCard struct {
	ID        *int32
	UID       *string
	Deck      *string
	RowStatus *RowStatus

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateCard is the update request for card.
type UpdateCard struct {
	ID        int32
	UpdatedTs *int64
	RowStatus *RowStatus
	Deck      *string
	Statement *string
	Proof     *string
	Hints     *string
	Tags      *string
}

// DeleteCard is the delete request for card.
type DeleteCard struct {
	ID int32
}

// CreateCard creates a new card.
func (s *Store) CreateCard(ctx context.Context, create *Card) (*Card, error) {
	card, err := s.driver.CreateCard(ctx, create)
	if err != nil {
		return nil, err
	}
	s.cardCache.Set(ctx, card.UID, card)
	return card, nil
}

// ListCards lists cards with filter.
func (s *Store) ListCards(ctx context.Context, find *FindCard) ([]*Card, error) {
	return s.driver.ListCards(ctx, find)
}

// GetCard gets a card with filter, or nil when no card matches.
func (s *Store) GetCard(ctx context.Context, find *FindCard) (*Card, error) {
	if find.UID != nil && find.ID == nil && find.Deck == nil && find.RowStatus == nil {
		if value, ok := s.cardCache.Get(ctx, *find.UID); ok {
			if card, ok := value.(*Card); ok {
				return card, nil
			}
		}
	}

	list, err := s.driver.ListCards(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	card := list[0]
	s.cardCache.Set(ctx, card.UID, card)
	return card, nil
}

// UpdateCard updates a card.
func (s *Store) UpdateCard(ctx context.Context, update *UpdateCard) (*Card, error) {
	card, err := s.driver.UpdateCard(ctx, update)
	if err != nil {
		return nil, err
	}
	s.cardCache.Set(ctx, card.UID, card)
	return card, nil
}

// DeleteCard deletes a card and its review state.
func (s *Store) DeleteCard(ctx context.Context, delete *DeleteCard) error {
	card, err := s.GetCard(ctx, &FindCard{ID: &delete.ID})
	if err != nil {
		return err
	}
	if err := s.driver.DeleteCard(ctx, delete); err != nil {
		return err
	}
	if card != nil {
		s.cardCache.Delete(ctx, card.UID)
		s.reviewStateCache.Delete(ctx, card.UID)
	}
	return nil
}
