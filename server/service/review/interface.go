package review

import (
	"context"
	"time"

	"github.com/amirb101/proofdeck/server/stats"
)

// Service is the business logic interface for the review workflow. It sits
// between the HTTP layer and the store, owning queue construction, grade
// submission and card management.
type Service interface {
	// GetQueue returns the ordered review queue with its progress breakdown.
	GetQueue(ctx context.Context, req *QueueRequest) (*QueueSnapshot, error)

	// SubmitReview grades one card and persists the rescheduled state.
	SubmitReview(ctx context.Context, cardUID string, quality int) (*ReviewResult, error)

	// GetBreakdown classifies active cards by study progress.
	GetBreakdown(ctx context.Context, deck string) (stats.Breakdown, error)

	// RescheduleAll heals persisted scheduling rows that drifted from
	// scheduler invariants and returns the number of rows rewritten.
	RescheduleAll(ctx context.Context) (int, error)

	// CreateCard adds a theorem card. New cards are due immediately.
	CreateCard(ctx context.Context, create *CreateCardRequest) (*Card, error)

	// GetCard returns one card joined with its scheduling state.
	GetCard(ctx context.Context, uid string) (*Card, error)

	// ListCards returns cards, optionally narrowed by deck and by a CEL
	// filter expression.
	ListCards(ctx context.Context, req *ListCardsRequest) ([]*Card, error)

	// UpdateCard applies a partial update to a card's faces and labels.
	UpdateCard(ctx context.Context, uid string, update *UpdateCardRequest) (*Card, error)

	// ArchiveCard removes a card from scheduling without deleting it.
	ArchiveCard(ctx context.Context, uid string) (*Card, error)

	// RestoreCard returns an archived card to scheduling.
	RestoreCard(ctx context.Context, uid string) (*Card, error)

	// ResetCard erases a card's scheduling progress, making it new again.
	ResetCard(ctx context.Context, uid string) (*Card, error)

	// DeleteCard removes a card and its scheduling state.
	DeleteCard(ctx context.Context, uid string) error
}

// Card is the service view of a theorem card joined with its scheduling
// state. Cards that have never been graded carry the seed schedule: zero
// repetitions, default ease factor, due immediately.
type Card struct {
	UID       string    `json:"uid"`
	Deck      string    `json:"deck"`
	Statement string    `json:"statement"`
	Proof     string    `json:"proof"`
	Hints     []string  `json:"hints,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Snippet   string    `json:"snippet"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Schedule  Schedule  `json:"schedule"`
}

// Schedule is a card's spaced repetition state as exposed to clients.
type Schedule struct {
	Repetition   int        `json:"repetition"`
	IntervalDays int        `json:"interval_days"`
	EaseFactor   float64    `json:"ease_factor"`
	ReviewCount  int        `json:"review_count"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   time.Time  `json:"next_review"`
	Due          bool       `json:"due"`
}

// QueueRequest narrows the review queue.
type QueueRequest struct {
	// Deck limits the queue to one deck. Empty means all decks.
	Deck string
	// DueOnly drops cards that are not yet due.
	DueOnly bool
	// Limit caps the number of returned cards. Zero means no cap.
	Limit int
}

// QueueSnapshot is the review queue ordered ascending by next review time,
// together with the progress breakdown of the full working set. The
// breakdown always covers every matched card, even when Limit or DueOnly
// trims the returned list.
type QueueSnapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Cards       []*Card         `json:"cards"`
	Breakdown   stats.Breakdown `json:"breakdown"`
}

// ReviewResult reports the scheduling outcome of one graded answer.
type ReviewResult struct {
	CardUID  string   `json:"card_uid"`
	Quality  int      `json:"quality"`
	Lapsed   bool     `json:"lapsed"`
	Schedule Schedule `json:"schedule"`
}

// CreateCardRequest is the request to create a card.
type CreateCardRequest struct {
	Deck      string
	Statement string
	Proof     string
	Hints     []string
	Tags      []string
}

// UpdateCardRequest is the partial update request for a card. Nil fields
// are left unchanged; an empty Hints or Tags slice clears the labels.
type UpdateCardRequest struct {
	Deck      *string
	Statement *string
	Proof     *string
	Hints     []string
	Tags      []string
}

// ListCardsRequest narrows a card listing.
type ListCardsRequest struct {
	// Deck limits the listing to one deck. Empty means all decks.
	Deck string
	// Filter is a CEL expression over card attributes. Empty means no
	// filtering.
	Filter string
	// IncludeArchived adds archived cards to the listing.
	IncludeArchived bool

	// Pagination, applied after filtering.
	Limit  int
	Offset int
}
