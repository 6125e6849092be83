package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Card model related methods.
	CreateCard(ctx context.Context, create *Card) (*Card, error)
	ListCards(ctx context.Context, find *FindCard) ([]*Card, error)
	UpdateCard(ctx context.Context, update *UpdateCard) (*Card, error)
	DeleteCard(ctx context.Context, delete *DeleteCard) error

	// ReviewState model related methods.
	UpsertReviewState(ctx context.Context, upsert *ReviewState) (*ReviewState, error)
	ListReviewStates(ctx context.Context, find *FindReviewState) ([]*ReviewState, error)
	DeleteReviewState(ctx context.Context, delete *DeleteReviewState) error

	// StudySession model related methods.
	CreateStudySession(ctx context.Context, create *StudySession) (*StudySession, error)
	ListStudySessions(ctx context.Context, find *FindStudySession) ([]*StudySession, error)
	DeleteStudySession(ctx context.Context, delete *DeleteStudySession) error

	// SystemSetting model related methods.
	UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error)
	ListSystemSettings(ctx context.Context) ([]*SystemSetting, error)
}
