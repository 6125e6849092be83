package test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/internal/version"
	"github.com/amirb101/proofdeck/store"
	"github.com/amirb101/proofdeck/store/db"
)

// NewTestingStore returns a migrated sqlite-backed store rooted in a
// per-test temp directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	return newStoreWithMode(ctx, t, "prod")
}

// NewTestingDemoStore is like NewTestingStore but runs the demo seed.
func NewTestingDemoStore(ctx context.Context, t *testing.T) *store.Store {
	return newStoreWithMode(ctx, t, "demo")
}

func newStoreWithMode(ctx context.Context, t *testing.T, mode string) *store.Store {
	profile := getTestingProfile(t, mode)
	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	testStore := store.New(dbDriver, profile)
	if err := testStore.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if err := testStore.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return testStore
}

func getTestingProfile(t *testing.T, mode string) *profile.Profile {
	dir := t.TempDir()
	return &profile.Profile{
		Mode:    mode,
		Data:    dir,
		DSN:     filepath.Join(dir, fmt.Sprintf("proofdeck_%s.db", mode)),
		Driver:  "sqlite",
		Version: version.GetCurrentVersion(mode),
	}
}
