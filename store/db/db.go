package db

import (
	"github.com/pkg/errors"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/store"
	"github.com/amirb101/proofdeck/store/db/postgres"
	"github.com/amirb101/proofdeck/store/db/sqlite"
)

// Only PostgreSQL and SQLite are supported.
//
// SQLite is the default for personal, single-machine decks.
// PostgreSQL is for deployments that want a managed database.
// MySQL is not supported.

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
