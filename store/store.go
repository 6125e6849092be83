package store

import (
	"time"

	"github.com/amirb101/proofdeck/internal/profile"
	"github.com/amirb101/proofdeck/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	cardCache        *cache.Cache // cache for cards by uid
	reviewStateCache *cache.Cache // cache for review states by card uid
	settingCache     *cache.Cache // cache for system settings
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:           driver,
		profile:          profile,
		cacheConfig:      cacheConfig,
		cardCache:        cache.New(cacheConfig),
		reviewStateCache: cache.New(cacheConfig),
		settingCache:     cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.cardCache.Close()
	s.reviewStateCache.Close()
	s.settingCache.Close()

	return s.driver.Close()
}
