package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the configuration for a Cache.
type Config struct {
	// DefaultTTL is the expiry applied by Set. Zero means entries never expire.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept.
	// Zero disables the background sweeper; expired entries are then only
	// dropped lazily on access.
	CleanupInterval time.Duration
	// MaxItems caps the number of entries. Zero means unbounded.
	MaxItems int
	// OnEviction, when non-nil, is called for entries removed by expiry or
	// capacity pressure. It is not called for explicit Delete or Clear.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (i *item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache is an in-memory TTL cache safe for concurrent use.
type Cache struct {
	config Config
	data   sync.Map
	size   atomic.Int64

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a new cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get returns the value stored under key, if present and not expired.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	it := value.(*item)
	if it.expired(time.Now()) {
		c.removeItem(key, it)
		return nil, false
	}
	return it.value, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value under key with a custom TTL.
// A non-positive ttl stores the value without expiry.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	now := time.Now()
	it := &item{value: value}
	if ttl > 0 {
		it.expiresAt = now.Add(ttl)
	}

	if c.config.MaxItems > 0 {
		if _, exists := c.data.Load(key); !exists && c.size.Load() >= int64(c.config.MaxItems) {
			c.evictOne(now)
		}
	}

	if _, loaded := c.data.Swap(key, it); !loaded {
		c.size.Add(1)
	}
}

// Delete removes the value stored under key.
func (c *Cache) Delete(_ context.Context, key string) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
	}
}

// Clear removes all entries.
func (c *Cache) Clear(_ context.Context) {
	c.data.Range(func(key, _ any) bool {
		if _, loaded := c.data.LoadAndDelete(key); loaded {
			c.size.Add(-1)
		}
		return true
	})
}

// Size returns the number of entries, counting not-yet-swept expired ones.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Close stops the cleanup goroutine. The cache stays usable afterwards.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	return nil
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired(time.Now())
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) removeExpired(now time.Time) {
	c.data.Range(func(key, value any) bool {
		if it := value.(*item); it.expired(now) {
			c.removeItem(key.(string), it)
		}
		return true
	})
}

// evictOne removes one entry to make room, preferring an expired one.
// With no expired entry, an arbitrary entry is dropped.
func (c *Cache) evictOne(now time.Time) {
	var victimKey string
	var victim *item
	c.data.Range(func(key, value any) bool {
		victimKey = key.(string)
		victim = value.(*item)
		// Stop at the first expired entry; otherwise the last visited
		// entry becomes the victim.
		return !victim.expired(now)
	})
	if victim != nil {
		c.removeItem(victimKey, victim)
	}
}

func (c *Cache) removeItem(key string, it *item) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
	}
}
