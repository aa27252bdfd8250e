// Package cache provides the result cache for directory listings.
//
// Listings are cached per key (see listing.CacheKey) so that clients paging
// back and forth through a large directory, or refreshing the same view, do
// not trigger a new traversal every time. ResultCache implements
// listing.Cache.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/listing"
)

const (
	// DefaultMaxEntries is the default capacity of a ResultCache.
	DefaultMaxEntries = 1000

	// DefaultTTL is the default lifetime of a cached listing.
	DefaultTTL = 60 * time.Second
)

// ResultCache is a fixed-capacity cache of listings with a per-entry TTL.
//
// Cache Strategy:
//   - Insertion-order (FIFO) eviction when full: the oldest inserted key goes
//     first, reads do not protect an entry
//   - Per-entry TTL, checked lazily on Get; an expired entry is removed
//   - Overwriting a key replaces the entry and makes it the newest
//
// Thread Safety:
// All operations are protected by a mutex.
type ResultCache struct {
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   *list.List
}

// cacheEntry is one cached listing.
type cacheEntry struct {
	key       string
	payload   *listing.Listing
	createdAt time.Time
	ttl       time.Duration
	node      *list.Element
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Config holds configuration for the result cache.
type Config struct {
	// Enabled controls whether caching is active
	Enabled bool `mapstructure:"enabled"`

	// TTL is how long a cached listing stays valid
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`

	// MaxEntries bounds the number of cached keys
	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		TTL:        DefaultTTL,
		MaxEntries: DefaultMaxEntries,
	}
}

// New creates an empty cache holding at most maxEntries keys. A non-positive
// maxEntries means DefaultMaxEntries.
func New(maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResultCache{
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]*cacheEntry),
		order:      list.New(),
	}
}

// Get returns the cached listing for key.
//
// Returns false if the key is absent or expired; an expired entry is removed.
func (c *ResultCache) Get(key string) (*listing.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if entry.expired(c.now()) {
		c.remove(entry)
		logger.Debug("Expired listing cache entry: %s", key)
		return nil, false
	}

	return entry.payload, true
}

// Set stores payload under key for ttl.
func (c *ResultCache) Set(key string, payload *listing.Listing, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.remove(existing)
	}

	for len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	entry := &cacheEntry{
		key:       key,
		payload:   payload,
		createdAt: c.now(),
		ttl:       ttl,
	}
	entry.node = c.order.PushBack(entry)
	c.entries[key] = entry
}

// evictOldest removes the first inserted entry.
// Must be called with c.mu held.
func (c *ResultCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*cacheEntry)
	c.remove(entry)

	logger.Debug("Evicted listing cache entry: %s", entry.key)
}

// remove deletes entry from both the map and the insertion list.
// Must be called with c.mu held.
func (c *ResultCache) remove(entry *cacheEntry) {
	c.order.Remove(entry.node)
	delete(c.entries, entry.key)
}

// Clear removes all cached entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = list.New()

	logger.Debug("Cleared listing cache")
}

// Len returns the number of stored entries, expired ones included until
// they are read.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
