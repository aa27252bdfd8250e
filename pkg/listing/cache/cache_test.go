package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(maxEntries int) (*ResultCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(maxEntries)
	c.now = clock.Now
	return c, clock
}

func listingFor(path string) *listing.Listing {
	return &listing.Listing{Path: path, TotalCount: 1}
}

func TestResultCache_GetSet(t *testing.T) {
	c, _ := newTestCache(10)

	_, ok := c.Get("dir:/a:1:100")
	assert.False(t, ok)

	payload := listingFor("/a")
	c.Set("dir:/a:1:100", payload, time.Minute)

	got, ok := c.Get("dir:/a:1:100")
	require.True(t, ok)
	assert.Same(t, payload, got)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_TTL(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("k", listingFor("/a"), 60*time.Second)

	clock.Advance(60 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "an entry is valid up to its TTL")

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entries are removed on read")
}

func TestResultCache_PerEntryTTL(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("short", listingFor("/s"), time.Second)
	c.Set("long", listingFor("/l"), time.Hour)

	clock.Advance(2 * time.Second)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
}

func TestResultCache_FIFOEviction(t *testing.T) {
	c, _ := newTestCache(3)
	for i := 1; i <= 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), listingFor("/x"), time.Minute)
	}

	// Reads do not protect an entry
	_, ok := c.Get("k1")
	require.True(t, ok)

	c.Set("k4", listingFor("/x"), time.Minute)

	assert.Equal(t, 3, c.Len())
	_, ok = c.Get("k1")
	assert.False(t, ok, "oldest inserted key is evicted first")
	for _, k := range []string{"k2", "k3", "k4"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
}

func TestResultCache_OverwriteBecomesNewest(t *testing.T) {
	c, _ := newTestCache(3)
	c.Set("k1", listingFor("/old"), time.Minute)
	c.Set("k2", listingFor("/x"), time.Minute)
	c.Set("k3", listingFor("/x"), time.Minute)

	replacement := listingFor("/new")
	c.Set("k1", replacement, time.Minute)
	assert.Equal(t, 3, c.Len())

	c.Set("k4", listingFor("/x"), time.Minute)

	got, ok := c.Get("k1")
	require.True(t, ok, "overwritten key moved to the back of the queue")
	assert.Same(t, replacement, got)

	_, ok = c.Get("k2")
	assert.False(t, ok)
}

func TestResultCache_OverwriteResetsTTL(t *testing.T) {
	c, clock := newTestCache(10)
	c.Set("k", listingFor("/a"), 10*time.Second)

	clock.Advance(8 * time.Second)
	c.Set("k", listingFor("/a"), 10*time.Second)
	clock.Advance(8 * time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestResultCache_Clear(t *testing.T) {
	c, _ := newTestCache(10)
	c.Set("a", listingFor("/a"), time.Minute)
	c.Set("b", listingFor("/b"), time.Minute)

	c.Clear()
	assert.Zero(t, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("c", listingFor("/c"), time.Minute)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultMaxEntries, New(0).maxEntries)
	assert.Equal(t, DefaultMaxEntries, New(-5).maxEntries)
}

func TestResultCache_Concurrent(t *testing.T) {
	c := New(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Set(key, listingFor("/x"), time.Minute)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestResultCache_ImplementsListingCache(t *testing.T) {
	var _ listing.Cache = New(1)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60*time.Second, cfg.TTL)
	assert.Equal(t, 1000, cfg.MaxEntries)
}
