package listing

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a minimal TTL cache for exercising the Service.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]mapCacheEntry
	sets    int
}

type mapCacheEntry struct {
	payload *Listing
	expires time.Time
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]mapCacheEntry{}}
}

func (c *mapCache) Get(key string) (*Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.payload, true
}

func (c *mapCache) Set(key string, payload *Listing, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = mapCacheEntry{payload: payload, expires: time.Now().Add(ttl)}
}

func TestService_SmallDirectoryIsBulk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c"), 0o755))

	svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

	result, err := svc.GetListing(context.Background(), dir, 1, 1000)
	require.NoError(t, err)

	assert.Equal(t, dir, result.Path)
	assert.Equal(t, StrategyBulk, result.Strategy)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 3, result.TotalCount)
	assert.Zero(t, result.Page)
	assert.Zero(t, result.PageSize)
	assert.Zero(t, result.TotalPages)
	assert.False(t, result.Partial)

	byName := map[string]*Entry{}
	for _, e := range result.Items {
		byName[e.Name] = e
	}
	assert.Equal(t, int64(3), byName["a.txt"].Size)
	assert.Equal(t, ".txt", byName["a.txt"].Extension)
	assert.Equal(t, FileTypeDirectory, byName["c"].Type)
	assert.Equal(t, DirectoryExtension, byName["c"].Extension)
}

func TestService_EmptyDirectory(t *testing.T) {
	svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

	result, err := svc.GetListing(context.Background(), t.TempDir(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalCount)
}

func TestService_ThresholdBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.StreamingThreshold = 5
	opts.Stream.OverscanLimit = -1

	atThreshold := t.TempDir()
	makeFiles(t, atThreshold, 5)
	overThreshold := t.TempDir()
	makeFiles(t, overThreshold, 6)

	svc := NewService(NewFileResolver(), nil, nil, opts, nil)

	result, err := svc.GetListing(context.Background(), atThreshold, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, StrategyBulk, result.Strategy)
	assert.Len(t, result.Items, 5, "bulk listings ignore the page window")

	result, err = svc.GetListing(context.Background(), overThreshold, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, StrategyStreaming, result.Strategy)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 6, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
}

func TestService_DefaultThresholdBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("creates 20001 files")
	}

	svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

	exact := t.TempDir()
	makeFiles(t, exact, DefaultStreamingThreshold)
	result, err := svc.GetListing(context.Background(), exact, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, StrategyBulk, result.Strategy)
	assert.Len(t, result.Items, DefaultStreamingThreshold)

	over := t.TempDir()
	makeFiles(t, over, DefaultStreamingThreshold+1)
	result, err = svc.GetListing(context.Background(), over, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, StrategyStreaming, result.Strategy)
	assert.Len(t, result.Items, 1000)
}

func TestService_LargeDirectoryPaging(t *testing.T) {
	if testing.Short() {
		t.Skip("creates 50000 files")
	}

	dir := t.TempDir()
	makeFiles(t, dir, 50000)

	t.Run("default overscan", func(t *testing.T) {
		svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

		result, err := svc.GetListing(context.Background(), dir, 1, 1000)
		require.NoError(t, err)
		assert.Len(t, result.Items, 1000)
		assert.Equal(t, 2001, result.TotalCount)
		assert.Equal(t, 3, result.TotalPages)
		assert.Equal(t, PartialOverscan, result.PartialReason)
	})

	t.Run("overscan disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Stream.OverscanLimit = -1
		svc := NewService(NewFileResolver(), nil, nil, opts, nil)

		result, err := svc.GetListing(context.Background(), dir, 1, 1000)
		require.NoError(t, err)
		assert.Len(t, result.Items, 1000)
		assert.Equal(t, 50000, result.TotalCount)
		assert.Equal(t, 50, result.TotalPages)
		assert.False(t, result.Partial)

		last, err := svc.GetListing(context.Background(), dir, 50, 1000)
		require.NoError(t, err)
		assert.Len(t, last.Items, 1000)
	})
}

func TestService_CacheHit(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 3)

	cache := newMapCache()
	metrics := &recordingMetrics{}
	svc := NewService(NewFileResolver(), cache, nil, DefaultOptions(), metrics)

	first, err := svc.GetListing(context.Background(), dir, 1, 100)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	second, err := svc.GetListing(context.Background(), dir, 1, 100)
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, []Strategy{StrategyBulk}, metrics.listings)

	// A different page key misses and hits the filesystem
	_, err = svc.GetListing(context.Background(), dir, 2, 100)
	assert.True(t, IsCode(err, ErrNotFound), "got %v", err)
}

func TestService_CacheExpiry(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 2)

	opts := DefaultOptions()
	opts.CacheTTL = 20 * time.Millisecond
	svc := NewService(NewFileResolver(), newMapCache(), nil, opts, nil)

	_, err := svc.GetListing(context.Background(), dir, 1, 10)
	require.NoError(t, err)

	makeFiles(t, dir, 4)
	time.Sleep(50 * time.Millisecond)

	result, err := svc.GetListing(context.Background(), dir, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalCount)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	cache := newMapCache()
	svc := NewService(NewFileResolver(), cache, nil, DefaultOptions(), nil)

	_, err := svc.GetListing(context.Background(), dir, 1, 10)
	assert.True(t, IsCode(err, ErrNotFound), "got %v", err)
	assert.Zero(t, cache.sets)

	require.NoError(t, os.Mkdir(dir, 0o755))

	result, err := svc.GetListing(context.Background(), dir, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
}

func TestService_InvalidPageParamsBeforeIO(t *testing.T) {
	resolver := newCountingResolver()
	cache := newMapCache()
	svc := NewService(resolver, cache, nil, DefaultOptions(), nil)

	missing := "/definitely/not/here"
	for _, tc := range []struct{ page, size int }{{0, 10}, {1, 0}, {1, DefaultMaxPageSize + 1}, {-3, 10}} {
		_, err := svc.GetListing(context.Background(), missing, tc.page, tc.size)
		assert.True(t, IsCode(err, ErrInvalidPageParams), "page=%d size=%d: got %v", tc.page, tc.size, err)
	}
	assert.Zero(t, resolver.calls.Load())
	assert.Zero(t, cache.sets)
}

func TestService_PathErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

	_, err := svc.GetListing(context.Background(), "relative/path", 1, 10)
	assert.True(t, IsCode(err, ErrNotAbsolutePath), "got %v", err)

	_, err = svc.GetListing(context.Background(), file, 1, 10)
	assert.True(t, IsCode(err, ErrNotADirectory), "got %v", err)

	_, err = svc.GetListing(context.Background(), filepath.Join(dir, "none"), 1, 10)
	assert.True(t, IsCode(err, ErrNotFound), "got %v", err)
}

func TestService_StreamingConflictSurfaces(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 3)

	opts := DefaultOptions()
	opts.StreamingThreshold = 1
	inflight := NewInFlight()
	require.True(t, inflight.TryAcquire(dir))

	svc := NewService(NewFileResolver(), newMapCache(), inflight, opts, nil)

	_, err := svc.GetListing(context.Background(), dir, 1, 10)
	assert.True(t, IsRetryable(err), "got %v", err)

	inflight.Release(dir)
	result, err := svc.GetListing(context.Background(), dir, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, StrategyStreaming, result.Strategy)
}

func TestService_DirectorySize(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 700)

	svc := NewService(NewFileResolver(), nil, nil, DefaultOptions(), nil)

	assert.Equal(t, 700, svc.DirectorySize(context.Background(), dir))
	assert.Zero(t, svc.DirectorySize(context.Background(), filepath.Join(dir, "missing")))
	assert.Zero(t, svc.DirectorySize(context.Background(), filepath.Join(dir, "f000001.txt")))
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(NewFileResolver(), nil, nil, Options{}, nil)

	assert.Equal(t, DefaultMaxPageSize, svc.MaxPageSize())
	assert.Equal(t, DefaultStreamingThreshold, svc.opts.StreamingThreshold)
	assert.Equal(t, DefaultCacheTTL, svc.opts.CacheTTL)
}

func TestNewService_MaxPageSizeCeiling(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPageSize = 10000
	svc := NewService(NewFileResolver(), nil, nil, opts, nil)

	assert.Equal(t, DefaultMaxPageSize, svc.MaxPageSize())
	_, err := svc.GetListing(context.Background(), t.TempDir(), 1, DefaultMaxPageSize+1)
	assert.True(t, IsCode(err, ErrInvalidPageParams), "got %v", err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "dir:/srv/data:2:500", CacheKey("/srv/data", 2, 500))
}
