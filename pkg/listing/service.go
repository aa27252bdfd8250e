package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marmos91/dittolist/internal/logger"
)

const (
	// DefaultStreamingThreshold is the directory size above which the
	// streaming strategy is used. A directory of exactly this size is listed
	// in bulk.
	DefaultStreamingThreshold = 10000

	// DefaultCacheTTL is the lifetime of a cached listing.
	DefaultCacheTTL = 60 * time.Second
)

// Cache stores computed listings by key.
//
// Implementations must be safe for concurrent use. The cache package
// provides the standard implementation.
type Cache interface {
	Get(key string) (*Listing, bool)
	Set(key string, payload *Listing, ttl time.Duration)
}

// CacheKey builds the cache key for a listing request.
func CacheKey(path string, page, pageSize int) string {
	return fmt.Sprintf("dir:%s:%d:%d", path, page, pageSize)
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	// StreamingThreshold is the entry count above which a directory is
	// streamed instead of listed in bulk.
	StreamingThreshold int

	// BatchSize is the bulk lister batch size.
	BatchSize int

	// MaxPageSize bounds the page size a caller may request.
	MaxPageSize int

	// CacheTTL is the lifetime of every cache entry written.
	CacheTTL time.Duration

	// Stream configures the streaming lister. Stream.OverscanLimit is used
	// as given: 0 means "stop right after the window", negative disables.
	Stream StreamOptions
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		StreamingThreshold: DefaultStreamingThreshold,
		BatchSize:          DefaultBatchSize,
		MaxPageSize:        DefaultMaxPageSize,
		CacheTTL:           DefaultCacheTTL,
		Stream: StreamOptions{
			Timeout:       DefaultStreamTimeout,
			OverscanLimit: DefaultOverscanLimit,
			SkipMode:      SkipAbort,
		},
	}
}

// Service is the entry point of the listing engine.
//
// It validates the request, serves repeated requests from the cache, picks
// the bulk or streaming strategy by directory size, and caches what it
// computed. A Service is safe for concurrent use.
type Service struct {
	opts    Options
	cache   Cache
	bulk    *BulkLister
	stream  *StreamLister
	metrics Metrics
}

// NewService wires a Service.
//
// Parameters:
//   - resolver: builds entries for both strategies
//   - cache: result cache; nil disables caching
//   - inflight: guard shared by every streaming traversal; nil creates one
//   - opts: tuning, see Options
//   - metrics: nil means no-op
func NewService(resolver Resolver, cache Cache, inflight *InFlight, opts Options, metrics Metrics) *Service {
	if opts.StreamingThreshold <= 0 {
		opts.StreamingThreshold = DefaultStreamingThreshold
	}
	if opts.MaxPageSize <= 0 || opts.MaxPageSize > DefaultMaxPageSize {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if inflight == nil {
		inflight = NewInFlight()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Service{
		opts:    opts,
		cache:   cache,
		bulk:    NewBulkLister(resolver, opts.BatchSize, metrics),
		stream:  NewStreamLister(resolver, inflight, opts.Stream, metrics),
		metrics: metrics,
	}
}

// MaxPageSize returns the configured page size bound.
func (s *Service) MaxPageSize() int {
	return s.opts.MaxPageSize
}

// GetListing returns a listing of path.
//
// For directories at or under the streaming threshold the whole directory is
// returned unpaginated. Larger directories return the requested page, which
// may be partial (see Listing.Partial).
//
// Errors are *ListingError values. Page parameters are checked before any
// filesystem access or cache lookup.
func (s *Service) GetListing(ctx context.Context, path string, page, pageSize int) (*Listing, error) {
	if err := ValidatePageParams(page, pageSize, s.opts.MaxPageSize); err != nil {
		return nil, err
	}

	key := CacheKey(path, page, pageSize)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheHit()
			logger.Debug("Listing cache hit: %s", key)
			return cached, nil
		}
		s.metrics.RecordCacheMiss()
	}

	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	start := time.Now()
	size := s.DirectorySize(ctx, path)

	var (
		result   *Listing
		err      error
		strategy Strategy
	)
	if size > s.opts.StreamingThreshold {
		strategy = StrategyStreaming
		logger.Info("Large directory detected (%d entries): streaming %s", size, path)
		result, err = s.stream.List(ctx, path, page, pageSize)
	} else {
		strategy = StrategyBulk
		var items []*Entry
		items, err = s.bulk.List(ctx, path)
		if err == nil {
			result = &Listing{
				Path:       path,
				Items:      items,
				TotalCount: len(items),
				Strategy:   StrategyBulk,
			}
		}
	}

	s.metrics.ObserveListing(strategy, time.Since(start), err)
	if err != nil {
		logger.Debug("Listing of %s failed: %v", path, err)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, result, s.opts.CacheTTL)
	}

	return result, nil
}

// DirectorySize counts the names in path without reading their metadata.
//
// Returns 0 if the directory cannot be enumerated.
func (s *Service) DirectorySize(_ context.Context, path string) int {
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("Cannot count entries of %s: %v", path, err)
		return 0
	}
	defer func() { _ = f.Close() }()

	count := 0
	for {
		names, err := f.Readdirnames(streamChunk)
		count += len(names)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debug("Cannot count entries of %s: %v", path, err)
				return 0
			}
			return count
		}
	}
}
