package listing

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/marmos91/dittolist/internal/logger"
)

const (
	// DefaultStreamTimeout bounds the wall-clock time of one streaming scan.
	DefaultStreamTimeout = 60 * time.Second

	// DefaultOverscanLimit is how many names past the end of the requested
	// window are counted before the scan is aborted.
	DefaultOverscanLimit = 1000
)

// StreamOptions configures a StreamLister.
type StreamOptions struct {
	// Timeout bounds one scan. Zero means DefaultStreamTimeout.
	Timeout time.Duration

	// OverscanLimit is the number of names counted past the window end before
	// the scan aborts. Negative disables the abort, so the scan always counts
	// to the end of the directory.
	OverscanLimit int

	// SkipMode selects what happens on a skip-policy match. Empty means
	// SkipAbort.
	SkipMode SkipMode
}

// StreamLister lists one page of a large directory without materializing it.
//
// Names are pulled one at a time from an open directory stream. Only names
// inside the page window are resolved, and no further name is pulled while a
// resolution is pending. The scan ends at the end of the directory, on a
// skip-policy match (SkipAbort), after OverscanLimit names past the window,
// or when Timeout fires. All but the first are partial successes.
//
// At most one scan per path runs at a time; a second caller gets
// ErrAlreadyInProgress.
type StreamLister struct {
	resolver Resolver
	inflight *InFlight
	opts     StreamOptions
	metrics  Metrics

	open func(path string) (*entryStream, error)
}

// NewStreamLister creates a StreamLister guarded by inflight.
func NewStreamLister(resolver Resolver, inflight *InFlight, opts StreamOptions, metrics Metrics) *StreamLister {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultStreamTimeout
	}
	if opts.SkipMode == "" {
		opts.SkipMode = SkipAbort
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &StreamLister{
		resolver: resolver,
		inflight: inflight,
		opts:     opts,
		metrics:  metrics,
		open:     openEntryStream,
	}
}

// scanProgress is the state shared between the scan goroutine and the
// caller, which reads it when the timer wins.
type scanProgress struct {
	mu    sync.Mutex
	items []*Entry
	count int
}

func (p *scanProgress) observe() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return p.count
}

func (p *scanProgress) add(e *Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, e)
}

func (p *scanProgress) snapshot() ([]*Entry, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]*Entry, len(p.items))
	copy(items, p.items)
	return items, p.count
}

// scanResult is what the scan goroutine reports when it stops on its own.
type scanResult struct {
	reason PartialReason
	err    error
}

// List scans path and returns page page of size pageSize.
func (l *StreamLister) List(ctx context.Context, path string, page, pageSize int) (*Listing, error) {
	if !l.inflight.TryAcquire(path) {
		l.metrics.RecordConflict()
		return nil, newError(ErrAlreadyInProgress, path, "directory is already being read")
	}
	defer l.inflight.Release(path)

	stream, err := l.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := &scanProgress{}
	done := make(chan scanResult, 1)
	go func() {
		done <- l.scan(scanCtx, stream, path, page, pageSize, progress)
	}()

	timer := time.NewTimer(l.opts.Timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if ctx.Err() != nil {
			return nil, &ListingError{Code: ErrIOError, Message: "listing cancelled", Path: path, Err: ctx.Err()}
		}
		if res.err != nil {
			return nil, res.err
		}
		items, count := progress.snapshot()
		return l.page(path, page, pageSize, items, count, res.reason), nil

	case <-timer.C:
		cancel()
		_ = stream.Close()
		items, count := progress.snapshot()
		logger.Warn("Streaming listing of %s timed out after %v: returning %d items from %d scanned entries",
			path, l.opts.Timeout, len(items), count)
		return l.page(path, page, pageSize, items, count, PartialTimeout), nil

	case <-ctx.Done():
		cancel()
		_ = stream.Close()
		return nil, &ListingError{Code: ErrIOError, Message: "listing cancelled", Path: path, Err: ctx.Err()}
	}
}

// scan drives the entry stream until it ends or a stop condition is met.
func (l *StreamLister) scan(
	ctx context.Context,
	stream *entryStream,
	path string,
	page, pageSize int,
	progress *scanProgress,
) scanResult {
	startIndex, endIndex := pageWindow(page, pageSize)

	for {
		if ctx.Err() != nil {
			return scanResult{reason: PartialTimeout}
		}

		name, ok := stream.Next()
		if !ok {
			return scanResult{err: stream.Err()}
		}

		count := progress.observe()

		if ShouldSkip(name) {
			if l.opts.SkipMode == SkipAbort {
				logger.Debug("Streaming listing of %s stopped at skipped entry %q (%d scanned)", path, name, count)
				return scanResult{reason: PartialSkip}
			}
			continue
		}

		if count > startIndex && count <= endIndex {
			fullPath := filepath.Join(path, name)
			entry, err := l.resolver.Resolve(ctx, fullPath, name)
			if err != nil {
				logger.Warn("Error processing file %s: %v", fullPath, err)
				l.metrics.RecordDroppedEntry(StrategyStreaming)
			} else {
				progress.add(entry)
			}
		}

		if l.opts.OverscanLimit >= 0 && count-endIndex > l.opts.OverscanLimit {
			return scanResult{reason: PartialOverscan}
		}
	}
}

// pageWindow returns the 0-based [start, end) name positions of a page. A
// page whose window does not fit in an int lies past any directory, so it
// gets an empty window at math.MaxInt that matches no position.
func pageWindow(page, pageSize int) (start, end int) {
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return math.MaxInt, math.MaxInt
	}
	start = (page - 1) * pageSize
	return start, start + pageSize
}

func (l *StreamLister) page(path string, page, pageSize int, items []*Entry, count int, reason PartialReason) *Listing {
	listing := &Listing{
		Path:       path,
		Items:      items,
		TotalCount: count,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(count, pageSize),
		Strategy:   StrategyStreaming,
	}
	if reason != "" {
		listing.Partial = true
		listing.PartialReason = reason
		l.metrics.RecordPartial(reason)
	}
	return listing
}
