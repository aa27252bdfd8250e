package listing

import (
	"context"
	"path/filepath"

	"github.com/marmos91/dittolist/internal/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of entries the bulk lister resolves
// concurrently before waiting.
const DefaultBatchSize = 500

// BulkLister resolves every entry of a directory with a batched concurrent
// fan-out.
//
// Names are enumerated once. Each batch is resolved with one goroutine per
// entry and the next batch starts only after the whole batch has finished,
// so concurrency is bounded by the batch size rather than the directory size.
// The result keeps enumeration order. Entries that fail to resolve are
// logged and omitted.
type BulkLister struct {
	resolver  Resolver
	batchSize int
	metrics   Metrics
}

// NewBulkLister creates a BulkLister. A non-positive batchSize means
// DefaultBatchSize; a nil metrics means no-op.
func NewBulkLister(resolver Resolver, batchSize int, metrics Metrics) *BulkLister {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &BulkLister{
		resolver:  resolver,
		batchSize: batchSize,
		metrics:   metrics,
	}
}

// List returns all resolved entries of path, unpaginated.
//
// Once names have been enumerated the listing runs to completion: caller
// cancellation is not propagated to the per-entry resolutions.
func (l *BulkLister) List(ctx context.Context, path string) ([]*Entry, error) {
	names, err := readNames(path)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	items := make([]*Entry, 0, len(names))

	for start := 0; start < len(names); start += l.batchSize {
		end := min(start+l.batchSize, len(names))
		items = append(items, l.resolveBatch(ctx, path, names[start:end])...)
	}

	logger.Debug("Bulk listing of %s: %d names, %d resolved", path, len(names), len(items))

	return items, nil
}

// resolveBatch resolves names concurrently and returns the successes in the
// order of names.
func (l *BulkLister) resolveBatch(ctx context.Context, dir string, names []string) []*Entry {
	resolved := make([]*Entry, len(names))

	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			fullPath := filepath.Join(dir, name)
			entry, err := l.resolver.Resolve(ctx, fullPath, name)
			if err != nil {
				logger.Warn("Error processing item %s: %v", fullPath, err)
				l.metrics.RecordDroppedEntry(StrategyBulk)
				return nil
			}
			resolved[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	out := resolved[:0]
	for _, e := range resolved {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
