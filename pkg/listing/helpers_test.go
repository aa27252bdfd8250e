package listing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// makeFiles creates n empty regular files in dir.
func makeFiles(t testing.TB, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("f%06d.txt", i)))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
}

// countingResolver counts Resolve calls and can fail selected names.
type countingResolver struct {
	inner Resolver
	fail  map[string]bool
	calls atomic.Int64
}

func newCountingResolver() *countingResolver {
	return &countingResolver{inner: NewFileResolver(), fail: map[string]bool{}}
}

func (r *countingResolver) Resolve(ctx context.Context, fullPath, name string) (*Entry, error) {
	r.calls.Add(1)
	if r.fail[name] {
		return nil, &ListingError{Code: ErrIOError, Message: "injected failure", Path: fullPath}
	}
	return r.inner.Resolve(ctx, fullPath, name)
}

// blockingResolver blocks every Resolve until release is closed or ctx ends.
type blockingResolver struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingResolver() *blockingResolver {
	return &blockingResolver{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingResolver) Resolve(ctx context.Context, fullPath, name string) (*Entry, error) {
	r.once.Do(func() { close(r.started) })
	select {
	case <-r.release:
		return NewFileResolver().Resolve(context.Background(), fullPath, name)
	case <-ctx.Done():
		return nil, &ListingError{Code: ErrIOError, Message: "resolution cancelled", Path: fullPath, Err: ctx.Err()}
	}
}

// recordingMetrics records what the listing engine reports.
type recordingMetrics struct {
	mu        sync.Mutex
	listings  []Strategy
	hits      int
	misses    int
	dropped   int
	partials  []PartialReason
	conflicts int
}

func (m *recordingMetrics) ObserveListing(s Strategy, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.listings = append(m.listings, s)
	}
}

func (m *recordingMetrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *recordingMetrics) RecordDroppedEntry(Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *recordingMetrics) RecordPartial(r PartialReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partials = append(m.partials, r)
}

func (m *recordingMetrics) RecordConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}
