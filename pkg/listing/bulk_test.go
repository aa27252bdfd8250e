package listing

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkLister_ResolvesEveryEntry(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 25)
	require.NoError(t, os.Mkdir(dir+"/nested", 0o755))

	items, err := NewBulkLister(NewFileResolver(), 4, nil).List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, items, 26)

	names := make([]string, len(items))
	for i, e := range items {
		names[i] = e.Name
	}
	assert.Contains(t, names, "nested")
	assert.Contains(t, names, "f000024.txt")
}

func TestBulkLister_PreservesEnumerationOrder(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 40)

	names, err := readNames(dir)
	require.NoError(t, err)

	items, err := NewBulkLister(NewFileResolver(), 7, nil).List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, items, len(names))

	for i, e := range items {
		assert.Equal(t, names[i], e.Name)
	}
}

func TestBulkLister_DropsUnresolvableEntries(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 10)

	resolver := newCountingResolver()
	resolver.fail["f000003.txt"] = true
	resolver.fail["f000007.txt"] = true
	metrics := &recordingMetrics{}

	items, err := NewBulkLister(resolver, 3, metrics).List(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, items, 8)
	assert.Equal(t, int64(10), resolver.calls.Load())
	assert.Equal(t, 2, metrics.dropped)
	for _, e := range items {
		assert.NotEqual(t, "f000003.txt", e.Name)
		assert.NotEqual(t, "f000007.txt", e.Name)
	}
}

// peakResolver records the highest number of concurrent Resolve calls.
type peakResolver struct {
	mu      sync.Mutex
	current int
	peak    int
}

func (r *peakResolver) Resolve(ctx context.Context, fullPath, name string) (*Entry, error) {
	r.mu.Lock()
	r.current++
	r.peak = max(r.peak, r.current)
	r.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	r.mu.Lock()
	r.current--
	r.mu.Unlock()
	return &Entry{Name: name, Path: fullPath}, nil
}

func TestBulkLister_ConcurrencyBoundedByBatch(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 30)

	resolver := &peakResolver{}
	items, err := NewBulkLister(resolver, 5, nil).List(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, items, 30)
	assert.LessOrEqual(t, resolver.peak, 5)
}

func TestBulkLister_IgnoresCallerCancellation(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := NewBulkLister(NewFileResolver(), 2, nil).List(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestBulkLister_Errors(t *testing.T) {
	dir := t.TempDir()
	file := dir + "/plain.txt"
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	l := NewBulkLister(NewFileResolver(), 0, nil)

	_, err := l.List(context.Background(), dir+"/missing")
	assert.True(t, IsCode(err, ErrNotFound), "got %v", err)

	_, err = l.List(context.Background(), file)
	assert.True(t, IsCode(err, ErrNotADirectory), "got %v", err)
}

func TestBulkLister_EmptyDirectory(t *testing.T) {
	items, err := NewBulkLister(NewFileResolver(), 0, nil).List(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBulkLister_DefaultBatchSize(t *testing.T) {
	l := NewBulkLister(NewFileResolver(), -1, nil)
	assert.Equal(t, DefaultBatchSize, l.batchSize)
}

func ExampleBulkLister_List() {
	dir, _ := os.MkdirTemp("", "bulk")
	defer os.RemoveAll(dir)
	for _, name := range []string{"b.txt", "a.txt"} {
		_ = os.WriteFile(dir+"/"+name, nil, 0o644)
	}

	items, _ := NewBulkLister(NewFileResolver(), 0, nil).List(context.Background(), dir)
	names := make([]string, 0, len(items))
	for _, e := range items {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	fmt.Println(names)
	// Output: [a.txt b.txt]
}
