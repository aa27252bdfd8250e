package memory

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/dittolist/pkg/store"
)

// Config configures a MemoryStore.
type Config struct {
	// MaxRecent bounds the recent directories list (default: store.DefaultMaxRecent)
	MaxRecent int `mapstructure:"max_recent"`
}

// MemoryStore implements store.Store using in-memory data structures.
//
// It is suitable for tests and for deployments that do not need bookmarks or
// history to survive a restart.
//
// Thread Safety:
// All operations are protected by a single read-write mutex.
type MemoryStore struct {
	mu sync.RWMutex

	// bookmarks maps ID to bookmark; order keeps insertion order so that
	// ties in SortBookmarks are resolved the same way on every call.
	bookmarks map[string]*store.Bookmark
	order     []string

	// recent is ordered newest first.
	recent    []*store.RecentDirectory
	maxRecent int

	now func() time.Time
}

// New creates an empty MemoryStore.
func New(cfg Config) *MemoryStore {
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = store.DefaultMaxRecent
	}
	return &MemoryStore{
		bookmarks: make(map[string]*store.Bookmark),
		maxRecent: cfg.MaxRecent,
		now:       time.Now,
	}
}

// ListBookmarks implements store.BookmarkStore.
func (s *MemoryStore) ListBookmarks(ctx context.Context) ([]*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.Bookmark, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyBookmark(s.bookmarks[id]))
	}
	store.SortBookmarks(out)
	return out, nil
}

// GetBookmark implements store.BookmarkStore.
func (s *MemoryStore) GetBookmark(ctx context.Context, id string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyBookmark(b), nil
}

// AddBookmark implements store.BookmarkStore.
func (s *MemoryStore) AddBookmark(ctx context.Context, name, path string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := store.NewBookmark(name, path, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks[b.ID] = b
	s.order = append(s.order, b.ID)
	return copyBookmark(b), nil
}

// TouchBookmark implements store.BookmarkStore.
func (s *MemoryStore) TouchBookmark(ctx context.Context, id string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := s.now()
	b.LastAccessed = &now
	return copyBookmark(b), nil
}

// RemoveBookmark implements store.BookmarkStore.
func (s *MemoryStore) RemoveBookmark(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookmarks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.bookmarks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// RecordVisit implements store.RecentStore.
func (s *MemoryStore) RecordVisit(ctx context.Context, path string) (*store.RecentDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &store.RecentDirectory{Path: path, Name: store.RecentName(path)}
	for i, existing := range s.recent {
		if existing.Path == path {
			entry = existing
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}

	entry.LastAccessed = s.now()
	entry.AccessCount++

	s.recent = append([]*store.RecentDirectory{entry}, s.recent...)
	if len(s.recent) > s.maxRecent {
		s.recent = s.recent[:s.maxRecent]
	}

	out := *entry
	return &out, nil
}

// ListRecent implements store.RecentStore.
func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]*store.RecentDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = store.NormalizeLimit(limit, s.maxRecent)
	n := min(limit, len(s.recent))

	out := make([]*store.RecentDirectory, n)
	for i := 0; i < n; i++ {
		entry := *s.recent[i]
		out[i] = &entry
	}
	return out, nil
}

// ClearRecent implements store.RecentStore.
func (s *MemoryStore) ClearRecent(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = nil
	return nil
}

// Close implements io.Closer. It is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func copyBookmark(b *store.Bookmark) *store.Bookmark {
	out := *b
	if b.LastAccessed != nil {
		t := *b.LastAccessed
		out.LastAccessed = &t
	}
	return &out
}
