// Package store defines persistence for the state DittoList keeps between
// requests: user bookmarks and the recently visited directories.
//
// Two implementations exist: pkg/store/badger (persistent, BadgerDB) and
// pkg/store/memory (process lifetime only, used by tests and by
// store.type: memory).
package store

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/pkg/errors"
)

const (
	// DefaultMaxRecent is the number of recent directories kept.
	DefaultMaxRecent = 20

	// DefaultRecentLimit is the number of recent directories returned when
	// the caller does not ask for a specific amount.
	DefaultRecentLimit = 10
)

// ErrNotFound is returned when a bookmark ID does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidBookmark is returned when a bookmark is missing its name or path.
var ErrInvalidBookmark = errors.New("bookmark name and path are required")

// Bookmark is a named shortcut to a directory.
type Bookmark struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
}

// RecentDirectory is one entry of the recently visited list.
type RecentDirectory struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	LastAccessed time.Time `json:"lastAccessed"`
	AccessCount  int       `json:"accessCount"`
}

// BookmarkStore persists bookmarks.
type BookmarkStore interface {
	// ListBookmarks returns all bookmarks, most recently accessed first.
	// Bookmarks that were never accessed come last, oldest first.
	ListBookmarks(ctx context.Context) ([]*Bookmark, error)

	// GetBookmark returns the bookmark with the given ID, or ErrNotFound.
	GetBookmark(ctx context.Context, id string) (*Bookmark, error)

	// AddBookmark creates a bookmark for an existing directory.
	//
	// The path is checked with listing.ValidatePath; its *listing.ListingError
	// is returned unchanged when it fails.
	AddBookmark(ctx context.Context, name, path string) (*Bookmark, error)

	// TouchBookmark sets LastAccessed to now and returns the updated
	// bookmark, or ErrNotFound.
	TouchBookmark(ctx context.Context, id string) (*Bookmark, error)

	// RemoveBookmark deletes a bookmark, or returns ErrNotFound.
	RemoveBookmark(ctx context.Context, id string) error
}

// RecentStore persists the recently visited directories.
type RecentStore interface {
	// RecordVisit moves path to the front of the list (creating it if
	// needed), bumps its access count and trims the list to its capacity.
	RecordVisit(ctx context.Context, path string) (*RecentDirectory, error)

	// ListRecent returns up to limit entries, newest first. A non-positive
	// limit means DefaultRecentLimit.
	ListRecent(ctx context.Context, limit int) ([]*RecentDirectory, error)

	// ClearRecent removes every entry.
	ClearRecent(ctx context.Context) error
}

// Store is the full persistence contract used by the API.
type Store interface {
	BookmarkStore
	RecentStore
	io.Closer
}

// NewBookmark validates the request and builds a bookmark with a fresh
// UUIDv4 identifier.
func NewBookmark(name, path string, now time.Time) (*Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" || path == "" {
		return nil, ErrInvalidBookmark
	}
	if err := listing.ValidatePath(path); err != nil {
		return nil, err
	}

	return &Bookmark{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		CreatedAt: now,
	}, nil
}

// SortBookmarks orders bookmarks by LastAccessed descending. Never accessed
// bookmarks go last; ties keep creation order.
func SortBookmarks(bookmarks []*Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := bookmarks[i], bookmarks[j]
		switch {
		case a.LastAccessed != nil && b.LastAccessed != nil:
			if !a.LastAccessed.Equal(*b.LastAccessed) {
				return a.LastAccessed.After(*b.LastAccessed)
			}
		case a.LastAccessed != nil:
			return true
		case b.LastAccessed != nil:
			return false
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// RecentName returns the display name of a recent directory: the last path
// element, or the path itself for the filesystem root.
func RecentName(path string) string {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return path
	}
	return name
}

// NormalizeLimit clamps a caller supplied recent limit.
func NormalizeLimit(limit, max int) int {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

// Wrap annotates err with msg unless it is nil or ErrNotFound, which callers
// compare against directly.
func Wrap(err error, msg string) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return errors.Wrap(err, msg)
}
