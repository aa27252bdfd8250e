package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/marmos91/dittolist/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite is a conformance suite every store.Store implementation
// must pass.
type StoreTestSuite struct {
	// NewStore creates a fresh, empty store for each test. The suite closes
	// it when the test ends.
	NewStore func(t *testing.T) store.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Bookmarks", suite.RunBookmarkTests)
	t.Run("Recent", suite.RunRecentTests)
}

func (suite *StoreTestSuite) open(t *testing.T) store.Store {
	s := suite.NewStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// RunBookmarkTests executes the bookmark tests.
func (suite *StoreTestSuite) RunBookmarkTests(test *testing.T) {
	ctx := context.Background()

	test.Run("AddAndGet", func(t *testing.T) {
		s := suite.open(t)
		dir := t.TempDir()

		b, err := s.AddBookmark(ctx, "Projects", dir)
		require.NoError(t, err)
		_, err = uuid.Parse(b.ID)
		require.NoError(t, err, "ID must be a UUID")
		assert.Equal(t, "Projects", b.Name)
		assert.Equal(t, dir, b.Path)
		assert.Nil(t, b.LastAccessed)
		assert.False(t, b.CreatedAt.IsZero())

		got, err := s.GetBookmark(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, b.Path, got.Path)
		assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
	})

	test.Run("AddRejectsMissingDirectory", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.AddBookmark(ctx, "Gone", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.True(t, listing.IsCode(err, listing.ErrNotFound))
	})

	test.Run("AddRejectsFile", func(t *testing.T) {
		s := suite.open(t)
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := s.AddBookmark(ctx, "File", file)
		assert.True(t, listing.IsCode(err, listing.ErrNotADirectory))
	})

	test.Run("AddRejectsEmptyName", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.AddBookmark(ctx, "  ", t.TempDir())
		assert.ErrorIs(t, err, store.ErrInvalidBookmark)
	})

	test.Run("GetMissing", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.GetBookmark(ctx, uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	test.Run("ListOrdersByLastAccessed", func(t *testing.T) {
		s := suite.open(t)

		a, err := s.AddBookmark(ctx, "a", t.TempDir())
		require.NoError(t, err)
		b, err := s.AddBookmark(ctx, "b", t.TempDir())
		require.NoError(t, err)
		c, err := s.AddBookmark(ctx, "c", t.TempDir())
		require.NoError(t, err)

		_, err = s.TouchBookmark(ctx, c.ID)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		touched, err := s.TouchBookmark(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, touched.LastAccessed)

		list, err := s.ListBookmarks(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	})

	test.Run("ListEmpty", func(t *testing.T) {
		s := suite.open(t)

		list, err := s.ListBookmarks(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	test.Run("TouchMissing", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.TouchBookmark(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	test.Run("Remove", func(t *testing.T) {
		s := suite.open(t)

		b, err := s.AddBookmark(ctx, "tmp", t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.RemoveBookmark(ctx, b.ID))

		_, err = s.GetBookmark(ctx, b.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.RemoveBookmark(ctx, b.ID), store.ErrNotFound)
	})

	test.Run("CancelledContext", func(t *testing.T) {
		s := suite.open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.ListBookmarks(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// RunRecentTests executes the recent directory tests.
func (suite *StoreTestSuite) RunRecentTests(test *testing.T) {
	ctx := context.Background()

	test.Run("RecordMovesToFront", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.RecordVisit(ctx, "/srv/a")
		require.NoError(t, err)
		_, err = s.RecordVisit(ctx, "/srv/b")
		require.NoError(t, err)
		again, err := s.RecordVisit(ctx, "/srv/a")
		require.NoError(t, err)
		assert.Equal(t, 2, again.AccessCount)

		list, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "/srv/a", list[0].Path)
		assert.Equal(t, "a", list[0].Name)
		assert.Equal(t, 2, list[0].AccessCount)
		assert.Equal(t, "/srv/b", list[1].Path)
		assert.Equal(t, 1, list[1].AccessCount)
	})

	test.Run("RootName", func(t *testing.T) {
		s := suite.open(t)

		entry, err := s.RecordVisit(ctx, "/")
		require.NoError(t, err)
		assert.Equal(t, "/", entry.Name)
	})

	test.Run("TrimmedToCapacity", func(t *testing.T) {
		s := suite.open(t)

		for i := 0; i < store.DefaultMaxRecent+5; i++ {
			_, err := s.RecordVisit(ctx, fmt.Sprintf("/data/d%02d", i))
			require.NoError(t, err)
		}

		list, err := s.ListRecent(ctx, 100)
		require.NoError(t, err)
		require.Len(t, list, store.DefaultMaxRecent)
		assert.Equal(t, fmt.Sprintf("/data/d%02d", store.DefaultMaxRecent+4), list[0].Path)
		assert.Equal(t, "/data/d05", list[len(list)-1].Path)
	})

	test.Run("DefaultLimit", func(t *testing.T) {
		s := suite.open(t)

		for i := 0; i < 15; i++ {
			_, err := s.RecordVisit(ctx, fmt.Sprintf("/data/d%02d", i))
			require.NoError(t, err)
		}

		list, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, list, store.DefaultRecentLimit)

		list, err = s.ListRecent(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	test.Run("Clear", func(t *testing.T) {
		s := suite.open(t)

		_, err := s.RecordVisit(ctx, "/srv/a")
		require.NoError(t, err)
		require.NoError(t, s.ClearRecent(ctx))

		list, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
