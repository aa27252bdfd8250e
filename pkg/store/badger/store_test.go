package badger

import (
	"context"
	"testing"

	"github.com/marmos91/dittolist/pkg/store"
	storetesting "github.com/marmos91/dittolist/pkg/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBadgerStore runs the complete store test suite against BadgerStore.
func TestBadgerStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			s, err := New(context.Background(), Config{DBPath: t.TempDir()})
			require.NoError(t, err)
			return s
		},
	}

	suite.Run(t)
}

func TestBadgerStorePersists(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir()
	bookmarked := t.TempDir()

	s, err := New(ctx, Config{DBPath: dbPath})
	require.NoError(t, err)

	b, err := s.AddBookmark(ctx, "keep", bookmarked)
	require.NoError(t, err)
	_, err = s.RecordVisit(ctx, bookmarked)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := New(ctx, Config{DBPath: dbPath})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Name)

	recent, err := reopened.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, bookmarked, recent[0].Path)

	// A visit after reopening must still sort ahead of older entries.
	_, err = reopened.RecordVisit(ctx, "/another")
	require.NoError(t, err)
	recent, err = reopened.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "/another", recent[0].Path)
}

func TestBadgerStoreInMemory(t *testing.T) {
	s, err := New(context.Background(), Config{InMemory: true, MaxRecent: 2})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	for _, p := range []string{"/a", "/b", "/c"} {
		_, err := s.RecordVisit(ctx, p)
		require.NoError(t, err)
	}

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "/c", recent[0].Path)
	assert.Equal(t, "/b", recent[1].Path)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorContains(t, err, "db_path is required")
}
