package badger

import (
	"context"
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/dittolist/pkg/store"
	"github.com/pkg/errors"
)

// ListBookmarks implements store.BookmarkStore.
func (s *BadgerStore) ListBookmarks(ctx context.Context) ([]*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*store.Bookmark
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixBookmark, func(key, val []byte) error {
			var b store.Bookmark
			if err := json.Unmarshal(val, &b); err != nil {
				return errors.Wrapf(err, "corrupt bookmark %s", key)
			}
			out = append(out, &b)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bookmarks")
	}

	if out == nil {
		out = []*store.Bookmark{}
	}
	store.SortBookmarks(out)
	return out, nil
}

// GetBookmark implements store.BookmarkStore.
func (s *BadgerStore) GetBookmark(ctx context.Context, id string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b *store.Bookmark
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		b, err = getBookmark(txn, id)
		return err
	})
	if err != nil {
		return nil, store.Wrap(err, "failed to get bookmark")
	}
	return b, nil
}

// AddBookmark implements store.BookmarkStore.
func (s *BadgerStore) AddBookmark(ctx context.Context, name, path string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := store.NewBookmark(name, path, s.now())
	if err != nil {
		return nil, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return putBookmark(txn, b)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add bookmark")
	}
	return b, nil
}

// TouchBookmark implements store.BookmarkStore.
func (s *BadgerStore) TouchBookmark(ctx context.Context, id string) (*store.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b *store.Bookmark
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		b, err = getBookmark(txn, id)
		if err != nil {
			return err
		}
		now := s.now()
		b.LastAccessed = &now
		return putBookmark(txn, b)
	})
	if err != nil {
		return nil, store.Wrap(err, "failed to update bookmark")
	}
	return b, nil
}

// RemoveBookmark implements store.BookmarkStore.
func (s *BadgerStore) RemoveBookmark(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyBookmark(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		return txn.Delete(keyBookmark(id))
	})
	return store.Wrap(err, "failed to remove bookmark")
}

func getBookmark(txn *badger.Txn, id string) (*store.Bookmark, error) {
	item, err := txn.Get(keyBookmark(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var b store.Bookmark
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &b)
	}); err != nil {
		return nil, errors.Wrapf(err, "corrupt bookmark %s", id)
	}
	return &b, nil
}

func putBookmark(txn *badger.Txn, b *store.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "failed to encode bookmark")
	}
	return txn.Set(keyBookmark(b.ID), data)
}
