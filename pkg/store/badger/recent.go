package badger

import (
	"context"
	"encoding/json"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/dittolist/pkg/store"
	"github.com/pkg/errors"
)

// recentRecord is the persisted form of a recent directory. Seq orders the
// list; it only grows.
type recentRecord struct {
	store.RecentDirectory
	Seq int64 `json:"seq"`
}

// RecordVisit implements store.RecentStore.
func (s *BadgerStore) RecordVisit(ctx context.Context, path string) (*store.RecentDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	now := s.now()
	s.lastSeq = max(s.lastSeq+1, now.UnixNano())

	var visited store.RecentDirectory
	err := s.db.Update(func(txn *badger.Txn) error {
		records, err := loadRecent(txn)
		if err != nil {
			return err
		}

		rec := recentRecord{RecentDirectory: store.RecentDirectory{Path: path, Name: store.RecentName(path)}}
		kept := records[:0]
		for _, r := range records {
			if r.Path == path {
				rec = r
				continue
			}
			kept = append(kept, r)
		}

		rec.LastAccessed = now
		rec.AccessCount++
		rec.Seq = s.lastSeq

		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "failed to encode recent directory")
		}
		if err := txn.Set(keyRecent(path), data); err != nil {
			return err
		}

		// kept is newest first; everything past the capacity minus the
		// entry just written goes.
		for i := s.maxRecent - 1; i < len(kept); i++ {
			if err := txn.Delete(keyRecent(kept[i].Path)); err != nil {
				return err
			}
		}

		visited = rec.RecentDirectory
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record visit")
	}
	return &visited, nil
}

// ListRecent implements store.RecentStore.
func (s *BadgerStore) ListRecent(ctx context.Context, limit int) ([]*store.RecentDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []recentRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = loadRecent(txn)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent directories")
	}

	limit = store.NormalizeLimit(limit, s.maxRecent)
	n := min(limit, len(records))

	out := make([]*store.RecentDirectory, n)
	for i := 0; i < n; i++ {
		entry := records[i].RecentDirectory
		out[i] = &entry
	}
	return out, nil
}

// ClearRecent implements store.RecentStore.
func (s *BadgerStore) ClearRecent(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.recentMu.Lock()
	defer s.recentMu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		records, err := loadRecent(txn)
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := txn.Delete(keyRecent(r.Path)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "failed to clear recent directories")
}

// loadRecent returns every recent record, newest first.
func loadRecent(txn *badger.Txn) ([]recentRecord, error) {
	var records []recentRecord
	err := scanPrefix(txn, prefixRecent, func(key, val []byte) error {
		var r recentRecord
		if err := json.Unmarshal(val, &r); err != nil {
			return errors.Wrapf(err, "corrupt recent directory %s", key)
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq > records[j].Seq
	})
	return records, nil
}
