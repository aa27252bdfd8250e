package badger

import (
	"context"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/store"
	"github.com/pkg/errors"
)

// Config configures a BadgerStore.
type Config struct {
	// DBPath is the directory where BadgerDB stores its files
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the database in memory only (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// MaxRecent bounds the recent directories list (default: store.DefaultMaxRecent)
	MaxRecent int `mapstructure:"max_recent"`
}

// BadgerStore implements store.Store on BadgerDB.
//
// Bookmarks and recent directories survive restarts. Values are JSON so the
// database can be inspected with the badger CLI.
//
// Thread Safety:
// BadgerDB transactions are safe for concurrent use. The read-modify-write of
// the recent list is serialized by recentMu so that two visits cannot both
// trim the list from the same snapshot.
type BadgerStore struct {
	db        *badger.DB
	maxRecent int
	now       func() time.Time

	recentMu sync.Mutex
	lastSeq  int64
}

// New opens (or creates) a BadgerStore.
func New(ctx context.Context, cfg Config) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.DBPath == "" {
			return nil, errors.New("badger store: db_path is required")
		}
		opts = badger.DefaultOptions(cfg.DBPath)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open BadgerDB at %s", cfg.DBPath)
	}

	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = store.DefaultMaxRecent
	}

	logger.Debug("Opened badger store (path=%q, in_memory=%v)", cfg.DBPath, cfg.InMemory)

	return &BadgerStore{
		db:        db,
		maxRecent: cfg.MaxRecent,
		now:       time.Now,
	}, nil
}

// Close implements io.Closer.
func (s *BadgerStore) Close() error {
	return errors.Wrap(s.db.Close(), "failed to close BadgerDB")
}

// scanPrefix calls fn with every value stored under prefix.
func scanPrefix(txn *badger.Txn, prefix string, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}
