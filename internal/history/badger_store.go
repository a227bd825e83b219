package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// record is the badgerhold-persisted envelope for one KVStore entry. Value
// carries the already-YAML-encoded payload; badgerhold itself only ever
// sees opaque bytes here.
type record struct {
	Key   string
	Value []byte
}

// BadgerDB owns one badgerhold-backed database connection, grounded on the
// teacher's connection setup: reset-on-startup support, directory creation,
// and arbor logging of the open/close lifecycle.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// BadgerConfig mirrors internal/common.BadgerConfig without importing it,
// keeping internal/history free of a dependency on the bootstrap package.
type BadgerConfig struct {
	Path           string
	ResetOnStartup bool
}

// NewBadgerDB opens (creating if necessary) a badgerhold database at
// config.Path, optionally wiping any prior contents first.
func NewBadgerDB(logger arbor.ILogger, config BadgerConfig) (*BadgerDB, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("deleting existing history database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("failed to delete history database directory")
			}
		}
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("opening history database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return &BadgerDB{store: store, logger: logger}, nil
}

// Close closes the underlying database connection.
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// BadgerStore implements KVStore over a BadgerDB connection.
type BadgerStore struct {
	db *BadgerDB
}

// NewBadgerStore wraps db as a KVStore.
func NewBadgerStore(db *BadgerDB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var r record
	err := s.db.store.Get(key, &r)
	if err == badgerhold.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get history key %s: %w", key, err)
	}
	return r.Value, true, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	r := record{Key: key, Value: value}
	if err := s.db.store.Upsert(key, &r); err != nil {
		return fmt.Errorf("failed to set history key %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.store.Delete(key, &record{})
	if err == badgerhold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete history key %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every key under prefix. Matching is done in Go after a
// full Find, the same way the teacher's KVStorage.GetAll/DeleteAll collect
// every record before post-processing in Go rather than push a prefix
// predicate down into badgerhold's query engine.
func (s *BadgerStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var records []record
	if err := s.db.store.Find(&records, badgerhold.Where("Key").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list history keys: %w", err)
	}
	var keys []string
	for _, r := range records {
		if strings.HasPrefix(r.Key, prefix) {
			keys = append(keys, r.Key)
		}
	}
	return keys, nil
}
