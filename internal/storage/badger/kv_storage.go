package badger

import (
	"context"
	"fmt"

	"github.com/sambrennan/folio/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// kvEntry is the stored form of a system key/value pair.
type kvEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

type kvStorage struct {
	store  *Store
	logger *common.Logger
}

// NewKVStorage creates a new KeyValueStorage backed by BadgerHold.
func NewKVStorage(store *Store, logger *common.Logger) *kvStorage {
	return &kvStorage{store: store, logger: logger}
}

func (s *kvStorage) GetKV(_ context.Context, key string) (string, error) {
	var entry kvEntry
	err := s.store.db.Get(key, &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get kv '%s': %w", key, err)
	}
	return entry.Value, nil
}

func (s *kvStorage) SetKV(_ context.Context, key, value string) error {
	if err := s.store.db.Upsert(key, &kvEntry{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to set kv '%s': %w", key, err)
	}
	return nil
}
