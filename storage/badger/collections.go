package badger

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
)

// CreateCollection registers a collection name.
func (s *JobStore) CreateCollection(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ErrEmptyCollection
	}

	return s.withWriteTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)

		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrCollectionExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// ListCollections returns all registered collection names, sorted.
func (s *JobStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(collectionPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			names = append(names, string(key[len(collectionPrefix)+1:]))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}
