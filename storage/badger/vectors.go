package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
	"github.com/poiesic/ingrain/vector"
)

// VectorIndex implements vector.Index on BadgerDB. It is a local index:
// vectors live next to the job store, and queries are an exhaustive scan
// over one collection's prefix with cosine scoring. Good for single-node
// deployments; swap in vector/pgvector when the corpus outgrows it.
type VectorIndex struct {
	backend *Backend
	logger  *slog.Logger
}

var _ vector.Index = (*VectorIndex)(nil)

// vectorRecord is the stored form of a vector entry.
type vectorRecord struct {
	Vector   []float32       `json:"vector"`
	Metadata vector.Metadata `json:"metadata"`
}

// NewVectorIndex creates a local vector index on the given backend.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{
		backend: backend,
		logger:  slog.Default().With("component", "badger-index"),
	}
}

// Close releases index resources. The backend is owned by the caller.
func (x *VectorIndex) Close() error {
	return nil
}

// Upsert writes records keyed by (collection, id). Writing an existing key
// replaces the previous value.
func (x *VectorIndex) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, rec := range records {
			value, err := json.Marshal(vectorRecord{Vector: rec.Vector, Metadata: rec.Metadata})
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}
			if err := tx.Set(makeVectorKey(rec.Metadata.Collection, rec.ID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query scans the filtered prefix and returns the topK records by cosine
// similarity, highest first.
func (x *VectorIndex) Query(ctx context.Context, vec []float32, topK int, filter vector.Filter) ([]vector.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	var matches []vector.Match

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		if filter.Collection != "" {
			opts.Prefix = makeVectorCollectionPrefix(filter.Collection)
		} else {
			opts.Prefix = []byte(vectorRecordPrefix + ":")
		}

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := iter.Item()
			id, err := parseVectorKeyID(item.Key())
			if err != nil {
				return err
			}

			var rec vectorRecord
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
			}

			score := vector.CosineSimilarity(vec, rec.Vector)
			matches = append(matches, vector.Match{ID: id, Score: score, Metadata: rec.Metadata})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// parseVectorKeyID extracts the record ID from a vector key
// (prefix:collection:id — the collection itself may contain colons, so the
// ID is the fixed-width tail).
func parseVectorKeyID(key []byte) (core.ID, error) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	if i < 0 || i == len(s)-1 {
		return 0, fmt.Errorf("malformed vector key %q", s)
	}

	var id uint64
	if _, err := fmt.Sscanf(s[i+1:], "%016x", &id); err != nil {
		return 0, fmt.Errorf("malformed vector key %q: %w", s, err)
	}
	return core.ID(id), nil
}
