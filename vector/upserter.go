package vector

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultBatchSize is the number of records written per index call.
const DefaultBatchSize = 50

// Upserter writes records to an Index in bounded-size batches, so that a
// large document never turns into one oversized index call.
type Upserter struct {
	index     Index
	batchSize int
	logger    *slog.Logger
}

// UpserterOption configures an Upserter.
type UpserterOption func(*Upserter)

// WithBatchSize sets the records-per-call batch size.
// Values below 1 fall back to DefaultBatchSize.
func WithBatchSize(size int) UpserterOption {
	return func(u *Upserter) {
		if size >= 1 {
			u.batchSize = size
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) UpserterOption {
	return func(u *Upserter) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewUpserter creates an Upserter around the given index.
func NewUpserter(index Index, opts ...UpserterOption) (*Upserter, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	u := &Upserter{
		index:     index,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "upserter"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Upsert writes all records, batchSize at a time. A failed batch aborts the
// remainder; the records already written are harmless because a retry with
// the same deterministic IDs overwrites them.
func (u *Upserter) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += u.batchSize {
		end := start + u.batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := u.index.Upsert(ctx, records[start:end]); err != nil {
			return fmt.Errorf("upsert batch %d-%d of %d: %w", start, end, len(records), err)
		}
		u.logger.Debug("upserted batch", "from", start, "to", end, "total", len(records))
	}
	return nil
}
