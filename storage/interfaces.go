package storage

import (
	"context"
	"time"

	"github.com/poiesic/ingrain/core"
)

// JobStore is the sole owner of job records and the only source of truth
// for job state. Implementations must be thread-safe, serialize writes,
// and make every mutation durable before returning.
type JobStore interface {
	// Enqueue creates a job in pending state with a fresh unique ID and the
	// current timestamp. Returns a core validation error if the collection
	// is empty or files is empty.
	Enqueue(ctx context.Context, collection string, files []string) (*core.Job, error)

	// ListPending returns all pending jobs in creation order, oldest first.
	// This ordering is the scheduling policy: FIFO, no priority.
	ListPending(ctx context.Context) ([]*core.Job, error)

	// Transition applies a status change to a job. Returns ErrNotFound for
	// an unknown ID and ErrInvalidTransition for a move that is not one of
	// pending→processing, processing→completed, processing→failed.
	// Re-applying the transition a job already took is tolerated and
	// returns the job unchanged, so duplicate network retries are harmless.
	// The result, when non-nil, is recorded on the transition into a
	// terminal state.
	Transition(ctx context.Context, id string, next core.JobStatus, result *core.JobResult) (*core.Job, error)

	// Claim atomically moves a pending job to processing. Unlike Transition
	// it is strict: a job that is no longer pending returns
	// ErrAlreadyClaimed, so two concurrent workers can never both claim the
	// same job.
	Claim(ctx context.Context, id string) (*core.Job, error)

	// Get retrieves a job by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*core.Job, error)

	// List returns all jobs in creation order, oldest first.
	List(ctx context.Context) ([]*core.Job, error)

	// RequeueStale reverts processing jobs whose claim is older than age
	// back to pending and returns their IDs. This is the reconciliation
	// path for jobs stranded by a worker that died between claim and
	// finalize.
	RequeueStale(ctx context.Context, age time.Duration) ([]string, error)

	// Close closes the store and releases resources.
	Close() error
}

// CollectionStore tracks the logical collections that jobs may target.
type CollectionStore interface {
	// CreateCollection registers a collection name. Returns
	// ErrCollectionExists if it is already registered.
	CreateCollection(ctx context.Context, name string) error

	// ListCollections returns all registered collection names, sorted.
	ListCollections(ctx context.Context) ([]string, error)
}
