package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
)

// txMaxRetries bounds re-runs of a transaction that lost a commit race.
const txMaxRetries = 3

// JobStore implements storage.JobStore on BadgerDB.
type JobStore struct {
	backend *Backend
}

var _ storage.JobStore = (*JobStore)(nil)
var _ storage.CollectionStore = (*JobStore)(nil)

// NewJobStore creates a new JobStore. The backend remains owned by the
// caller and is not closed by the store.
func NewJobStore(backend *Backend) (*JobStore, error) {
	return &JobStore{backend: backend}, nil
}

// Close releases store resources. The underlying backend is closed by
// whoever opened it.
func (s *JobStore) Close() error {
	return nil
}

// Enqueue creates a job in pending state.
func (s *JobStore) Enqueue(ctx context.Context, collection string, files []string) (*core.Job, error) {
	if err := core.ValidateSubmission(collection, files); err != nil {
		return nil, err
	}

	job := core.NewJob(collection, files)

	err := s.withWriteTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalJob(job)
		if err != nil {
			return err
		}
		if err := tx.Set(makeJobKey(job.ID), value); err != nil {
			return err
		}
		if err := tx.Set(makeJobCreatedKey(job.CreatedAt, job.ID), []byte(job.ID)); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(ctx context.Context, id string) (*core.Job, error) {
	var job *core.Job
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		job, err = readJob(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// List returns all jobs, oldest first.
func (s *JobStore) List(ctx context.Context) ([]*core.Job, error) {
	return s.listWhere(func(*core.Job) bool { return true })
}

// ListPending returns all pending jobs, oldest first.
func (s *JobStore) ListPending(ctx context.Context) ([]*core.Job, error) {
	return s.listWhere(func(j *core.Job) bool { return j.Status == core.StatusPending })
}

// listWhere walks the creation-order index and loads jobs matching keep.
// The index iterates in BigEndian timestamp order, which is FIFO.
func (s *JobStore) listWhere(keep func(*core.Job) bool) ([]*core.Job, error) {
	var jobs []*core.Job

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobCreatedPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			job, err := readJob(tx, id)
			if err != nil {
				// Index entries always point at a stored record; a miss
				// here means the store is corrupt, which callers treat
				// as fatal.
				return err
			}
			if keep(job) {
				jobs = append(jobs, job)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// Transition applies a status change to a job.
func (s *JobStore) Transition(ctx context.Context, id string, next core.JobStatus, result *core.JobResult) (*core.Job, error) {
	if err := core.ValidateStatus(next); err != nil {
		return nil, err
	}

	var job *core.Job
	err := s.withWriteTx(func(tx *badger.Txn) error {
		var err error
		job, err = readJob(tx, id)
		if err != nil {
			return err
		}

		// Re-applying the transition the job already took is a no-op
		// success, so a duplicate retry over the network cannot fail.
		if job.Status == next {
			return nil
		}

		if !job.Status.CanTransitionTo(next) {
			return storage.ErrInvalidTransition
		}

		job.Status = next
		if next.Terminal() {
			job.Result = result
		}

		if err := writeJob(tx, job); err != nil {
			return err
		}

		switch {
		case next == core.StatusProcessing:
			if err := tx.Set(makeJobClaimKey(id), encodeClaimTime(time.Now().UTC())); err != nil {
				return err
			}
		case next.Terminal():
			if err := tx.Delete(makeJobClaimKey(id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// Claim atomically moves a pending job to processing. The read and the
// write happen in one serializable transaction, so of two racing claims
// exactly one commits; the loser re-runs, sees processing, and gets
// ErrAlreadyClaimed.
func (s *JobStore) Claim(ctx context.Context, id string) (*core.Job, error) {
	var job *core.Job
	err := s.withWriteTx(func(tx *badger.Txn) error {
		var err error
		job, err = readJob(tx, id)
		if err != nil {
			return err
		}

		if job.Status != core.StatusPending {
			return storage.ErrAlreadyClaimed
		}

		job.Status = core.StatusProcessing
		if err := writeJob(tx, job); err != nil {
			return err
		}
		if err := tx.Set(makeJobClaimKey(id), encodeClaimTime(time.Now().UTC())); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// RequeueStale reverts processing jobs claimed longer than age ago back to
// pending. The claim marker is the lease: a worker that died between claim
// and finalize leaves it behind, and this sweep reclaims the job.
func (s *JobStore) RequeueStale(ctx context.Context, age time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-age)
	var requeued []string

	err := s.withWriteTx(func(tx *badger.Txn) error {
		requeued = requeued[:0]

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobClaimPrefix + ":")
		iter := tx.NewIterator(opts)

		var stale []string
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := string(item.Key()[len(jobClaimPrefix)+1:])

			var claimedAt time.Time
			err := item.Value(func(val []byte) error {
				claimedAt = decodeClaimTime(val)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}

			if claimedAt.Before(cutoff) {
				stale = append(stale, id)
			}
		}
		iter.Close()

		for _, id := range stale {
			job, err := readJob(tx, id)
			if err != nil {
				return err
			}
			if job.Status != core.StatusProcessing {
				continue
			}

			job.Status = core.StatusPending
			if err := writeJob(tx, job); err != nil {
				return err
			}
			if err := tx.Delete(makeJobClaimKey(id)); err != nil {
				return err
			}
			requeued = append(requeued, id)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return requeued, nil
}

// withWriteTx runs fn in a read-write transaction, re-running it a bounded
// number of times when the commit loses a serialization race.
func (s *JobStore) withWriteTx(fn func(tx *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < txMaxRetries; attempt++ {
		err = s.backend.WithTx(fn, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// readJob loads and decodes a job inside a transaction.
func readJob(tx *badger.Txn, id string) (*core.Job, error) {
	item, err := tx.Get(makeJobKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		job, err = storage.UnmarshalJob(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// writeJob encodes and stores a job inside a transaction.
func writeJob(tx *badger.Txn, job *core.Job) error {
	value, err := storage.MarshalJob(job)
	if err != nil {
		return err
	}
	return tx.Set(makeJobKey(job.ID), value)
}

func encodeClaimTime(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixMicro()))
	return buf
}

func decodeClaimTime(data []byte) time.Time {
	if len(data) != 8 {
		return time.Time{}
	}
	return time.UnixMicro(int64(binary.BigEndian.Uint64(data))).UTC()
}
