// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
)

// DefaultPollInterval is how long the worker sleeps when the queue is empty.
const DefaultPollInterval = 5 * time.Second

// Processor runs one job to completion and reports the outcome.
type Processor interface {
	Process(ctx context.Context, job *core.Job) (*core.JobResult, error)
}

// Worker drains the job queue sequentially: poll, claim the oldest pending
// job, process it, finalize its status, repeat. One worker processes one job
// at a time; losing a claim race to another worker just moves it to the next
// poll.
type Worker struct {
	store        storage.JobStore
	processor    Processor
	pollInterval time.Duration
	retry        RetryPolicy
	logger       *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithPollInterval overrides the idle sleep between empty polls.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithRetryPolicy overrides how processing failures are retried before the
// job is marked failed.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(w *Worker) {
		if policy.MaxAttempts > 0 {
			w.retry = policy
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a worker over the given store and processor.
func New(store storage.JobStore, processor Processor, opts ...Option) (*Worker, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if processor == nil {
		return nil, ErrPipelineRequired
	}

	w := &Worker{
		store:        store,
		processor:    processor,
		pollInterval: DefaultPollInterval,
		retry:        DefaultRetryPolicy(),
		logger:       slog.Default().With("component", "worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run polls the queue until ctx is cancelled. It returns nil on cancellation
// and an error only when the store itself stops answering.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", "poll_interval", w.pollInterval)

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("worker stopping")
			return nil
		}

		worked, err := w.RunOnce(ctx)
		if err != nil {
			return err
		}
		if worked {
			continue
		}

		// Queue is empty; sleep until the next poll or shutdown.
		timer := time.NewTimer(w.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("worker stopping")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce performs a single poll cycle. It reports whether a job was
// handled, so callers know if the queue had work. An error means the store
// is unusable; losing a claim race or failing a job does not error.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	pending, err := w.store.ListPending(ctx)
	if err != nil {
		w.logger.Error("failed to list pending jobs", "err", err)
		return false, err
	}
	if len(pending) == 0 {
		return false, nil
	}

	// Oldest first.
	head := pending[0]
	job, err := w.store.Claim(ctx, head.ID)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyClaimed) || errors.Is(err, storage.ErrNotFound) {
			// Another worker got there first; try again next cycle.
			w.logger.Debug("lost claim race", "job", head.ID, "err", err)
			return true, nil
		}
		w.logger.Error("failed to claim job", "job", head.ID, "err", err)
		return false, err
	}

	w.handle(ctx, job)
	return true, nil
}

// handle processes a claimed job and finalizes its status. Finalization
// failures are logged, never propagated: the stale-claim sweep will return
// an unfinalized job to the queue.
func (w *Worker) handle(ctx context.Context, job *core.Job) {
	w.logger.Info("processing job", "job", job.ID, "collection", job.Collection, "files", len(job.Files))
	start := time.Now()

	var result *core.JobResult
	err := RetryWithBackoff(ctx, func() error {
		var procErr error
		result, procErr = w.processor.Process(ctx, job)
		return procErr
	}, w.retry.MaxAttempts, w.retry.BaseDelay)

	if err != nil {
		// On shutdown, the failure is ours, not the job's. Leave it in
		// processing so the stale-claim sweep returns it to the queue.
		if ctx.Err() != nil {
			w.logger.Info("shutdown interrupted job", "job", job.ID, "duration", time.Since(start))
			return
		}
		w.logger.Error("job failed", "job", job.ID, "duration", time.Since(start), "err", err)
		failure := &core.JobResult{Error: err.Error()}
		if _, ferr := w.store.Transition(ctx, job.ID, core.StatusFailed, failure); ferr != nil {
			w.logger.Error("failed to record job failure", "job", job.ID, "err", ferr)
		}
		return
	}

	if result == nil {
		result = &core.JobResult{}
	}
	w.logger.Info("job completed",
		"job", job.ID,
		"duration", time.Since(start),
		"chunks", result.ChunkCount)
	if _, ferr := w.store.Transition(ctx, job.ID, core.StatusCompleted, result); ferr != nil {
		w.logger.Error("failed to record job completion", "job", job.ID, "err", ferr)
	}
}
