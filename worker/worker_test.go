package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/ingrain/core"
	badgerstore "github.com/poiesic/ingrain/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcessor returns a canned result or error per collection.
type fakeProcessor struct {
	result *core.JobResult
	err    error

	processed []string
}

func (f *fakeProcessor) Process(ctx context.Context, job *core.Job) (*core.JobResult, error) {
	f.processed = append(f.processed, job.ID)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &core.JobResult{ProcessedFiles: job.Files, ChunkCount: len(job.Files)}, nil
}

// cancellingProcessor simulates shutdown arriving mid-job: it cancels the
// worker's context and fails the way a context-honoring pipeline would.
type cancellingProcessor struct {
	cancel context.CancelFunc
}

func (c *cancellingProcessor) Process(ctx context.Context, job *core.Job) (*core.JobResult, error) {
	c.cancel()
	return nil, ctx.Err()
}

type nilResultProcessor struct{}

func (nilResultProcessor) Process(ctx context.Context, job *core.Job) (*core.JobResult, error) {
	return nil, nil
}

func newTestStore(t *testing.T) *badgerstore.JobStore {
	t.Helper()
	store, _, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(); backend.Close() })
	return store
}

func TestNewRequiresDependencies(t *testing.T) {
	store := newTestStore(t)

	_, err := New(nil, &fakeProcessor{})
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = New(store, nil)
	assert.ErrorIs(t, err, ErrPipelineRequired)
}

func TestRunOnceEmptyQueue(t *testing.T) {
	store := newTestStore(t)
	w, err := New(store, &fakeProcessor{})
	require.NoError(t, err)

	worked, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, worked)
}

func TestRunOnceCompletesJob(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{}
	w, err := New(store, proc)
	require.NoError(t, err)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, "Docs", []string{"a.txt"})
	require.NoError(t, err)

	worked, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, worked)
	assert.Equal(t, []string{job.ID}, proc.processed)

	final, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, 1, final.Result.ChunkCount)
}

func TestRunOnceProcessesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{}
	w, err := New(store, proc)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := store.Enqueue(ctx, "Docs", []string{"first.txt"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := store.Enqueue(ctx, "Docs", []string{"second.txt"})
	require.NoError(t, err)

	_, err = w.RunOnce(ctx)
	require.NoError(t, err)
	_, err = w.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{first.ID, second.ID}, proc.processed)
}

func TestRunOnceRecordsFailure(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{err: errors.New("embedding provider unavailable: connection refused")}
	w, err := New(store, proc)
	require.NoError(t, err)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, "Docs", []string{"a.txt"})
	require.NoError(t, err)

	worked, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	final, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, final.Status)
	require.NotNil(t, final.Result)
	assert.Contains(t, final.Result.Error, "connection refused")
}

func TestRunOnceRetriesBeforeFailing(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{err: errors.New("transient")}
	w, err := New(store, proc, WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}))
	require.NoError(t, err)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, "Docs", []string{"a.txt"})
	require.NoError(t, err)

	_, err = w.RunOnce(ctx)
	require.NoError(t, err)

	assert.Len(t, proc.processed, 3)
	final, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, final.Status)
}

func TestRunOnceTimeoutFailsJob(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{err: fmt.Errorf("extract: %w", context.DeadlineExceeded)}
	w, err := New(store, proc)
	require.NoError(t, err)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, "Docs", []string{"slow.pdf"})
	require.NoError(t, err)

	worked, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	final, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, final.Status)
	require.NotNil(t, final.Result)
	assert.Contains(t, final.Result.Error, "deadline")
}

func TestShutdownLeavesJobProcessing(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(store, &cancellingProcessor{cancel: cancel})
	require.NoError(t, err)

	job, err := store.Enqueue(context.Background(), "Docs", []string{"a.txt"})
	require.NoError(t, err)

	worked, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	// The interrupted job stays claimed rather than being finalized.
	mid, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusProcessing, mid.Status)

	// The stale-claim sweep returns it to the queue.
	requeued, err := store.RequeueStale(context.Background(), 0)
	require.NoError(t, err)
	assert.Contains(t, requeued, job.ID)

	after, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, after.Status)
}

func TestRunOnceNilResultCompletes(t *testing.T) {
	store := newTestStore(t)
	w, err := New(store, nilResultProcessor{})
	require.NoError(t, err)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, "Docs", []string{"a.txt"})
	require.NoError(t, err)

	worked, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	final, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Zero(t, final.Result.ChunkCount)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	w, err := New(store, &fakeProcessor{}, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunDrainsQueue(t *testing.T) {
	store := newTestStore(t)
	proc := &fakeProcessor{}
	w, err := New(store, proc, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Enqueue(ctx, "Docs", []string{"f.txt"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	runCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(runCtx) }()

	require.Eventually(t, func() bool {
		pending, err := store.ListPending(ctx)
		return err == nil && len(pending) == 0
	}, 400*time.Millisecond, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Len(t, proc.processed, 3)
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	// All attempts exhausted returns the last error.
	err = RetryWithBackoff(ctx, func() error { return errors.New("always") }, 2, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, "always", err.Error())

	// Invalid policy.
	err = RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	// Cancelled context short-circuits.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = RetryWithBackoff(cancelled, func() error { return errors.New("x") }, 3, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}
