package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/datastore"
	"github.com/buildgrid/buildgrid-go/pkg/job"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

func newTestScheduler() *Scheduler {
	return New(datastore.NewMemoryStore(), watcher.New())
}

func TestScheduler_DispatchOrdersByPriorityThenQueuedTime(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()

	low := job.New(pb.Digest{Hash: "low"}, false, 5, nil)
	high := job.New(pb.Digest{Hash: "high"}, false, 1, nil)
	s.Enqueue(ctx, low)
	time.Sleep(time.Millisecond)
	s.Enqueue(ctx, high)

	got, _, ok := s.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, high.Name(), got.Name(), "lower priority value should dispatch first even though it was enqueued second")

	got, _, ok = s.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, low.Name(), got.Name())
}

func TestScheduler_DispatchFIFOWithinSamePriority(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()

	first := job.New(pb.Digest{Hash: "first"}, false, 0, nil)
	s.Enqueue(ctx, first)
	time.Sleep(time.Millisecond)
	second := job.New(pb.Digest{Hash: "second"}, false, 0, nil)
	s.Enqueue(ctx, second)

	got, _, ok := s.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, first.Name(), got.Name())
}

func TestScheduler_DispatchSkipsIncompatiblePlatform(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()

	gpuOnly := &pb.Platform{Properties: []pb.Property{{Name: "gpu", Value: "true"}}}
	needsGPU := job.New(pb.Digest{Hash: "gpu-job"}, false, 0, gpuOnly)
	anyWorker := job.New(pb.Digest{Hash: "cpu-job"}, false, 1, nil)
	s.Enqueue(ctx, needsGPU)
	s.Enqueue(ctx, anyWorker)

	got, _, ok := s.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, anyWorker.Name(), got.Name(), "a worker without gpu=true must skip the higher-priority gpu job and take the next compatible one")

	// The gpu job should still be queued, waiting for a compatible worker.
	assert.Equal(t, 1, s.QueueLen())
	worker := &pb.Platform{Properties: []pb.Property{{Name: "gpu", Value: "true"}}}
	got, _, ok = s.Dispatch(ctx, worker)
	require.True(t, ok)
	assert.Equal(t, needsGPU.Name(), got.Name())
}

func TestScheduler_RetryPreservesQueuedTimestampAndReordersAhead(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()

	original := job.New(pb.Digest{Hash: "retried"}, false, 3, nil)
	s.Enqueue(ctx, original)
	originalQueuedAt := original.QueuedTimestamp()

	j, lease, ok := s.Dispatch(ctx, nil)
	require.True(t, ok)
	s.Retry(ctx, j)

	time.Sleep(time.Millisecond)
	newer := job.New(pb.Digest{Hash: "newer"}, false, 3, nil)
	s.Enqueue(ctx, newer)

	assert.Equal(t, originalQueuedAt, j.QueuedTimestamp(), "retry must not refresh queuedTimestamp")

	got, _, ok := s.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, original.Name(), got.Name(), "retried job should dispatch ahead of a job submitted after it at the same priority")
	_ = lease
}

func TestScheduler_DispatchEmptyQueue(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()
	_, _, ok := s.Dispatch(ctx, nil)
	assert.False(t, ok)
}

func TestScheduler_RestoreRebuildsQueueWithPriorityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemoryStore()

	s1 := New(store, watcher.New())
	j := job.New(pb.Digest{Hash: "persisted"}, false, 2, nil)
	s1.Enqueue(ctx, j)
	wantQueuedAt := j.QueuedTimestamp()

	s2 := New(store, watcher.New())
	require.NoError(t, s2.Restore(ctx))
	assert.Equal(t, 1, s2.QueueLen())

	got, _, ok := s2.Dispatch(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, j.Name(), got.Name())
	assert.Equal(t, int32(2), got.Priority())
	assert.Equal(t, wantQueuedAt, got.QueuedTimestamp())
}

func TestScheduler_RetryExhaustedCompletesJob(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler()

	j := job.New(pb.Digest{Hash: "doomed"}, false, 0, nil)
	s.Enqueue(ctx, j)
	for i := 0; i < MaxAttempts; i++ {
		got, _, ok := s.Dispatch(ctx, nil)
		require.True(t, ok)
		s.Retry(ctx, got)
	}

	assert.Equal(t, pb.StageCompleted, j.Stage())
	_, ok := s.Job(j.Name())
	assert.False(t, ok, "an exhausted job should be removed from the in-flight set")
}
