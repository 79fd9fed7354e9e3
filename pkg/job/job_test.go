package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestNew_DefaultsAndPriority(t *testing.T) {
	digest := pb.Digest{Hash: "h1", SizeBytes: 10}
	j := New(digest, false, 7, nil)

	assert.NotEmpty(t, j.Name())
	assert.Equal(t, digest, j.ActionDigest())
	assert.Equal(t, int32(7), j.Priority())
	assert.Equal(t, pb.StageUnknown, j.Stage())
	assert.True(t, j.QueuedTimestamp().IsZero())
}

func TestSetStage_StampsQueuedTimestampOnlyOnce(t *testing.T) {
	j := New(pb.Digest{Hash: "h2"}, false, 0, nil)

	j.SetStage(pb.StageQueued, nil)
	first := j.QueuedTimestamp()
	assert.False(t, first.IsZero())

	time.Sleep(time.Millisecond)
	j.SetStage(pb.StageQueued, nil)
	assert.Equal(t, first, j.QueuedTimestamp(), "re-entering QUEUED must not refresh the original timestamp")
}

func TestBeginAttempt_FixesQueuedDurationAndAdvancesStage(t *testing.T) {
	j := New(pb.Digest{Hash: "h3"}, false, 0, nil)
	j.SetStage(pb.StageQueued, nil)
	time.Sleep(2 * time.Millisecond)

	require.NoError(t, j.BeginAttempt())
	assert.Equal(t, pb.StageExecuting, j.Stage())
	assert.Equal(t, 1, j.NTries())
	assert.False(t, j.WorkerStartTimestamp().IsZero())
	assert.True(t, j.WorkerStartTimestamp().After(j.QueuedTimestamp()) || j.WorkerStartTimestamp().Equal(j.QueuedTimestamp()))
}

func TestBeginAttempt_FailsAfterMaxAttempts(t *testing.T) {
	j := New(pb.Digest{Hash: "h4"}, false, 0, nil)
	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, j.BeginAttempt())
	}
	err := j.BeginAttempt()
	assert.True(t, bgerrors.Is(err, bgerrors.KindRetryExceeded))
}

func TestComplete_PopulatesExecutionMetadata(t *testing.T) {
	j := New(pb.Digest{Hash: "h5"}, false, 0, nil)
	j.SetStage(pb.StageQueued, nil)
	require.NoError(t, j.BeginAttempt())

	result := &pb.ActionResult{ExitCode: 0}
	j.Complete(result, &pb.Status{Code: 0})

	require.NotNil(t, result.ExecutionMetadata)
	assert.Equal(t, j.QueuedTimestamp(), result.ExecutionMetadata.QueuedTimestamp)
	assert.Equal(t, j.WorkerStartTimestamp(), result.ExecutionMetadata.WorkerStartTimestamp)
	assert.Equal(t, j.WorkerCompletedTimestamp(), result.ExecutionMetadata.WorkerCompletedTimestamp)
	assert.Equal(t, pb.StageCompleted, j.Stage())
}

func TestComplete_NilResultDoesNotPanic(t *testing.T) {
	j := New(pb.Digest{Hash: "h6"}, false, 0, nil)
	assert.NotPanics(t, func() {
		j.Complete(nil, &pb.Status{Code: 8, Message: "retries exhausted"})
	})
	assert.Equal(t, pb.StageCompleted, j.Stage())
}

func TestRestore_RoundTripsAllFields(t *testing.T) {
	now := time.Now()
	f := RestoreFields{
		Name:                     "fixed-name",
		ActionDigest:             pb.Digest{Hash: "h7", SizeBytes: 3},
		DoNotCache:               true,
		Priority:                 4,
		Platform:                 &pb.Platform{Properties: []pb.Property{{Name: "os", Value: "linux"}}},
		Stage:                    pb.StageQueued,
		NTries:                   1,
		LeaseState:               pb.LeaseStatePending,
		QueuedTimestamp:          now.Add(-time.Minute),
		WorkerStartTimestamp:     now.Add(-30 * time.Second),
		WorkerCompletedTimestamp: time.Time{},
	}
	j := Restore(f)

	assert.Equal(t, f.Name, j.Name())
	assert.Equal(t, f.ActionDigest, j.ActionDigest())
	assert.Equal(t, f.DoNotCache, j.DoNotCache())
	assert.Equal(t, f.Priority, j.Priority())
	assert.Equal(t, f.Platform, j.Platform())
	assert.Equal(t, f.Stage, j.Stage())
	assert.Equal(t, f.NTries, j.NTries())
	assert.Equal(t, f.LeaseState, j.LeaseState())
	assert.Equal(t, f.QueuedTimestamp, j.QueuedTimestamp())
	assert.Equal(t, f.WorkerStartTimestamp, j.WorkerStartTimestamp())
}

func TestCancel_MarksCancelled(t *testing.T) {
	j := New(pb.Digest{Hash: "h8"}, false, 0, nil)
	assert.False(t, j.Cancelled())
	j.Cancel()
	assert.True(t, j.Cancelled())
}
