package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/datastore"
	"github.com/buildgrid/buildgrid-go/pkg/job"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

func TestGetOperationNotFound(t *testing.T) {
	sched := scheduler.New(datastore.NewMemoryStore(), watcher.New())
	in := NewInstance(sched)
	_, err := in.GetOperation(context.Background(), &pb.GetOperationRequest{Name: "missing"})
	assert.Error(t, err)
}

func TestGetOperationFound(t *testing.T) {
	sched := scheduler.New(datastore.NewMemoryStore(), watcher.New())
	in := NewInstance(sched)

	j := job.New(pb.Digest{Hash: "a", SizeBytes: 1}, false, 0, nil)
	sched.Enqueue(context.Background(), j)

	op, err := in.GetOperation(context.Background(), &pb.GetOperationRequest{Name: j.Name()})
	require.NoError(t, err)
	assert.Equal(t, j.Name(), op.Name)
}

func TestCancelOperationRejectsCompleted(t *testing.T) {
	sched := scheduler.New(datastore.NewMemoryStore(), watcher.New())
	in := NewInstance(sched)

	j := job.New(pb.Digest{Hash: "a", SizeBytes: 1}, false, 0, nil)
	sched.Enqueue(context.Background(), j)
	_, lease, ok := sched.Dispatch(context.Background(), nil)
	require.True(t, ok)
	lease.State = pb.LeaseStateCompleted
	sched.UpdateLease(context.Background(), j, lease)

	_, err := in.CancelOperation(context.Background(), &pb.CancelOperationRequest{Name: j.Name()})
	assert.Error(t, err)
}
