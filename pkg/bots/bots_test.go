package bots

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

func newTestInstance() (*Instance, *scheduler.Scheduler) {
	sched := scheduler.New(datastore.NewMemoryStore(), watcher.New())
	return NewInstance(sched), sched
}

func TestCreateBotSessionAssignsSlotsAndDefaults(t *testing.T) {
	in, _ := newTestInstance()

	sess, err := in.CreateBotSession(context.Background(), &pb.CreateBotSessionRequest{
		BotSession: pb.BotSession{Bot: pb.Worker{Properties: []pb.Property{{Name: "os", Value: "linux"}}}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Name)
	assert.Equal(t, 1, sess.Slots)
}

func TestUpdateBotSessionDispatchesWhenCapacityAvailable(t *testing.T) {
	in, sched := newTestInstance()

	sess, err := in.CreateBotSession(context.Background(), &pb.CreateBotSessionRequest{
		BotSession: pb.BotSession{Slots: 2},
	})
	require.NoError(t, err)

	j := job.New(pb.Digest{Hash: "a", SizeBytes: 1}, false, 0, nil)
	sched.Enqueue(context.Background(), j)

	updated, err := in.UpdateBotSession(context.Background(), &pb.UpdateBotSessionRequest{
		Name:       sess.Name,
		BotSession: pb.BotSession{Status: pb.BotStatusOK},
	})
	require.NoError(t, err)
	require.Len(t, updated.Leases, 1)
	assert.Equal(t, pb.LeaseStatePending, updated.Leases[0].State)
}

func TestUpdateBotSessionReconcilesCompletedLease(t *testing.T) {
	in, sched := newTestInstance()

	sess, err := in.CreateBotSession(context.Background(), &pb.CreateBotSessionRequest{
		BotSession: pb.BotSession{Slots: 1},
	})
	require.NoError(t, err)

	j := job.New(pb.Digest{Hash: "a", SizeBytes: 1}, false, 0, nil)
	sched.Enqueue(context.Background(), j)

	assigned, err := in.UpdateBotSession(context.Background(), &pb.UpdateBotSessionRequest{
		Name:       sess.Name,
		BotSession: pb.BotSession{Status: pb.BotStatusOK},
	})
	require.NoError(t, err)
	require.Len(t, assigned.Leases, 1)

	lease := assigned.Leases[0]
	lease.State = pb.LeaseStateCompleted
	lease.Status = &pb.Status{Code: 0}

	final, err := in.UpdateBotSession(context.Background(), &pb.UpdateBotSessionRequest{
		Name: sess.Name,
		BotSession: pb.BotSession{
			Status: pb.BotStatusOK,
			Leases: []*pb.Lease{lease},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, final.Leases)
	assert.Equal(t, pb.StageCompleted, j.Stage())
}

func TestUpdateBotSessionUnknownSessionNotFound(t *testing.T) {
	in, _ := newTestInstance()
	_, err := in.UpdateBotSession(context.Background(), &pb.UpdateBotSessionRequest{Name: "missing"})
	assert.Error(t, err)
}

func TestIsSessionAliveAndExpire(t *testing.T) {
	in, _ := newTestInstance()
	sess, err := in.CreateBotSession(context.Background(), &pb.CreateBotSessionRequest{})
	require.NoError(t, err)

	assert.True(t, in.IsSessionAlive(sess.Name))
	in.ExpireSession(sess.Name)
	assert.False(t, in.IsSessionAlive(sess.Name))
}
