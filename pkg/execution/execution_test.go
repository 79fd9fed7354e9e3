package execution

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/datastore"
	"github.com/buildgrid/buildgrid-go/pkg/job"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

type fakeActionCache struct {
	result *pb.ActionResult
}

func (f *fakeActionCache) GetActionResult(ctx context.Context, req *pb.GetActionResultRequest) (*pb.ActionResult, error) {
	if f.result == nil {
		return nil, bgerrors.NotFound("no cached result")
	}
	return f.result, nil
}

type fakeStream struct {
	ctx context.Context
	out []*pb.Operation
}

func (s *fakeStream) Send(op *pb.Operation) error {
	s.out = append(s.out, op)
	return nil
}
func (s *fakeStream) Context() context.Context { return s.ctx }

func digestFor(data []byte) pb.Digest {
	return pb.Digest{Hash: "deadbeef", SizeBytes: int64(len(data))}
}

func TestExecuteCacheHit(t *testing.T) {
	backend, err := cas.NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	result := &pb.ActionResult{ExitCode: 0}
	ac := &fakeActionCache{result: result}
	sched := scheduler.New(datastore.NewMemoryStore(), watcher.New())

	in := NewInstance(backend, ac, sched, watcher.New())
	stream := &fakeStream{ctx: context.Background()}

	err = in.Execute(&pb.ExecuteRequest{ActionDigest: pb.Digest{Hash: "a", SizeBytes: 1}}, stream)
	require.NoError(t, err)
	require.Len(t, stream.out, 1)
	assert.True(t, stream.out[0].Done)
	assert.True(t, stream.out[0].Response.CachedResult)
}

func TestExecuteCacheMissSchedulesAndStreamsCompletion(t *testing.T) {
	backend, err := cas.NewMemoryBackend(1 << 20)
	require.NoError(t, err)

	action := pb.Action{DoNotCache: true}
	data, err := json.Marshal(action)
	require.NoError(t, err)
	actionDigest := digestFor(data)
	require.NoError(t, backend.Put(context.Background(), actionDigest, data))

	ac := &fakeActionCache{}
	w := watcher.New()
	sched := scheduler.New(datastore.NewMemoryStore(), w)

	in := NewInstance(backend, ac, sched, w)
	stream := &fakeStream{ctx: context.Background()}

	done := make(chan error, 1)
	go func() { done <- in.Execute(&pb.ExecuteRequest{ActionDigest: actionDigest}, stream) }()

	j, lease, ok := waitForDispatch(t, sched, nil)
	require.True(t, ok)

	lease.State = pb.LeaseStateCompleted
	lease.Status = &pb.Status{Code: 0}
	sched.UpdateLease(context.Background(), j, lease)

	err = <-done
	require.NoError(t, err)
	require.NotEmpty(t, stream.out)
	last := stream.out[len(stream.out)-1]
	assert.True(t, last.Done)
}

func waitForDispatch(t *testing.T, sched *scheduler.Scheduler, platform *pb.Platform) (*job.Job, *pb.Lease, bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if jb, ls, found := sched.Dispatch(context.Background(), platform); found {
			return jb, ls, true
		}
	}
	return nil, nil, false
}
