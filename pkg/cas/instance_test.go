package cas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestInstance_FindMissingBlobs(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	inst := NewInstance(backend)

	present := pb.Digest{Hash: "present"}
	absent := pb.Digest{Hash: "absent"}
	require.NoError(t, backend.Put(ctx, present, []byte("x")))

	resp, err := inst.FindMissingBlobs(ctx, &pb.FindMissingBlobsRequest{
		BlobDigests: []pb.Digest{present, absent},
	})
	require.NoError(t, err)
	require.Len(t, resp.MissingBlobDigests, 1)
	assert.Equal(t, absent.Hash, resp.MissingBlobDigests[0].Hash)
}

func TestInstance_BatchUpdateBlobsIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	inst := NewInstance(backend)

	resp, err := inst.BatchUpdateBlobs(ctx, &pb.BatchUpdateBlobsRequest{
		Requests: []pb.BatchUpdateBlobsRequestItem{
			{Digest: pb.Digest{Hash: "ok"}, Data: []byte("data")},
			{Digest: pb.Digest{Hash: "too-big", SizeBytes: 2 << 20}, Data: []byte("x")},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Responses, 2)
	assert.Equal(t, int32(0), resp.Responses[0].Status.Code)
	assert.NotEqual(t, int32(0), resp.Responses[1].Status.Code)
}

func TestInstance_BatchReadBlobsReportsPerItemStatus(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	inst := NewInstance(backend)

	present := pb.Digest{Hash: "present"}
	require.NoError(t, backend.Put(ctx, present, []byte("x")))
	absent := pb.Digest{Hash: "absent"}

	resp, err := inst.BatchReadBlobs(ctx, &pb.BatchReadBlobsRequest{
		Digests: []pb.Digest{present, absent},
	})
	require.NoError(t, err)
	require.Len(t, resp.Responses, 2)
	assert.Equal(t, int32(0), resp.Responses[0].Status.Code)
	assert.NotEqual(t, int32(0), resp.Responses[1].Status.Code)
}
