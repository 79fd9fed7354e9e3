package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := &Record{Name: "job-1", Stage: pb.StageQueued}
	require.NoError(t, s.PutJob(ctx, rec))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.Name)
	assert.Equal(t, pb.StageQueued, got.Stage)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetJob(context.Background(), "nope")
	assert.True(t, bgerrors.Is(err, bgerrors.KindNotFound))
}

func TestMemoryStore_ListQueuedFiltersStage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.PutJob(ctx, &Record{Name: "a", Stage: pb.StageQueued}))
	require.NoError(t, s.PutJob(ctx, &Record{Name: "b", Stage: pb.StageCompleted}))
	require.NoError(t, s.PutJob(ctx, &Record{Name: "c", Stage: pb.StageQueued}))

	queued, err := s.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, "a", queued[0].Name)
	assert.Equal(t, "c", queued[1].Name)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.PutJob(ctx, &Record{Name: "a"}))
	require.NoError(t, s.DeleteJob(ctx, "a"))
	require.NoError(t, s.DeleteJob(ctx, "a"))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
