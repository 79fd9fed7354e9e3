package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestBoltStore_PutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	rec := &Record{Name: "job-1", Stage: pb.StageExecuting, NTries: 2}
	require.NoError(t, s.PutJob(ctx, rec))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NTries)
	assert.Equal(t, pb.StageExecuting, got.Stage)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.PutJob(ctx, &Record{Name: "persisted", Stage: pb.StageQueued}))
	require.NoError(t, s1.Close())

	s2, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetJob(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}
