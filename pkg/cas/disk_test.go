package cas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestDiskBackend_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	b, err := NewDiskBackend(t.TempDir())
	require.NoError(t, err)

	digest := pb.Digest{Hash: "0123456789abcdef", SizeBytes: 5}
	require.NoError(t, b.Put(ctx, digest, []byte("hello")))

	data, err := b.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, b.Delete(ctx, digest))
	ok, err := b.Has(ctx, digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskBackend_ShardsShortHashesGracefully(t *testing.T) {
	ctx := context.Background()
	b, err := NewDiskBackend(t.TempDir())
	require.NoError(t, err)

	digest := pb.Digest{Hash: "ab", SizeBytes: 1}
	require.NoError(t, b.Put(ctx, digest, []byte("x")))
	data, err := b.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
