package cas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestMemoryBackend_PutGet(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)

	digest := pb.Digest{Hash: "abc", SizeBytes: 3}
	require.NoError(t, b.Put(ctx, digest, []byte("foo")))

	data, err := b.Get(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, []byte("foo"), data)

	ok, err := b.Has(ctx, digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryBackend_GetMissing(t *testing.T) {
	b, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	_, err = b.Get(context.Background(), pb.Digest{Hash: "nope"})
	assert.True(t, bgerrors.Is(err, bgerrors.KindNotFound))
}

func TestMemoryBackend_MissingBlobs(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)

	present := pb.Digest{Hash: "present", SizeBytes: 1}
	absent := pb.Digest{Hash: "absent", SizeBytes: 1}
	require.NoError(t, b.Put(ctx, present, []byte("x")))

	missing, err := b.MissingBlobs(ctx, []pb.Digest{present, absent})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, absent.Hash, missing[0].Hash)
}

// TestMemoryBackend_Eviction exercises byte-budget eviction: a budget that
// fits exactly one 1-byte blob must evict the older one to admit a new
// one, per spec.md §4.1/§8's "sum of sizes of live blobs stays within
// budget" invariant.
func TestMemoryBackend_Eviction(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(1)
	require.NoError(t, err)

	d1 := pb.Digest{Hash: "d1", SizeBytes: 1}
	d2 := pb.Digest{Hash: "d2", SizeBytes: 1}
	require.NoError(t, b.Put(ctx, d1, []byte("a")))
	require.NoError(t, b.Put(ctx, d2, []byte("b")))

	ok, _ := b.Has(ctx, d1)
	assert.False(t, ok, "least-recently-used entry should have been evicted")
	ok, _ = b.Has(ctx, d2)
	assert.True(t, ok)
}

func TestMemoryBackend_RejectsOversizedBlobAtWriter(t *testing.T) {
	b, err := NewMemoryBackend(4)
	require.NoError(t, err)

	_, err = b.Writer(context.Background(), pb.Digest{Hash: "toobig", SizeBytes: 5})
	require.Error(t, err)
	assert.True(t, bgerrors.Is(err, bgerrors.KindOutOfRange))
}

func TestMemoryBackend_RejectsOversizedBlobAtPut(t *testing.T) {
	b, err := NewMemoryBackend(4)
	require.NoError(t, err)

	err = b.Put(context.Background(), pb.Digest{Hash: "toobig", SizeBytes: 5}, []byte("abcde"))
	require.Error(t, err)
	assert.True(t, bgerrors.Is(err, bgerrors.KindOutOfRange))
}

func TestMemoryBackend_BudgetStaysWithinBoundsAcrossEvictions(t *testing.T) {
	ctx := context.Background()
	b, err := NewMemoryBackend(10)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		d := pb.Digest{Hash: string(rune('a' + i)), SizeBytes: 3}
		require.NoError(t, b.Put(ctx, d, []byte("xyz")))
		assert.LessOrEqual(t, b.usedBytes, b.maxSizeBytes)
	}
}
