package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func validHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestParseResourceName_ReadPath(t *testing.T) {
	hash := validHash([]byte("hi"))
	rn, err := ParseResourceName("myinstance/blobs/" + hash + "/2")
	require.NoError(t, err)
	assert.Equal(t, "myinstance", rn.InstanceName)
	assert.Equal(t, hash, rn.Digest.Hash)
	assert.Equal(t, int64(2), rn.Digest.SizeBytes)
	assert.False(t, rn.IsUpload)
}

func TestParseResourceName_WritePath(t *testing.T) {
	hash := validHash([]byte("hi"))
	rn, err := ParseResourceName("myinstance/uploads/uuid-1/blobs/" + hash + "/2")
	require.NoError(t, err)
	assert.Equal(t, "myinstance", rn.InstanceName)
	assert.Equal(t, "uuid-1", rn.UUID)
	assert.True(t, rn.IsUpload)
}

func TestParseResourceName_RejectsBadHash(t *testing.T) {
	_, err := ParseResourceName("inst/blobs/not-hex/2")
	assert.True(t, bgerrors.Is(err, bgerrors.KindInvalidArgument))
}

func TestByteStreamInstance_WriteValidatesHashAndSize(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	bs := NewByteStreamInstance(backend)

	data := []byte("the quick brown fox")
	hash := validHash(data)
	name := "inst/uploads/u1/blobs/" + hash + "/" + "19"

	ch := make(chan *pb.WriteRequest, 1)
	ch <- &pb.WriteRequest{ResourceName: name, WriteOffset: 0, Data: data, FinishWrite: true}
	close(ch)

	resp, err := bs.Write(ctx, ch)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), resp.CommittedSize)

	got, err := backend.Get(ctx, pb.Digest{Hash: hash, SizeBytes: int64(len(data))})
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestByteStreamInstance_WriteRejectsHashMismatch(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	bs := NewByteStreamInstance(backend)

	data := []byte("payload")
	wrongHash := validHash([]byte("different"))
	name := "inst/uploads/u1/blobs/" + wrongHash + "/" + "7"

	ch := make(chan *pb.WriteRequest, 1)
	ch <- &pb.WriteRequest{ResourceName: name, WriteOffset: 0, Data: data, FinishWrite: true}
	close(ch)

	_, err = bs.Write(ctx, ch)
	assert.True(t, bgerrors.Is(err, bgerrors.KindInvalidArgument))
}

func TestByteStreamInstance_ReadRespectsOffsetAndLimit(t *testing.T) {
	ctx := context.Background()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	bs := NewByteStreamInstance(backend)

	data := []byte("0123456789")
	digest := pb.Digest{Hash: validHash(data), SizeBytes: int64(len(data))}
	require.NoError(t, backend.Put(ctx, digest, data))

	name := "inst/blobs/" + digest.Hash + "/10"
	var got []byte
	err = bs.Read(ctx, name, 2, 3, func(chunk []byte) error {
		got = append(got, chunk...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), got)
}
