package cas

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

type fakeReadStream struct {
	ctx context.Context
	out []*pb.ReadResponse
}

func (s *fakeReadStream) Send(resp *pb.ReadResponse) error {
	s.out = append(s.out, resp)
	return nil
}
func (s *fakeReadStream) Context() context.Context { return s.ctx }

type fakeWriteStream struct {
	ctx      context.Context
	in       []*pb.WriteRequest
	idx      int
	response *pb.WriteResponse
}

func (s *fakeWriteStream) Recv() (*pb.WriteRequest, error) {
	if s.idx >= len(s.in) {
		return nil, io.EOF
	}
	req := s.in[s.idx]
	s.idx++
	return req, nil
}
func (s *fakeWriteStream) SendAndClose(resp *pb.WriteResponse) error {
	s.response = resp
	return nil
}
func (s *fakeWriteStream) Context() context.Context { return s.ctx }

func TestByteStreamServerRead(t *testing.T) {
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	data := []byte("hello world")
	digest := pb.Digest{Hash: validHash(data), SizeBytes: int64(len(data))}
	require.NoError(t, backend.Put(context.Background(), digest, data))

	srv := NewByteStreamServer(NewByteStreamInstance(backend))
	stream := &fakeReadStream{ctx: context.Background()}

	err = srv.Read(&pb.ReadRequest{ResourceName: "inst/blobs/" + digest.Hash + "/11"}, stream)
	require.NoError(t, err)

	var got []byte
	for _, resp := range stream.out {
		got = append(got, resp.Data...)
	}
	assert.Equal(t, data, got)
}

func TestByteStreamServerWrite(t *testing.T) {
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	srv := NewByteStreamServer(NewByteStreamInstance(backend))

	data := []byte("payload bytes")
	hash := validHash(data)
	name := "inst/uploads/u1/blobs/" + hash + "/" + "13"

	stream := &fakeWriteStream{
		ctx: context.Background(),
		in: []*pb.WriteRequest{
			{ResourceName: name, WriteOffset: 0, Data: data, FinishWrite: true},
		},
	}

	err = srv.Write(stream)
	require.NoError(t, err)
	require.NotNil(t, stream.response)
	assert.Equal(t, int64(len(data)), stream.response.CommittedSize)
}
