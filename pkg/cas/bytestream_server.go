package cas

import (
	"context"
	"io"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/telemetry"
)

// ByteStreamServer adapts ByteStreamInstance's plain-Go method shapes to
// pb.ByteStreamServer's generated streaming signatures, matching the
// teacher repo's pattern of keeping wire-handler adapters thin and
// pushing the real logic into a plain collaborator type.
type ByteStreamServer struct {
	instance *ByteStreamInstance
}

// NewByteStreamServer wraps instance as a pb.ByteStreamServer.
func NewByteStreamServer(instance *ByteStreamInstance) *ByteStreamServer {
	return &ByteStreamServer{instance: instance}
}

// Read implements pb.ByteStreamServer.
func (s *ByteStreamServer) Read(req *pb.ReadRequest, stream pb.ByteStreamServer_ReadServer) error {
	ctx, span := telemetry.StartByteStreamSpan(stream.Context(), "read", req.ResourceName)
	defer span.End()

	err := s.instance.Read(ctx, req.ResourceName, req.ReadOffset, req.ReadLimit, func(chunk []byte) error {
		return stream.Send(&pb.ReadResponse{Data: chunk})
	})
	telemetry.RecordError(span, err)
	if err == nil {
		telemetry.SetSuccess(span)
	}
	return err
}

// Write implements pb.ByteStreamServer.
func (s *ByteStreamServer) Write(stream pb.ByteStreamServer_WriteServer) error {
	ctx, span := telemetry.StartByteStreamSpan(stream.Context(), "write", "")
	defer span.End()

	chunks := make(chan *pb.WriteRequest)
	errCh := make(chan error, 1)
	go func() {
		defer close(chunks)
		for {
			req, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- err
				return
			}
			chunks <- req
			if req.FinishWrite {
				return
			}
		}
	}()

	resp, err := s.instance.Write(ctx, chunks)
	select {
	case recvErr := <-errCh:
		if err == nil {
			err = recvErr
		}
	default:
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetSuccess(span)
	return stream.SendAndClose(resp)
}

// QueryWriteStatus implements pb.ByteStreamServer.
func (s *ByteStreamServer) QueryWriteStatus(ctx context.Context, req *pb.QueryWriteStatusRequest) (*pb.QueryWriteStatusResponse, error) {
	return s.instance.QueryWriteStatus(ctx, req.ResourceName)
}
