package cas

import (
	"context"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// Instance implements pb.ContentAddressableStorageServer over a Backend,
// grounded on the original server's ContentAddressableStorageInstance.
type Instance struct {
	backend Backend
}

// NewInstance returns an Instance serving backend.
func NewInstance(backend Backend) *Instance {
	return &Instance{backend: backend}
}

func (i *Instance) FindMissingBlobs(ctx context.Context, req *pb.FindMissingBlobsRequest) (*pb.FindMissingBlobsResponse, error) {
	missing, err := i.backend.MissingBlobs(ctx, req.BlobDigests)
	if err != nil {
		return nil, err
	}
	return &pb.FindMissingBlobsResponse{MissingBlobDigests: missing}, nil
}

// BatchUpdateBlobs stores every request item independently: one item's
// failure never aborts the batch, matching the original server's
// per-item status reporting.
func (i *Instance) BatchUpdateBlobs(ctx context.Context, req *pb.BatchUpdateBlobsRequest) (*pb.BatchUpdateBlobsResponse, error) {
	resp := &pb.BatchUpdateBlobsResponse{
		Responses: make([]pb.BatchUpdateBlobsResponseItem, 0, len(req.Requests)),
	}
	for _, item := range req.Requests {
		status := pb.Status{Code: 0}
		if err := i.backend.Put(ctx, item.Digest, item.Data); err != nil {
			status = statusFromError(err)
		}
		resp.Responses = append(resp.Responses, pb.BatchUpdateBlobsResponseItem{
			Digest: item.Digest,
			Status: status,
		})
	}
	return resp, nil
}

func (i *Instance) BatchReadBlobs(ctx context.Context, req *pb.BatchReadBlobsRequest) (*pb.BatchReadBlobsResponse, error) {
	resp := &pb.BatchReadBlobsResponse{
		Responses: make([]pb.BatchReadBlobsResponseItem, 0, len(req.Digests)),
	}
	for _, digest := range req.Digests {
		data, err := i.backend.Get(ctx, digest)
		item := pb.BatchReadBlobsResponseItem{Digest: digest}
		if err != nil {
			item.Status = statusFromError(err)
		} else {
			item.Data = data
			item.Status = pb.Status{Code: 0}
		}
		resp.Responses = append(resp.Responses, item)
	}
	return resp, nil
}

// GetTree walks the Merkle tree rooted at req.RootDigest, resolving every
// Directory transitively referenced by req.RootDigest's children. Unlike
// the batch RPCs, a missing Directory here is a hard failure: GetTree's
// contract requires returning a complete tree or erroring.
func (i *Instance) GetTree(req *pb.GetTreeRequest, stream pb.ContentAddressableStorageServer_GetTreeServer) error {
	root, err := i.getDirectory(stream.Context(), req.RootDigest)
	if err != nil {
		return err
	}

	var children []pb.Directory
	queue := append([]pb.DirectoryNode{}, root.Directories...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		dir, err := i.getDirectory(stream.Context(), node.Digest)
		if err != nil {
			return err
		}
		children = append(children, *dir)
		queue = append(queue, dir.Directories...)
	}

	return stream.Send(&pb.GetTreeResponse{Directories: children})
}

func (i *Instance) getDirectory(ctx context.Context, digest pb.Digest) (*pb.Directory, error) {
	data, err := i.backend.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	dir, err := unmarshalDirectory(data)
	if err != nil {
		return nil, bgerrors.InvalidArgument("stored directory blob is not valid: " + digest.Hash)
	}
	return dir, nil
}

func statusFromError(err error) pb.Status {
	switch bgerrors.KindOf(err) {
	case bgerrors.KindNotFound:
		return pb.Status{Code: 5, Message: err.Error()} // NOT_FOUND
	case bgerrors.KindInvalidArgument:
		return pb.Status{Code: 3, Message: err.Error()} // INVALID_ARGUMENT
	case bgerrors.KindBackendUnavailable:
		return pb.Status{Code: 14, Message: err.Error()} // UNAVAILABLE
	default:
		return pb.Status{Code: 2, Message: err.Error()} // UNKNOWN
	}
}
