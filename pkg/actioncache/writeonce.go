package actioncache

import (
	"context"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// WriteOnceInstance wraps an Instance so each action digest may only be
// written once: a second UpdateActionResult for an already-cached digest
// is rejected, grounded on the original server's WriteOnceActionCache
// (used when results must be immutable once published, e.g. to back a
// content-addressed release cache rather than a build cache).
type WriteOnceInstance struct {
	inner *Instance
}

// NewWriteOnceInstance wraps inner.
func NewWriteOnceInstance(inner *Instance) *WriteOnceInstance {
	return &WriteOnceInstance{inner: inner}
}

func (w *WriteOnceInstance) GetActionResult(ctx context.Context, req *pb.GetActionResultRequest) (*pb.ActionResult, error) {
	return w.inner.GetActionResult(ctx, req)
}

func (w *WriteOnceInstance) UpdateActionResult(ctx context.Context, req *pb.UpdateActionResultRequest) (*pb.ActionResult, error) {
	_, err := w.inner.GetActionResult(ctx, &pb.GetActionResultRequest{InstanceName: req.InstanceName, ActionDigest: req.ActionDigest})
	if err == nil {
		return nil, bgerrors.UpdateNotAllowed("action result already cached for digest " + req.ActionDigest.Hash)
	}
	if !bgerrors.Is(err, bgerrors.KindNotFound) {
		return nil, err
	}
	return w.inner.UpdateActionResult(ctx, req)
}
