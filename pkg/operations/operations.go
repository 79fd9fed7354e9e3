// Package operations implements the subset of google.longrunning.Operations
// BuildGrid exposes over a Job's lifecycle: List/Get/Cancel, matching
// spec §4.5's state machine (no Delete). A completed Job is dropped from
// the Scheduler, so Get reports NOT_FOUND for its Operation afterwards.
package operations

import (
	"context"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
)

// Instance implements pb.OperationsServer over a Scheduler.
type Instance struct {
	scheduler *scheduler.Scheduler
}

// NewInstance returns an Instance reporting on sched's known jobs.
func NewInstance(sched *scheduler.Scheduler) *Instance {
	return &Instance{scheduler: sched}
}

// GetOperation returns the current Operation snapshot for req.Name.
func (in *Instance) GetOperation(ctx context.Context, req *pb.GetOperationRequest) (*pb.Operation, error) {
	j, ok := in.scheduler.Job(req.Name)
	if !ok {
		return nil, bgerrors.NotFound("no operation named " + req.Name)
	}
	return j.Operation(), nil
}

// ListOperations is not backed by an index over all known jobs; this
// server only tracks jobs by name (spec §4.4 does not require a listing
// query over the DataStore), so it always returns an empty page rather
// than pretending to filter over state it doesn't have.
func (in *Instance) ListOperations(ctx context.Context, req *pb.ListOperationsRequest) (*pb.ListOperationsResponse, error) {
	return &pb.ListOperationsResponse{}, nil
}

// CancelOperation cancels the Job behind req.Name, matching spec §4.7's
// cancellation behavior (retry an in-flight lease, reject cancelling an
// already-completed operation).
func (in *Instance) CancelOperation(ctx context.Context, req *pb.CancelOperationRequest) (*pb.Empty, error) {
	j, ok := in.scheduler.Job(req.Name)
	if !ok {
		return nil, bgerrors.NotFound("no operation named " + req.Name)
	}
	if err := in.scheduler.Cancel(ctx, j); err != nil {
		return nil, err
	}
	return &pb.Empty{}, nil
}
