// Package execution implements the Execution gRPC service: submitting an
// Action for scheduling and streaming its Operation updates back to
// callers, grounded on the original server's execution/instance.py and
// following the teacher repo's pkg/api gRPC-handler shape for a
// streaming server method (recv context, send until done or disconnect).
package execution

import (
	"context"
	"encoding/json"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/job"
	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
	"github.com/buildgrid/buildgrid-go/pkg/telemetry"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

// ActionCache is the subset of pb.ActionCacheServer the Instance needs to
// perform the cache-check step of Execute.
type ActionCache interface {
	GetActionResult(ctx context.Context, req *pb.GetActionResultRequest) (*pb.ActionResult, error)
}

// Instance implements pb.ExecutionServer over a Scheduler, a CAS backend
// (to resolve the submitted Action) and an ActionCache (for the
// cache-check short-circuit), matching spec §4.7.
type Instance struct {
	cas         cas.Backend
	actionCache ActionCache
	scheduler   *scheduler.Scheduler
	watcher     *watcher.Watcher
}

// NewInstance returns an Instance wiring casBackend, actionCache and sched
// together behind the Execution service surface.
func NewInstance(casBackend cas.Backend, actionCache ActionCache, sched *scheduler.Scheduler, w *watcher.Watcher) *Instance {
	return &Instance{cas: casBackend, actionCache: actionCache, scheduler: sched, watcher: w}
}

// Execute implements spec §4.7's Execute: cache-check short-circuit on a
// hit, otherwise resolve the Action, enqueue a Job and stream its
// Operation updates to stream until done or the caller disconnects.
func (in *Instance) Execute(req *pb.ExecuteRequest, stream pb.ExecutionServer_ExecuteServer) error {
	logger := log.WithComponent("execution")

	ctx, span := telemetry.StartExecuteSpan(stream.Context(), req.InstanceName, req.ActionDigest.Hash, req.ActionDigest.SizeBytes)
	defer span.End()

	if !req.SkipCacheLookup {
		result, err := in.actionCache.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: req.ActionDigest})
		switch {
		case err == nil:
			telemetry.SetSuccess(span)
			return stream.Send(&pb.Operation{
				Metadata: &pb.ExecuteOperationMetadata{
					Stage:        pb.StageCompleted,
					ActionDigest: req.ActionDigest,
				},
				Done: true,
				Response: &pb.ExecuteResponse{
					Result:       result,
					CachedResult: true,
					Status:       &pb.Status{Code: 0},
				},
			})
		case bgerrors.Is(err, bgerrors.KindNotFound):
			// fall through to scheduling
		default:
			telemetry.RecordError(span, err)
			return err
		}
	}

	actionData, err := in.cas.Get(ctx, req.ActionDigest)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	var action pb.Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		err := bgerrors.InvalidArgument("stored action blob is not valid: " + req.ActionDigest.Hash)
		telemetry.RecordError(span, err)
		return err
	}

	var priority int32
	if req.ExecutionPolicy != nil {
		priority = req.ExecutionPolicy.Priority
	}
	j := job.New(req.ActionDigest, action.DoNotCache, priority, action.Platform)
	sub := in.watcher.Subscribe(j.Name())
	defer in.watcher.Unsubscribe(j.Name(), sub)

	in.scheduler.Enqueue(ctx, j)
	logger.Info().Str("job", j.Name()).Str("action", req.ActionDigest.Hash).Msg("action queued")

	err = streamUntilDone(stream, sub)
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetSuccess(span)
	}
	return err
}

// WaitExecution implements spec §4.7's WaitExecution: attach the caller as
// an additional subscriber to the named Operation's existing Job and
// stream updates the same way Execute does.
func (in *Instance) WaitExecution(req *pb.WaitExecutionRequest, stream pb.ExecutionServer_ExecuteServer) error {
	_, span := telemetry.StartWaitExecutionSpan(stream.Context(), req.Name)
	defer span.End()

	j, ok := in.scheduler.Job(req.Name)
	if !ok {
		err := bgerrors.NotFound("no operation named " + req.Name)
		telemetry.RecordError(span, err)
		return err
	}

	sub := in.watcher.Subscribe(j.Name())
	defer in.watcher.Unsubscribe(j.Name(), sub)

	// Send the current state immediately: a WaitExecution caller attaching
	// after the job already advanced should not have to wait for the next
	// transition to learn where things stand.
	if err := stream.Send(j.Operation()); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if j.Stage() == pb.StageCompleted {
		telemetry.SetSuccess(span)
		return nil
	}

	err := streamUntilDone(stream, sub)
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetSuccess(span)
	}
	return err
}

func streamUntilDone(stream pb.ExecutionServer_ExecuteServer, sub <-chan *pb.Operation) error {
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op, ok := <-sub:
			if !ok {
				// Channel closed: subscriber was dropped for falling behind
				// (spec §4.9 RESOURCE_EXHAUSTED semantics). The caller must
				// re-subscribe via a fresh WaitExecution call.
				return bgerrors.Cancelled("subscriber dropped, re-issue WaitExecution")
			}
			if err := stream.Send(op); err != nil {
				return err
			}
			if op.Done {
				return nil
			}
		}
	}
}
