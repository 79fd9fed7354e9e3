// Package job implements the Job aggregate: the server-side record of one
// Action submitted for execution, its current stage and its Operation
// projections (spec §3, §4.5). Subscriber fan-out lives in pkg/watcher.
package job

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// MaxAttempts is the number of times the scheduler will dispatch a Job (the
// first attempt plus up to MaxAttempts-1 retries) before giving up and
// completing it with an error (spec §4.6, grounded on the
// original server's Scheduler.MAX_N_TRIES).
const MaxAttempts = 5

// Job is the mutable server-side state backing every Operation name
// derived from it. All mutation goes through its methods, which hold
// mu for the duration; callers must not read the embedded fields
// directly from outside the package.
type Job struct {
	mu sync.Mutex

	name         string
	actionDigest pb.Digest
	doNotCache   bool
	priority     int32
	platform     *pb.Platform

	stage     pb.ExecuteStage
	nTries    int
	result    *pb.ActionResult
	status    *pb.Status
	cancelled bool

	leaseState pb.LeaseState

	// Timestamps backing pb.ExecutedActionMetadata (spec §3, §4.5
	// invariant (iv)): queuedTimestamp is stamped on the first entry into
	// QUEUED only, workerStartTimestamp/queuedDuration are stamped once per
	// (re)entry into EXECUTING from that queuedTimestamp, and
	// workerCompletedTimestamp is stamped on completion.
	queuedTimestamp          time.Time
	workerStartTimestamp     time.Time
	workerCompletedTimestamp time.Time
	queuedDuration           time.Duration
}

// RestoreFields carries the persisted fields a Scheduler reconstructs a
// Job from at startup (see datastore.Record), kept separate from
// datastore's Record type so this package does not depend on a specific
// persistence backend's storage shape.
type RestoreFields struct {
	Name                     string
	ActionDigest             pb.Digest
	DoNotCache               bool
	Priority                 int32
	Platform                 *pb.Platform
	Stage                    pb.ExecuteStage
	NTries                   int
	LeaseState               pb.LeaseState
	QueuedTimestamp          time.Time
	WorkerStartTimestamp     time.Time
	WorkerCompletedTimestamp time.Time
}

// New creates a Job named after a fresh uuid4, matching the original
// server's job.py naming scheme. priority follows spec §3's convention:
// lower values dispatch first.
func New(actionDigest pb.Digest, doNotCache bool, priority int32, platform *pb.Platform) *Job {
	return &Job{
		name:         uuid.NewString(),
		actionDigest: actionDigest,
		doNotCache:   doNotCache,
		priority:     priority,
		platform:     platform,
		stage:        pb.StageUnknown,
		leaseState:   pb.LeaseStateUnspecified,
	}
}

// Restore reconstructs a Job from persisted fields, used by the scheduler
// at startup. Subscribers are never persisted: watchers do not survive a
// restart (spec §4.8).
func Restore(f RestoreFields) *Job {
	return &Job{
		name:                     f.Name,
		actionDigest:             f.ActionDigest,
		doNotCache:               f.DoNotCache,
		priority:                 f.Priority,
		platform:                 f.Platform,
		stage:                    f.Stage,
		nTries:                   f.NTries,
		leaseState:               f.LeaseState,
		queuedTimestamp:          f.QueuedTimestamp,
		workerStartTimestamp:     f.WorkerStartTimestamp,
		workerCompletedTimestamp: f.WorkerCompletedTimestamp,
	}
}

func (j *Job) Name() string            { return j.name }
func (j *Job) ActionDigest() pb.Digest { return j.actionDigest }
func (j *Job) DoNotCache() bool        { return j.doNotCache }
func (j *Job) Platform() *pb.Platform  { return j.platform }

// Priority returns the job's scheduling priority; lower values are
// dispatched first (spec §3, §4.6).
func (j *Job) Priority() int32 { return j.priority }

// QueuedTimestamp returns when the job first entered QUEUED; a retry does
// not change it.
func (j *Job) QueuedTimestamp() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.queuedTimestamp
}

// WorkerStartTimestamp returns when the job most recently entered
// EXECUTING.
func (j *Job) WorkerStartTimestamp() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.workerStartTimestamp
}

// WorkerCompletedTimestamp returns when the job completed, the zero
// value if it has not yet.
func (j *Job) WorkerCompletedTimestamp() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.workerCompletedTimestamp
}

// Stage returns the job's current ExecuteStage under lock.
func (j *Job) Stage() pb.ExecuteStage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stage
}

// NTries returns the number of times this job has been dispatched to a
// worker (including the current attempt, if one is in flight).
func (j *Job) NTries() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nTries
}

// SetStage transitions the job to stage and, if notify is non-nil, passes
// it a snapshot of the new Operation after releasing the job's lock (the
// scheduler passes watcher.Publish, whose subscriber sends are
// non-blocking).
//
// Entering QUEUED stamps queuedTimestamp the first time only: a retried
// Job re-enters the queue preserving its original queued timestamp
// (spec §4.6's fairness rule), so queuedDuration (fixed in BeginAttempt)
// is always measured from the job's original submission, not its most
// recent retry.
func (j *Job) SetStage(stage pb.ExecuteStage, notify func(*pb.Operation)) {
	j.mu.Lock()
	j.stage = stage
	if stage == pb.StageQueued && j.queuedTimestamp.IsZero() {
		j.queuedTimestamp = time.Now()
	}
	op := j.operationLocked()
	j.mu.Unlock()
	if notify != nil {
		notify(op)
	}
}

// BeginAttempt increments the try counter and transitions to EXECUTING,
// fixing queuedDuration for this attempt from the queuedTimestamp SetStage
// last recorded (spec §4.5 invariant (iv)). Returns bgerrors.RetryExceeded
// if MaxAttempts has already been reached.
func (j *Job) BeginAttempt() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.nTries >= MaxAttempts {
		return bgerrors.RetryExceeded("job has exceeded max retry attempts")
	}
	j.nTries++
	j.stage = pb.StageExecuting
	j.workerStartTimestamp = time.Now()
	j.queuedDuration = j.workerStartTimestamp.Sub(j.queuedTimestamp)
	return nil
}

// Complete records a terminal ActionResult/Status and transitions to
// COMPLETED. The execution timestamps recorded
// across QUEUED/EXECUTING are stamped onto result.ExecutionMetadata so
// callers observe them in the final ActionResult (spec §3).
func (j *Job) Complete(result *pb.ActionResult, status *pb.Status) {
	j.mu.Lock()
	j.stage = pb.StageCompleted
	j.workerCompletedTimestamp = time.Now()
	if result != nil {
		result.ExecutionMetadata = &pb.ExecutedActionMetadata{
			QueuedTimestamp:          j.queuedTimestamp,
			WorkerStartTimestamp:     j.workerStartTimestamp,
			WorkerCompletedTimestamp: j.workerCompletedTimestamp,
		}
	}
	j.result = result
	j.status = status
	j.mu.Unlock()
}

// Cancel marks the job cancelled. Matches the original server's
// cancel_session behaviour of retrying in-flight leases rather than
// failing them outright; the scheduler decides whether to retry or
// complete based on lease state, this method only flips the flag the
// scheduler and watchers observe.
func (j *Job) Cancel() {
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

func (j *Job) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// LeaseState returns the state of the job's current (or most recent)
// lease.
func (j *Job) LeaseState() pb.LeaseState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.leaseState
}

// SetLeaseState updates the job's lease state, e.g. as leases move through
// PENDING -> ACTIVE -> COMPLETED.
func (j *Job) SetLeaseState(state pb.LeaseState) {
	j.mu.Lock()
	j.leaseState = state
	j.mu.Unlock()
}

// CreateLease builds the Lease payload dispatched to a bot: the Action
// digest, packed (JSON-encoded) as the lease payload per spec §4.7.
func (j *Job) CreateLease() *pb.Lease {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.leaseState = pb.LeaseStatePending
	payload, _ := json.Marshal(j.actionDigest)
	return &pb.Lease{
		ID:      j.name,
		State:   pb.LeaseStatePending,
		Payload: payload,
	}
}

// Operation returns a snapshot Operation message reflecting current state.
func (j *Job) Operation() *pb.Operation {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.operationLocked()
}

func (j *Job) operationLocked() *pb.Operation {
	op := &pb.Operation{
		Name: j.name,
		Metadata: &pb.ExecuteOperationMetadata{
			Stage:        j.stage,
			ActionDigest: j.actionDigest,
		},
		Done: j.stage == pb.StageCompleted,
	}
	if op.Done {
		op.Response = &pb.ExecuteResponse{
			Result: j.result,
			Status: j.status,
		}
	}
	return op
}
