// Package scheduler matches queued Jobs against bot sessions advertising
// compatible Platform requirements, and drives retry/lease bookkeeping.
// It has no control loop of its own: bots pull work through Dispatch, and
// the only background task is the session reaper (sessionreaper.go). Its
// mutex-guarded state and zerolog component logger are adapted from the
// teacher repo's pkg/scheduler.Scheduler; its queue/retry semantics are
// grounded on the original server's scheduler.py.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/datastore"
	"github.com/buildgrid/buildgrid-go/pkg/job"
	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/metrics"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/watcher"
)

// MaxAttempts mirrors job.MaxAttempts; a Job that exhausts this many
// dispatch attempts is completed with a synthetic failure status instead
// of requeued, grounded on the original server's Scheduler.MAX_N_TRIES.
const MaxAttempts = job.MaxAttempts

// jobQueue is a container/heap.Interface over *job.Job, ordered
// (priority ascending, queuedTimestamp ascending) per spec §4.6: lower
// priority values dispatch first, and within a priority class the
// longest-waiting job dispatches first. A retried job keeps its original
// queuedTimestamp (job.SetStage only stamps it once), so it naturally
// sorts ahead of jobs submitted after it at the same priority.
type jobQueue []*job.Job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, k int) bool {
	if q[i].Priority() != q[k].Priority() {
		return q[i].Priority() < q[k].Priority()
	}
	return q[i].QueuedTimestamp().Before(q[k].QueuedTimestamp())
}

func (q jobQueue) Swap(i, k int) { q[i], q[k] = q[k], q[i] }

func (q *jobQueue) Push(x interface{}) { *q = append(*q, x.(*job.Job)) }

func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return j
}

// Scheduler holds the priority queue of pending Jobs and the set of known
// in-flight Jobs, keyed by name.
type Scheduler struct {
	mu sync.Mutex

	queue jobQueue
	jobs  map[string]*job.Job

	store   datastore.Store
	watcher *watcher.Watcher
	logger  zerolog.Logger
}

// New returns an empty Scheduler persisting to store and publishing
// Operation updates through w.
func New(store datastore.Store, w *watcher.Watcher) *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]*job.Job),
		store:   store,
		watcher: w,
		logger:  log.WithComponent("scheduler"),
	}
}

// Enqueue adds j to the queue in priority order and transitions it to
// QUEUED, matching the original server's Scheduler.append_job.
func (s *Scheduler) Enqueue(ctx context.Context, j *job.Job) {
	j.SetStage(pb.StageQueued, s.watcher.Publish)

	s.mu.Lock()
	s.jobs[j.Name()] = j
	heap.Push(&s.queue, j)
	s.mu.Unlock()

	s.persist(ctx, j)
	metrics.JobsTotal.WithLabelValues(pb.StageQueued.String()).Inc()
}

// Job looks up a known job by name.
func (s *Scheduler) Job(name string) (*job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	return j, ok
}

// Dispatch removes the highest-priority (then longest-waiting) queued job
// whose Platform is satisfied by workerPlatform, if any, and returns the
// Lease to hand to the bot. Matches the original server's
// Scheduler.create_job: pop, mark EXECUTING, create a Lease. Jobs ahead of
// the matching one in priority order but incompatible with workerPlatform
// are left in the queue for a worker that can take them.
func (s *Scheduler) Dispatch(ctx context.Context, workerPlatform *pb.Platform) (*job.Job, *pb.Lease, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, workerPlatform)
}

// dispatchLocked pops the queue in strict (priority, queuedTimestamp)
// order, skipping over jobs incompatible with workerPlatform, until it
// finds one to dispatch or exhausts the queue. s.mu must be held by the
// caller. The underlying heap slice is only heap-ordered (the root is the
// minimum, but sibling order is unspecified), so finding the true next
// compatible job requires popping candidates one at a time rather than
// scanning the slice; skipped jobs are pushed back before returning.
func (s *Scheduler) dispatchLocked(ctx context.Context, workerPlatform *pb.Platform) (*job.Job, *pb.Lease, bool) {
	var skipped []*job.Job
	defer func() {
		for _, j := range skipped {
			heap.Push(&s.queue, j)
		}
	}()

	for s.queue.Len() > 0 {
		j := heap.Pop(&s.queue).(*job.Job)
		if !j.Platform().Satisfies(workerPlatform) {
			skipped = append(skipped, j)
			continue
		}
		if err := j.BeginAttempt(); err != nil {
			// Attempts exhausted between enqueue and dispatch; finalize
			// instead of handing out a lease that cannot complete.
			s.completeLocked(ctx, j, nil, &pb.Status{Code: 8, Message: "retries exhausted"})
			continue
		}
		lease := j.CreateLease()
		s.persist(ctx, j)
		return j, lease, true
	}
	return nil, nil, false
}

// UpdateLease dispatches on a lease's reported state, matching the
// original server's Scheduler.update_lease: ACTIVE/PENDING simply record
// progress, COMPLETED with an OK (or absent) status finalizes the job, and
// COMPLETED with an error status or CANCELLED retries it.
func (s *Scheduler) UpdateLease(ctx context.Context, j *job.Job, lease *pb.Lease) {
	switch lease.State {
	case pb.LeaseStatePending, pb.LeaseStateActive:
		j.SetLeaseState(lease.State)
		s.persist(ctx, j)
	case pb.LeaseStateCompleted:
		if lease.Status != nil && lease.Status.Code != 0 {
			s.Retry(ctx, j)
			return
		}
		var result *pb.ActionResult
		var status *pb.Status
		s.mu.Lock()
		s.completeLocked(ctx, j, result, status)
		s.mu.Unlock()
	case pb.LeaseStateCancelled:
		s.Retry(ctx, j)
	}
}

// Retry requeues j, matching the original server's retry_job. j's
// queuedTimestamp is preserved rather than refreshed (job.SetStage only
// stamps it on the first QUEUED entry), so under priority ordering it
// naturally re-enters at the front of its priority class ahead of any job
// submitted later at the same priority. If j has exhausted MaxAttempts it
// is completed with a failure status instead.
func (s *Scheduler) Retry(ctx context.Context, j *job.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.NTries() >= MaxAttempts {
		s.completeLocked(ctx, j, nil, &pb.Status{Code: 8, Message: "retries exhausted"})
		return
	}
	j.SetLeaseState(pb.LeaseStateUnspecified)
	j.SetStage(pb.StageQueued, s.watcher.Publish)
	heap.Push(&s.queue, j)
	s.persist(ctx, j)
	metrics.JobsTotal.WithLabelValues("retried").Inc()
}

// CancelSession requeues or completes every job whose lease belonged to a
// now-lost bot session, matching the original server's cancel_session: a
// job with a PENDING or ACTIVE lease is retried, anything else is left
// alone (it was never actually handed to the lost session).
func (s *Scheduler) CancelSession(ctx context.Context, leaseJobNames []string) {
	for _, name := range leaseJobNames {
		j, ok := s.Job(name)
		if !ok {
			continue
		}
		state := j.LeaseState()
		if state == pb.LeaseStatePending || state == pb.LeaseStateActive {
			s.logger.Warn().Str("job", name).Msg("retrying job after bot session loss")
			s.Retry(ctx, j)
		}
	}
}

// Cancel marks j cancelled; if it currently has an in-flight lease it is
// retried so another worker can pick it up, matching cancel_session's
// per-job behavior applied to a single explicit cancellation.
func (s *Scheduler) Cancel(ctx context.Context, j *job.Job) error {
	if j.Stage() == pb.StageCompleted {
		return bgerrors.InvalidArgument("cannot cancel a completed operation")
	}
	j.Cancel()
	state := j.LeaseState()
	if state == pb.LeaseStatePending || state == pb.LeaseStateActive {
		s.Retry(ctx, j)
	}
	return nil
}

func (s *Scheduler) completeLocked(ctx context.Context, j *job.Job, result *pb.ActionResult, status *pb.Status) {
	j.Complete(result, status)
	op := j.Operation()
	s.watcher.Publish(op)
	s.persist(ctx, j)
	delete(s.jobs, j.Name())
	metrics.JobsTotal.WithLabelValues(pb.StageCompleted.String()).Inc()
}

func (s *Scheduler) persist(ctx context.Context, j *job.Job) {
	rec := &datastore.Record{
		Name:                     j.Name(),
		ActionDigest:             j.ActionDigest(),
		DoNotCache:               j.DoNotCache(),
		Stage:                    j.Stage(),
		NTries:                   j.NTries(),
		LeaseState:               j.LeaseState(),
		Platform:                 j.Platform(),
		Priority:                 j.Priority(),
		QueuedTimestamp:          j.QueuedTimestamp(),
		WorkerStartTimestamp:     j.WorkerStartTimestamp(),
		WorkerCompletedTimestamp: j.WorkerCompletedTimestamp(),
	}
	if err := s.store.PutJob(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("job", j.Name()).Msg("failed to persist job record")
	}
}

// QueueLen reports the number of jobs currently waiting for dispatch.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Restore repopulates the in-memory queue from store at startup. Jobs in
// terminal stages are skipped; everything still QUEUED or EXECUTING is
// requeued (an EXECUTING job implies its bot session is presumed lost
// across a server restart, since no session state survives one). Restored
// jobs keep their persisted priority and queuedTimestamp, so restart does
// not disturb fairness ordering.
func (s *Scheduler) Restore(ctx context.Context) error {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		if rec.Stage != pb.StageQueued && rec.Stage != pb.StageExecuting {
			continue
		}
		j := job.Restore(job.RestoreFields{
			Name:                     rec.Name,
			ActionDigest:             rec.ActionDigest,
			DoNotCache:               rec.DoNotCache,
			Priority:                 rec.Priority,
			Platform:                 rec.Platform,
			Stage:                    pb.StageQueued,
			NTries:                   rec.NTries,
			LeaseState:               pb.LeaseStateUnspecified,
			QueuedTimestamp:          rec.QueuedTimestamp,
			WorkerStartTimestamp:     rec.WorkerStartTimestamp,
			WorkerCompletedTimestamp: rec.WorkerCompletedTimestamp,
		})
		s.jobs[j.Name()] = j
		heap.Push(&s.queue, j)
	}
	return nil
}

// StartSessionReaper launches the cron-driven sweep implemented in
// sessionreaper.go and returns a stop function.
func (s *Scheduler) StartSessionReaper(interval time.Duration, isSessionAlive func(botName string) bool, sessionJobs func() map[string][]string) (stop func()) {
	return startSessionReaper(s, interval, isSessionAlive, sessionJobs)
}
