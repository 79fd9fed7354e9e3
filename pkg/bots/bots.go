// Package bots implements the RWAPI Bots service: session bookkeeping for
// worker processes that pull work from the Scheduler, grounded on the
// original server's bots/instance.py Bots and repurposing the teacher
// repo's worker/session tracking (pkg/manager node registration) for a
// lease-oriented, not a node-oriented, session model (spec §4.8).
package bots

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/metrics"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/scheduler"
)

// DefaultExpiry is how long a bot session is considered alive without a
// renewing UpdateBotSession call, matching spec §4.6's session-loss
// reaper window. It applies to every session; there is no per-session
// override.
const DefaultExpiry = 2 * time.Minute

// session is the server-side record of one connected bot.
type session struct {
	name     string
	worker   pb.Worker
	slots    int
	leases   map[string]*pb.Lease // keyed by lease ID == job name
	lastSeen time.Time
}

// Instance implements pb.BotsServer over a Scheduler, tracking one
// session per connected bot and reconciling its reported lease states on
// every UpdateBotSession call.
type Instance struct {
	mu       sync.Mutex
	sessions map[string]*session

	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

// NewInstance returns an Instance dispatching work through sched.
func NewInstance(sched *scheduler.Scheduler) *Instance {
	return &Instance{
		sessions:  make(map[string]*session),
		scheduler: sched,
		logger:    log.WithComponent("bots"),
	}
}

// CreateBotSession assigns a new session id and stores the bot's
// advertised worker properties, matching spec §4.8.
func (in *Instance) CreateBotSession(ctx context.Context, req *pb.CreateBotSessionRequest) (*pb.BotSession, error) {
	slots := req.BotSession.Slots
	if slots <= 0 {
		slots = 1
	}

	sess := &session{
		name:     uuid.NewString(),
		worker:   req.BotSession.Bot,
		slots:    slots,
		leases:   make(map[string]*pb.Lease),
		lastSeen: time.Now(),
	}

	in.mu.Lock()
	in.sessions[sess.name] = sess
	in.mu.Unlock()

	metrics.BotsConnected.Inc()
	in.logger.Info().Str("bot_session", sess.name).Int("slots", slots).Msg("bot session created")

	return &pb.BotSession{
		Name:   sess.name,
		Bot:    req.BotSession.Bot,
		Status: req.BotSession.Status,
		Slots:  slots,
	}, nil
}

// UpdateBotSession reconciles the bot's reported lease states against the
// scheduler, drops leases the server no longer considers valid, and fills
// any spare capacity with a newly-dispatched lease, matching spec §4.8.
func (in *Instance) UpdateBotSession(ctx context.Context, req *pb.UpdateBotSessionRequest) (*pb.BotSession, error) {
	in.mu.Lock()
	sess, ok := in.sessions[req.Name]
	in.mu.Unlock()
	if !ok {
		return nil, bgerrors.NotFound("no bot session named " + req.Name)
	}

	in.mu.Lock()
	sess.lastSeen = time.Now()
	in.mu.Unlock()

	respLeases := make([]*pb.Lease, 0, len(req.BotSession.Leases))
	for _, reported := range req.BotSession.Leases {
		in.mu.Lock()
		known, stillValid := sess.leases[reported.ID]
		in.mu.Unlock()

		if !stillValid {
			// The server no longer considers this lease valid (e.g. it was
			// already retried to another bot after a session-loss sweep).
			reported.State = pb.LeaseStateCancelled
			respLeases = append(respLeases, reported)
			continue
		}

		j, ok := in.scheduler.Job(reported.ID)
		if !ok {
			reported.State = pb.LeaseStateCancelled
			respLeases = append(respLeases, reported)
			in.mu.Lock()
			delete(sess.leases, reported.ID)
			in.mu.Unlock()
			continue
		}

		in.scheduler.UpdateLease(ctx, j, reported)
		metrics.LeasesTotal.WithLabelValues(reported.State.String()).Inc()

		if reported.State == pb.LeaseStateCompleted || reported.State == pb.LeaseStateCancelled {
			in.mu.Lock()
			delete(sess.leases, reported.ID)
			in.mu.Unlock()
		} else {
			known.State = reported.State
			respLeases = append(respLeases, reported)
		}
	}

	if req.BotSession.Status == pb.BotStatusOK {
		in.mu.Lock()
		capacity := sess.slots - len(sess.leases)
		in.mu.Unlock()

		for i := 0; i < capacity; i++ {
			platform := workerPlatform(sess.worker)
			j, lease, found := in.scheduler.Dispatch(ctx, platform)
			if !found {
				break
			}
			in.mu.Lock()
			sess.leases[j.Name()] = lease
			in.mu.Unlock()
			respLeases = append(respLeases, lease)
			metrics.LeasesTotal.WithLabelValues(lease.State.String()).Inc()
		}
	}

	return &pb.BotSession{
		Name:   sess.name,
		Bot:    sess.worker,
		Status: req.BotSession.Status,
		Leases: respLeases,
		Slots:  sess.slots,
	}, nil
}

// workerPlatform adapts a Worker's properties into the Platform shape the
// scheduler matches against, since the RWAPI Worker message and the REAPI
// Platform message describe the same name=value pairs under different
// names.
func workerPlatform(w pb.Worker) *pb.Platform {
	return &pb.Platform{Properties: w.Properties}
}

// IsSessionAlive reports whether botSessionName renewed within
// DefaultExpiry, for use as scheduler.Scheduler.StartSessionReaper's
// isSessionAlive callback.
func (in *Instance) IsSessionAlive(botSessionName string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	sess, ok := in.sessions[botSessionName]
	if !ok {
		return false
	}
	return time.Since(sess.lastSeen) < DefaultExpiry
}

// SessionJobs returns, for every known bot session, the job names
// currently leased to it, for use as
// scheduler.Scheduler.StartSessionReaper's sessionJobs callback.
func (in *Instance) SessionJobs() map[string][]string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make(map[string][]string, len(in.sessions))
	for name, sess := range in.sessions {
		names := make([]string, 0, len(sess.leases))
		for leaseID := range sess.leases {
			names = append(names, leaseID)
		}
		out[name] = names
	}
	return out
}

// BotsAlive returns the number of currently tracked bot sessions, for use
// as metrics.Sources.BotsAlive.
func (in *Instance) BotsAlive() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.sessions)
}

// ExpireSession removes a session that the reaper has determined is dead,
// incrementing BotSessionsExpired. Called after
// Scheduler.StartSessionReaper's sweep has already retried the session's
// in-flight leases.
func (in *Instance) ExpireSession(botSessionName string) {
	in.mu.Lock()
	_, ok := in.sessions[botSessionName]
	delete(in.sessions, botSessionName)
	in.mu.Unlock()
	if ok {
		metrics.BotsConnected.Dec()
		metrics.BotSessionsExpired.Inc()
	}
}
