// Package datastore persists Job and Lease records so the scheduler and
// bot-session layer survive a server restart (spec §4.6). It defines a
// single Store interface with three interchangeable backends: an
// in-memory map (tests, single-process ephemeral deployments), an
// embedded bbolt database (adapted from the teacher repo's
// pkg/storage.BoltStore), and a SQL backend over sqlx (Postgres via
// lib/pq, sqlite3 via mattn/go-sqlite3).
package datastore

import (
	"context"
	"time"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// Record is the persisted projection of a job.Job: enough state to
// reconstruct scheduler queue position and lease bookkeeping after a
// restart. It intentionally excludes the live subscriber channels, which
// are process-local (spec §4.8 notes watchers do not survive a restart).
type Record struct {
	Name                     string           `json:"name"`
	ActionDigest             pb.Digest        `json:"action_digest"`
	DoNotCache               bool             `json:"do_not_cache"`
	Stage                    pb.ExecuteStage  `json:"stage"`
	NTries                   int              `json:"n_tries"`
	LeaseState               pb.LeaseState    `json:"lease_state"`
	Result                   *pb.ActionResult `json:"result,omitempty"`
	Status                   *pb.Status       `json:"status,omitempty"`
	Platform                 *pb.Platform     `json:"platform,omitempty"`
	Priority                 int32            `json:"priority"`
	QueuedTimestamp          time.Time        `json:"queued_timestamp,omitempty"`
	WorkerStartTimestamp     time.Time        `json:"worker_start_timestamp,omitempty"`
	WorkerCompletedTimestamp time.Time        `json:"worker_completed_timestamp,omitempty"`
}

// Store is the persistence contract every backend implements.
type Store interface {
	// PutJob upserts a Record keyed by its Name.
	PutJob(ctx context.Context, rec *Record) error
	// GetJob returns the Record for name, or bgerrors NotFound.
	GetJob(ctx context.Context, name string) (*Record, error)
	// DeleteJob removes a Record. Deleting a missing Record is a no-op.
	DeleteJob(ctx context.Context, name string) error
	// ListQueued returns every Record with Stage == StageQueued. The
	// memory and bolt backends preserve insertion order; the SQL backend
	// makes no ordering guarantee (restart-time requeueing only needs
	// every queued job back, not byte-identical FIFO order).
	ListQueued(ctx context.Context) ([]*Record, error)
	// ListAll returns every persisted Record, for restart-time restore
	// (Scheduler.Restore), diagnostics and migration tooling.
	ListAll(ctx context.Context) ([]*Record, error)
	// Close releases backend resources (file handles, connection pools).
	Close() error
}
