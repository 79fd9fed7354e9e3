/*
Package log provides structured logging for BuildGrid using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Usage

Initializing the Logger:

	import "github.com/buildgrid/buildgrid-go/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component Loggers:

	schedulerLog := log.WithComponent("scheduler")
	schedulerLog.Info().Msg("Starting scheduler loop")

	jobLog := log.WithJobName(job.Name()).With().
		Str("action_digest", job.ActionDigest().Hash).Logger()
	jobLog.Info().Msg("Job queued")

# Integration Points

This package integrates with:

  - pkg/scheduler: logs matching, retry and session-loss decisions
  - pkg/execution: logs Execute/WaitExecution lifecycle
  - pkg/bots: logs bot session reconciliation
  - pkg/cas: logs backend I/O failures
  - pkg/api: logs the gRPC listener start (the interceptor records
    metrics only and does not log)

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component-specific loggers
  - Log errors with .Err() for stack traces

Don't:
  - Log blob bytes or secret material
  - Use Debug level in production
  - Concatenate strings into the message (use .Str, .Int)
*/
package log
