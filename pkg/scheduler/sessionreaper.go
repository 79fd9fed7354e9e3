package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/buildgrid/buildgrid-go/pkg/log"
)

// startSessionReaper is adapted from the teacher repo's pkg/reconciler:
// the same "periodically compare desired vs actual state" loop shape,
// repurposed here to detect bot sessions that have gone silent past their
// lease's expected keepalive and retry whatever work they were holding
// (spec §4.7's "session loss" handling, originally driven by BotSession
// expiry rather than a raft-replicated cluster view). robfig/cron/v3
// replaces the teacher's raw time.Ticker loop since a cron expression
// gives operators a configurable sweep cadence without code changes.
//
// isSessionAlive reports whether botName has renewed its session within
// its expiry window; sessionJobs returns, for every bot session known to
// the caller, the Job names currently leased to it.
func startSessionReaper(s *Scheduler, interval time.Duration, isSessionAlive func(botName string) bool, sessionJobs func() map[string][]string) func() {
	c := cron.New()
	logger := log.WithComponent("scheduler.sessionreaper")

	spec := "@every " + interval.String()
	entryID, err := c.AddFunc(spec, func() {
		for botName, jobNames := range sessionJobs() {
			if isSessionAlive(botName) {
				continue
			}
			logger.Warn().Str("bot", botName).Int("jobs", len(jobNames)).
				Msg("bot session expired, retrying its leased jobs")
			s.CancelSession(context.Background(), jobNames)
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule session reaper, session loss will not be detected")
		return func() {}
	}
	c.Start()

	return func() {
		c.Remove(entryID)
		<-c.Stop().Done()
	}
}
