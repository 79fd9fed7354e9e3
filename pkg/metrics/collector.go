package metrics

import "time"

// Sources abstracts the handful of read-only queries the Collector polls
// periodically, so pkg/metrics does not need to import pkg/scheduler /
// pkg/cas / pkg/bots directly (avoiding an import cycle, since those
// packages in turn call into metrics counters on the hot path).
type Sources struct {
	QueueLength  func() int
	BotsAlive    func() int
	CASByteCount func() int64
}

// Collector polls Sources on an interval and republishes them as gauges,
// adapted from the teacher repo's pkg/metrics.Collector (same
// ticker-driven poll loop), rescoped from cluster/Raft state to
// BuildGrid's scheduler/bot/CAS state.
type Collector struct {
	sources Sources
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector over sources.
func NewCollector(sources Sources) *Collector {
	return &Collector{sources: sources, stopCh: make(chan struct{})}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.sources.QueueLength != nil {
		QueueLength.Set(float64(c.sources.QueueLength()))
	}
	if c.sources.BotsAlive != nil {
		BotsConnected.Set(float64(c.sources.BotsAlive()))
	}
	if c.sources.CASByteCount != nil {
		CASBytesStored.Set(float64(c.sources.CASByteCount()))
	}
}
