package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Job/Lease lifecycle metrics
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildgrid_jobs_total",
			Help: "Total number of jobs by terminal stage or outcome",
		},
		[]string{"stage"},
	)

	LeasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildgrid_leases_total",
			Help: "Total number of leases by state",
		},
		[]string{"state"},
	)

	QueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildgrid_scheduler_queue_length",
			Help: "Number of jobs currently waiting for dispatch",
		},
	)

	SchedulingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buildgrid_scheduling_latency_seconds",
			Help:    "Time from job enqueue to dispatch in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CAS metrics
	CASBytesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildgrid_cas_bytes_stored",
			Help: "Approximate total bytes held by the CAS backend",
		},
	)

	CASBlobsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildgrid_cas_blobs_written_total",
			Help: "Total number of blobs written to CAS, by backend",
		},
		[]string{"backend"},
	)

	BytestreamReadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buildgrid_bytestream_read_duration_seconds",
			Help:    "Time taken to stream a blob read to completion",
			Buckets: prometheus.DefBuckets,
		},
	)

	BytestreamWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buildgrid_bytestream_write_duration_seconds",
			Help:    "Time taken to stream a blob write to completion",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Action cache metrics
	ActionCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buildgrid_action_cache_hits_total",
			Help: "Total number of action cache hits",
		},
	)

	ActionCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buildgrid_action_cache_misses_total",
			Help: "Total number of action cache misses",
		},
	)

	// Bot session metrics
	BotsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildgrid_bots_connected",
			Help: "Number of bot sessions currently considered alive",
		},
	)

	BotSessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buildgrid_bot_sessions_expired_total",
			Help: "Total number of bot sessions reaped for exceeding their lease expiry",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildgrid_api_requests_total",
			Help: "Total number of RPCs by method and status code",
		},
		[]string{"method", "code"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildgrid_api_request_duration_seconds",
			Help:    "RPC duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(LeasesTotal)
	prometheus.MustRegister(QueueLength)
	prometheus.MustRegister(SchedulingLatency)
	prometheus.MustRegister(CASBytesStored)
	prometheus.MustRegister(CASBlobsWritten)
	prometheus.MustRegister(BytestreamReadDuration)
	prometheus.MustRegister(BytestreamWriteDuration)
	prometheus.MustRegister(ActionCacheHits)
	prometheus.MustRegister(ActionCacheMisses)
	prometheus.MustRegister(BotsConnected)
	prometheus.MustRegister(BotSessionsExpired)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations, adapted unchanged from the
// teacher repo's pkg/metrics.Timer.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
