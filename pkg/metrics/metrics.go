// Package metrics exposes the Prometheus gauges/counters/histograms the
// write path reports, and a promhttp handler for cmd/storaged to serve.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Raft metrics, per replicated partition.
	RaftLeader = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphd_raft_is_leader",
			Help: "Whether this node is the raft leader for a partition (1 = leader, 0 = follower)",
		},
		[]string{"space", "part"},
	)

	RaftAppliedIndex = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphd_raft_applied_index",
			Help: "Last applied raft log index for a partition",
		},
		[]string{"space", "part"},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphd_raft_apply_duration_seconds",
			Help:    "Time taken to commit a raft log entry",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Executor metrics.
	ExecutorOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphd_executor_outcomes_total",
			Help: "Total number of update-executor outcomes by result code",
		},
		[]string{"outcome"},
	)

	ExecutorDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphd_executor_duration_seconds",
			Help:    "Time taken by one update-executor invocation",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExecutorActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphd_executor_active",
			Help: "Number of update-executor invocations currently in flight",
		},
	)

	// Dispatcher metrics.
	DispatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphd_dispatch_requests_total",
			Help: "Total number of dispatched per-partition requests by result code",
		},
		[]string{"result"},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphd_dispatch_duration_seconds",
			Help:    "Time taken to fan a batch request out across partitions",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Lock table metrics.
	RowLockConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphd_row_lock_conflicts_total",
			Help: "Total number of row lock acquisition conflicts",
		},
	)
)

func init() {
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(ExecutorOutcomesTotal)
	prometheus.MustRegister(ExecutorDuration)
	prometheus.MustRegister(ExecutorActive)
	prometheus.MustRegister(DispatchRequestsTotal)
	prometheus.MustRegister(DispatchDuration)
	prometheus.MustRegister(RowLockConflictsTotal)
}

// Handler returns the HTTP handler that serves metrics in Prometheus'
// text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's duration for later observation against a
// histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time against histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time without recording it.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
