package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors exported on the monitoring port.
// Upstream calls are labelled by endpoint and status code, page renders by page and section state.
type Metrics struct {
	UpstreamRequests   *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
	PageRenders        *prometheus.CounterVec
	SnapshotRuns       *prometheus.CounterVec
	LastSuccessfulSnap prometheus.Gauge
	SnapshotDuration   prometheus.Histogram
	SessionsExpired    prometheus.Counter
	DBQueryDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_upstream_requests_total",
			Help: "Total requests sent to the task API.",
		}, []string{"endpoint", "status"}),
		UpstreamDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_upstream_request_duration_seconds",
			Help:    "Duration of requests sent to the task API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		PageRenders: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_page_renders_total",
			Help: "Rendered pages by page name and the state of their main section.",
		}, []string{"page", "state"}),
		SnapshotRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_snapshot_runs_total",
			Help: "Total KPI snapshot runs by outcome.",
		}, []string{"status"}),
		LastSuccessfulSnap: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "athena_last_successful_snapshot_timestamp",
			Help: "Unix time of the last successful KPI snapshot.",
		}),
		SnapshotDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "athena_snapshot_duration_seconds",
			Help: "How long a KPI snapshot run takes.",
		}),
		SessionsExpired: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "athena_sessions_expired_total",
			Help: "Sessions cleared after the task API answered 401.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'save_snapshot', 'list_snapshots'
	}

	metrics.SnapshotRuns.WithLabelValues("success")
	metrics.SnapshotRuns.WithLabelValues("failure")

	return metrics
}
