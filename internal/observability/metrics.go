// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Engine metrics
	SummariesComputed *prometheus.CounterVec
	PositionsOpen     *prometheus.GaugeVec
	AnomaliesFlagged  *prometheus.CounterVec
	DecodeSkips       *prometheus.CounterVec
	TickMatchRatio    *prometheus.GaugeVec

	// Source metrics
	SourceReads       *prometheus.CounterVec
	SourceReadErrors  *prometheus.CounterVec
	SourceReadLatency *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Push metrics
	ActiveSubscriptions prometheus.Gauge
	PushesDelivered     prometheus.Counter
	PushFailures        prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_dashboard"
	}

	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		SummariesComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "summaries_computed_total",
			Help:      "Total number of session summaries computed by path",
		}, []string{"config_type", "path"}),
		PositionsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "positions_open",
			Help:      "Open positions in the most recent reconstruction",
		}, []string{"config_type"}),
		AnomaliesFlagged: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "anomalies_flagged_total",
			Help:      "Total number of data-integrity anomalies flagged by kind",
		}, []string{"config_type", "kind"}),
		DecodeSkips: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "decode_skips_total",
			Help:      "Total number of malformed log lines skipped by file",
		}, []string{"config_type", "file"}),
		TickMatchRatio: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tick_match_ratio",
			Help:      "Fraction of open-position symbols matched to a tick",
		}, []string{"config_type"}),

		SourceReads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "reads_total",
			Help:      "Total number of log source reads by object kind",
		}, []string{"config_type", "kind"}),
		SourceReadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "read_errors_total",
			Help:      "Total number of log source read failures",
		}, []string{"config_type", "kind"}),
		SourceReadLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "read_latency_seconds",
			Help:      "Log source read latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"config_type"}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		}),

		ActiveSubscriptions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "active_subscriptions",
			Help:      "Number of active push subscriptions",
		}),
		PushesDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "deliveries_total",
			Help:      "Total number of summaries pushed to subscribers",
		}),
		PushFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "failures_total",
			Help:      "Total number of failed push recomputes or deliveries",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
