// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Discovery metrics
	PoolsFetched       prometheus.Counter
	PoolsUpserted      prometheus.Counter
	PoolsSkipped       *prometheus.CounterVec
	EndpointFailures   *prometheus.CounterVec
	DiscoveryDuration  prometheus.Histogram

	// Polling metrics
	TokensPolled         prometheus.Counter
	SamplesStored        prometheus.Counter
	SamplesRejected      *prometheus.CounterVec
	TokensWithoutPairs   prometheus.Counter
	PollCycleDuration    prometheus.Histogram
	RateLimiterPending   prometheus.Gauge

	// Scoring metrics
	ScoresComputed    prometheus.Counter
	HoneypotsFlagged  prometheus.Counter

	// Retention metrics
	SamplesPruned prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulDiscovery prometheus.Gauge
	LastSuccessfulPoll      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pool_radar"
	}

	return &Metrics{
		// Discovery metrics
		PoolsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pools_fetched_total",
			Help:      "Total number of raw pool entries fetched from discovery endpoints",
		}),
		PoolsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pools_upserted_total",
			Help:      "Total number of pools upserted into the pool store",
		}),
		PoolsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pools_skipped_total",
			Help:      "Total number of pool entries skipped by reason",
		}, []string{"reason"}),
		EndpointFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "endpoint_failures_total",
			Help:      "Total number of discovery endpoint failures by endpoint",
		}, []string{"endpoint"}),
		DiscoveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "cycle_duration_seconds",
			Help:      "Discovery cycle duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Polling metrics
		TokensPolled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "tokens_polled_total",
			Help:      "Total number of tokens polled for market data",
		}),
		SamplesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "samples_stored_total",
			Help:      "Total number of price samples stored",
		}),
		SamplesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "samples_rejected_total",
			Help:      "Total number of price samples rejected by validation reason",
		}, []string{"reason"}),
		TokensWithoutPairs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "tokens_without_pairs_total",
			Help:      "Total number of polled tokens with no trading pairs",
		}),
		PollCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "cycle_duration_seconds",
			Help:      "Polling cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		RateLimiterPending: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "rate_limiter_pending_calls",
			Help:      "Number of calls currently tracked in the rate limiter window",
		}),

		// Scoring metrics
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "scores_computed_total",
			Help:      "Total number of score snapshots computed",
		}),
		HoneypotsFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "honeypots_flagged_total",
			Help:      "Total number of tokens flagged as honeypots",
		}),

		// Retention metrics
		SamplesPruned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "samples_pruned_total",
			Help:      "Total number of price samples removed by retention pruning",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulDiscovery: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_discovery_timestamp",
			Help:      "Unix timestamp of last successful discovery cycle",
		}),
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of last successful polling cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
