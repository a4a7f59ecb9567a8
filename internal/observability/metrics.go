package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "natural_events"

// Metrics holds the Prometheus counters, histograms, and gauges for the event cache and pipeline.
type Metrics struct {
	// Cache metrics.
	CacheRequests    *prometheus.CounterVec // labels: result={hit,refresh,stale,unavailable}
	CacheEvents      prometheus.Gauge
	CacheLastRefresh prometheus.Gauge

	// Upstream metrics.
	UpstreamFetches       *prometheus.CounterVec // labels: outcome={success,timeout,http_error,malformed,breaker_open,error}
	UpstreamFetchDuration prometheus.Histogram
	UpstreamBreakerOpen   prometheus.Gauge

	// Classification metrics.
	EventsClassified prometheus.Counter
	EventsUnlocated  prometheus.Counter
	BatchSize        prometheus.Histogram

	// Summarizer metrics.
	SummarizerRequests *prometheus.CounterVec // labels: outcome={success,error,rate_limited,disabled}
	SummarizerDuration prometheus.Histogram

	// Poller and publishing metrics.
	PollerRunning   prometheus.Gauge
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.CacheRequests,
		m.CacheEvents,
		m.CacheLastRefresh,
		m.UpstreamFetches,
		m.UpstreamFetchDuration,
		m.UpstreamBreakerOpen,
		m.EventsClassified,
		m.EventsUnlocated,
		m.BatchSize,
		m.SummarizerRequests,
		m.SummarizerDuration,
		m.PollerRunning,
		m.EventsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Event cache reads by result.",
		}, []string{"result"}),
		CacheEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_events",
			Help:      "Number of raw events held in the cache.",
		}),
		CacheLastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful upstream refresh.",
		}),
		UpstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "EONET fetch attempts by outcome.",
		}, []string{"outcome"}),
		UpstreamFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "EONET request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		UpstreamBreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_breaker_open",
			Help:      "1 when the upstream circuit breaker is open, 0 otherwise.",
		}),
		EventsClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_classified_total",
			Help:      "Total events run through classification.",
		}),
		EventsUnlocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_unlocated_total",
			Help:      "Classified events without a usable geometry.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of events per upstream batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 50, 100, 250, 500},
		}),
		SummarizerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_requests_total",
			Help:      "Summarizer invocations by outcome.",
		}, []string{"outcome"}),
		SummarizerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarizer_duration_seconds",
			Help:      "Summarizer request duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the background poller is active, 0 when stopped.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Classified events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka batch writes.",
		}),
	}
}
