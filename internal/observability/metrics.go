package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for allocation submissions.
type Metrics struct {
	Submissions       *prometheus.CounterVec // labels: outcome={ok,input,encode,transport,decode,canceled}
	SubmissionsActive prometheus.Gauge
	StaleOutcomes     prometheus.Counter

	// Allocation service metrics.
	AllocatorRequests *prometheus.CounterVec // labels: status={2xx,3xx,4xx,5xx,error}
	AllocatorDuration prometheus.Histogram

	// Outcome publishing metrics.
	OutcomesPublished *prometheus.CounterVec // labels: result={success,error}
	PublishEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Submissions,
		m.SubmissionsActive,
		m.StaleOutcomes,
		m.AllocatorRequests,
		m.AllocatorDuration,
		m.OutcomesPublished,
		m.PublishEnabled,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exposed, for one-shot
// commands that have no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relief",
			Name:      "submissions_total",
			Help:      "Allocation submissions by outcome.",
		}, []string{"outcome"}),
		SubmissionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relief",
			Name:      "submissions_in_flight",
			Help:      "Submissions currently waiting on the allocation service.",
		}),
		StaleOutcomes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relief",
			Name:      "stale_outcomes_total",
			Help:      "Outcomes dropped because a newer submission had started.",
		}),
		AllocatorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relief",
			Name:      "allocator_requests_total",
			Help:      "Requests sent to the allocation service by response status class.",
		}, []string{"status"}),
		AllocatorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "relief",
			Name:      "allocator_request_duration_seconds",
			Help:      "Allocation service round-trip duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		OutcomesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relief",
			Name:      "outcomes_published_total",
			Help:      "Outcome records written to Kafka by result.",
		}, []string{"result"}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relief",
			Name:      "outcome_publishing_enabled",
			Help:      "1 when outcome publishing to Kafka is enabled, 0 otherwise.",
		}),
	}
}

// StatusClass buckets an HTTP status code for the allocator_requests_total label.
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "error"
	}
}
