package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the front-end's Prometheus collectors. Each instance owns its
// registry so tests and multiple front-ends never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts gateway requests by endpoint and method.
	RequestsTotal *prometheus.CounterVec

	// RequestsFailed counts gateway requests that failed, by endpoint and method.
	RequestsFailed *prometheus.CounterVec

	// RequestDuration observes gateway request latency in seconds.
	RequestDuration *prometheus.HistogramVec

	// Searches counts search submissions by schema and outcome
	// (rejected, succeeded, failed).
	Searches *prometheus.CounterVec

	// RecordsPerSearch observes how many records each successful search returned.
	RecordsPerSearch *prometheus.HistogramVec

	// SuggestionsApplied counts suggestion lists bound to the keyword input.
	SuggestionsApplied prometheus.Counter

	// Actions counts export/download triggers by action and outcome.
	Actions *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with a fresh registry. namespace
// prefixes every metric name.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the scraping server",
		}, []string{"endpoint", "method"}),
		RequestsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_failed_total",
			Help:      "Total number of requests to the scraping server that failed",
		}, []string{"endpoint", "method"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the scraping server",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"endpoint", "method"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search submissions by schema and outcome",
		}, []string{"schema", "outcome"}),
		RecordsPerSearch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_search",
			Help:      "Number of records returned by successful searches",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"schema"}),
		SuggestionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_applied_total",
			Help:      "Total number of suggestion lists bound to the keyword input",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of export and download actions by outcome",
		}, []string{"action", "outcome"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		m.RequestsTotal,
		m.RequestsFailed,
		m.RequestDuration,
		m.Searches,
		m.RecordsPerSearch,
		m.SuggestionsApplied,
		m.Actions,
	)
	return m
}

// ObserveSearch records a search outcome. Safe on a nil receiver.
func (m *Metrics) ObserveSearch(schema, outcome string, records int) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(schema, outcome).Inc()
	if outcome == "succeeded" {
		m.RecordsPerSearch.WithLabelValues(schema).Observe(float64(records))
	}
}

// ObserveAction records an action outcome. Safe on a nil receiver.
func (m *Metrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
}

// ObserveSuggestions records a bound suggestion list. Safe on a nil receiver.
func (m *Metrics) ObserveSuggestions() {
	if m == nil {
		return
	}
	m.SuggestionsApplied.Inc()
}
