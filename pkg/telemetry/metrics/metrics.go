// Package metrics exposes Prometheus instrumentation for the router
// and provider adapters: invocation counts and latency, fallback
// transitions, availability probe results, and token usage.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. All methods are safe for concurrent
// use; a nil *Metrics is a no-op so callers can leave instrumentation
// unconfigured.
type Metrics struct {
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	probes      *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
}

// New creates and registers the collectors. If registry is nil, a
// fresh one is created.
func New(namespace string, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "LLM invocations by provider, model, and outcome",
			},
			[]string{"provider", "model", "outcome"},
		),

		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Fallback transitions between chain entries",
			},
			[]string{"from_provider", "to_provider"},
		),

		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_probes_total",
				Help:      "Availability probe results by provider and model",
			},
			[]string{"provider", "model", "result"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "End-to-end invocation latency",
				// LLM calls routinely run tens of seconds.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),

		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Token usage by provider, model, and kind",
			},
			[]string{"provider", "model", "kind"},
		),
	}

	registry.MustRegister(m.invocations, m.fallbacks, m.probes, m.latency, m.tokens)
	return m
}

// RecordInvocation records one completed invocation attempt.
func (m *Metrics) RecordInvocation(provider, model, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(provider, model, outcome).Inc()
	m.latency.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordFallback records a transition from one chain entry to the next.
func (m *Metrics) RecordFallback(fromProvider, toProvider string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(fromProvider, toProvider).Inc()
}

// RecordProbe records an availability probe result.
func (m *Metrics) RecordProbe(provider, model string, available bool) {
	if m == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	m.probes.WithLabelValues(provider, model, result).Inc()
}

// RecordTokens records token usage for a successful invocation.
func (m *Metrics) RecordTokens(provider, model string, input, output, thinking int) {
	if m == nil {
		return
	}
	if input > 0 {
		m.tokens.WithLabelValues(provider, model, "input").Add(float64(input))
	}
	if output > 0 {
		m.tokens.WithLabelValues(provider, model, "output").Add(float64(output))
	}
	if thinking > 0 {
		m.tokens.WithLabelValues(provider, model, "thinking").Add(float64(thinking))
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
