package source

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for provider traffic.
type Metrics struct {
	Registry      *prometheus.Registry
	CallsTotal    *prometheus.CounterVec
	CallDuration  prometheus.Histogram
	ErrorsTotal   *prometheus.CounterVec
	TimeoutsTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangamux_provider_calls_total",
			Help: "Total provider operations issued, by provider and operation.",
		},
		[]string{"provider", "op"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mangamux_provider_call_duration_seconds",
			Help:    "Latency of provider operations.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangamux_provider_errors_total",
			Help: "Total failed provider operations, by provider.",
		},
		[]string{"provider"},
	)
	timeouts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mangamux_provider_timeouts_total",
			Help: "Provider operations abandoned at the timeout boundary.",
		},
	)

	registry.MustRegister(calls, duration, errorsTotal, timeouts)

	return &Metrics{
		Registry:      registry,
		CallsTotal:    calls,
		CallDuration:  duration,
		ErrorsTotal:   errorsTotal,
		TimeoutsTotal: timeouts,
	}
}

// IncCall increments the per-provider call counter.
func (m *Metrics) IncCall(provider, op string) {
	if m == nil {
		return
	}
	m.CallsTotal.WithLabelValues(provider, op).Inc()
}

// ObserveDuration records one provider call's latency.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.CallDuration.Observe(d.Seconds())
}

// IncError increments the per-provider error counter.
func (m *Metrics) IncError(provider string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(provider).Inc()
}

// IncTimeout increments the timeout counter.
func (m *Metrics) IncTimeout() {
	if m == nil {
		return
	}
	m.TimeoutsTotal.Inc()
}
