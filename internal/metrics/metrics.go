// Package metrics holds the process's Prometheus collectors.
//
// Collectors live in an explicit registry rather than the global default so
// tests can build isolated instances. Every Record method is safe on a nil
// *Metrics, which disables recording.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics is the set of roundsapi collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	QueryDuration   *prometheus.HistogramVec
	QueryErrors     *prometheus.CounterVec
	StoreUp         prometheus.Gauge
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roundsapi_requests_total",
				Help: "Total number of API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roundsapi_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roundsapi_store_query_seconds",
				Help:    "Duration of store queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		QueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roundsapi_store_query_errors_total",
				Help: "Total number of failed store queries",
			},
			[]string{"query"},
		),
		StoreUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "roundsapi_store_up",
				Help: "Whether the last store probe succeeded (1) or failed (0)",
			},
		),
	}

	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.QueryDuration,
		m.QueryErrors,
		m.StoreUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest records one finished API request.
func (m *Metrics) RecordRequest(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordQuery records one store query.
func (m *Metrics) RecordQuery(query string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		m.QueryErrors.WithLabelValues(query).Inc()
	}
}

// SetStoreUp records the outcome of a store probe.
func (m *Metrics) SetStoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.StoreUp.Set(1)
		return
	}
	m.StoreUp.Set(0)
}

type queryKey struct{}

// WithQuery labels store calls made with ctx as query.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// QueryFrom returns the query label carried by ctx, or "unnamed".
func QueryFrom(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok && q != "" {
		return q
	}
	return "unnamed"
}
