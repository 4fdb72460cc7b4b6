// Package metrics provides Prometheus instrumentation for the upload and
// chart pipelines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales_visualizer"

// Metrics holds the service's instruments on a private registry, so tests
// can create as many instances as they need without collisions.
type Metrics struct {
	registry *prometheus.Registry

	UploadsAdmitted prometheus.Counter
	UploadsRejected *prometheus.CounterVec
	ChartRequests   prometheus.Counter
	ChartFallbacks  prometheus.Counter
	ScriptDuration  prometheus.Histogram
}

// New creates the metrics set on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		UploadsAdmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_admitted_total",
			Help:      "Uploads that passed validation and were persisted.",
		}),
		UploadsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rejected_total",
			Help:      "Uploads rejected by validation, by reason kind.",
		}, []string{"reason"}),
		ChartRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_requests_total",
			Help:      "Chart generation requests that reached the generator.",
		}),
		ChartFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_fallbacks_total",
			Help:      "Chart responses served from the deterministic fallback.",
		}),
		ScriptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "script_duration_seconds",
			Help:      "Wall time of external script invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
