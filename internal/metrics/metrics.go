// Package metrics exposes prometheus counters for projections served by
// sacracalc-server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sacracalc"

// Error kinds reported by RecordError.
const (
	KindInvalidInput    = "invalid_input"
	KindUnknownCurrency = "unknown_currency"
	KindPriceSource     = "price_source"
	KindInternal        = "internal"
)

// Recorder owns a private registry so tests and multiple servers never
// collide on the global default registerer.
type Recorder struct {
	registry    *prometheus.Registry
	projections *prometheus.CounterVec
	errors      *prometheus.CounterVec
	fallbacks   prometheus.Counter
}

// NewRecorder registers the sacracalc collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projections_total",
			Help:      "Projections computed, by currency.",
		}, []string{"currency"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_errors_total",
			Help:      "Projection requests rejected, by error kind.",
		}, []string{"kind"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fallbacks_total",
			Help:      "Projections that used the fallback reference price.",
		}),
	}

	r.registry.MustRegister(
		r.projections,
		r.errors,
		r.fallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RecordProjection counts one successful projection.
func (r *Recorder) RecordProjection(currency string, fallback bool) {
	r.projections.WithLabelValues(currency).Inc()
	if fallback {
		r.fallbacks.Inc()
	}
}

// RecordError counts one rejected request.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
