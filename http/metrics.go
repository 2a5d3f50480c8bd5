package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the request collectors of one server.
type Metrics struct {
	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the request collectors, plus the Go runtime and
// process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "drivedav",
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drivedav",
			Name:      "http_requests_total",
			Help:      "Requests served, by status code and method.",
		}, []string{"code", "method"}),
		// Labelled by method only; paths are unbounded.
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "drivedav",
			Name:      "http_request_duration_seconds",
			Help:      "Request latencies, by method.",
			Buckets:   []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware instruments next with the request collectors.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	davMethods := promhttp.WithExtraMethods(MethodPropfind, MethodMkcol, MethodCopy, MethodMove)
	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.duration,
			promhttp.InstrumentHandlerCounter(m.requests, next, davMethods),
			davMethods,
		),
	)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
