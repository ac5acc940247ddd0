package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry. All methods
// are safe on a nil receiver so callers can run without metrics.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests       *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
	apiInflight       prometheus.Gauge
	inversions        *prometheus.CounterVec
	inversionDuration prometheus.Histogram
	simulations       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leontief_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leontief_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leontief_http_inflight",
			Help: "HTTP requests currently being served.",
		}),
		inversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leontief_inversions_total",
			Help: "Leontief inversions by result (ok, singular, error).",
		}, []string{"result"}),
		inversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leontief_inversion_duration_seconds",
			Help:    "Time spent in operations that invert I - A.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leontief_simulations_total",
			Help: "Simulations by cache outcome (hit, miss, shared, off).",
		}, []string{"cache"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.inversions,
		m.inversionDuration,
		m.simulations,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveInversion(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.inversions.WithLabelValues(result).Inc()
	m.inversionDuration.Observe(dur.Seconds())
}

func (m *Metrics) IncSimulation(cache string) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(cache).Inc()
}
