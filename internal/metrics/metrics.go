package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"benchtrack/internal/benchdata"
)

const namespace = "benchtrack"

// unmatchedPath labels requests that no route pattern matched.
const unmatchedPath = "unmatched"

// Metrics represents the collection of all Prometheus metrics.
// Each instance owns its registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Standard metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dataset metrics
	BenchValue *prometheus.GaugeVec
	Entries    *prometheus.GaugeVec
	LastUpdate prometheus.Gauge
	Appends    *prometheus.CounterVec
	Alerts     *prometheus.CounterVec
}

// NewMetrics creates and registers all standard and dataset metrics.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.BenchValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bench_value",
			Help:      "Value of each benchmark in the latest entry of a key",
		},
		[]string{"key", "name", "unit"},
	)

	m.Entries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Number of recorded entries per key",
		},
		[]string{"key"},
	)

	m.LastUpdate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_timestamp_ms",
			Help:      "lastUpdate of the data file in epoch milliseconds",
		},
	)

	m.Appends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Total number of entries appended",
		},
		[]string{"key"},
	)

	m.Alerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of regression alerts raised",
		},
		[]string{"key"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BenchValue,
		m.Entries,
		m.LastUpdate,
		m.Appends,
		m.Alerts,
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe refreshes the dataset gauges from ds. Bench values come from the
// latest entry of every key; stale series from earlier calls are dropped.
func (m *Metrics) Observe(ds *benchdata.Dataset) {
	m.BenchValue.Reset()
	m.Entries.Reset()
	m.LastUpdate.Set(float64(ds.LastUpdate))

	for _, key := range ds.Keys() {
		m.Entries.WithLabelValues(key).Set(float64(ds.Len(key)))
		latest, ok := ds.Latest(key)
		if !ok {
			continue
		}
		for _, b := range latest.Benches {
			m.BenchValue.WithLabelValues(key, b.Name, b.Unit).Set(b.Value)
		}
	}
}

// RecordAppend counts one appended entry and its alerts.
func (m *Metrics) RecordAppend(key string, alerts int) {
	m.Appends.WithLabelValues(key).Inc()
	if alerts > 0 {
		m.Alerts.WithLabelValues(key).Add(float64(alerts))
	}
}

// Middleware for tracking HTTP requests
func (m *Metrics) RequestTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// unmatched routes share one series
		path := r.Pattern
		if path == "" {
			path = unmatchedPath
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Handler returns the Prometheus HTTP handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
