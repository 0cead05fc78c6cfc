package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP request metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets, // [0.005..10]
		},
		[]string{"method", "path", "status"},
	)
)

// Admission gate metrics.
var (
	admissionInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "admission_slots_in_use",
		Help: "Admission gate slots currently held.",
	})

	admissionRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admission_rejections_total",
		Help: "Requests rejected by the admission gate after the wait timeout.",
	})

	admissionWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "admission_wait_seconds",
		Help:    "Time spent waiting for an admission slot.",
		Buckets: []float64{.001, .005, .025, .1, .5, 1, 2.5, 5, 10},
	})
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		admissionInUse, admissionRejections, admissionWait,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAdmission records a single pass through the admission gate.
func ObserveAdmission(wait time.Duration, rejected bool) {
	admissionWait.Observe(wait.Seconds())
	if rejected {
		admissionRejections.Inc()
	}
}

// SetAdmissionInUse reports the number of slots currently held.
func SetAdmissionInUse(n int64) {
	admissionInUse.Set(float64(n))
}

// CanonicalPath collapses per-entity path segments so metric cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, "/users/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/users/:id"
	}
	return path
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code written by downstream handlers.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
