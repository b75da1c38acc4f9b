// Package metrics provides Prometheus instrumentation for maalgodam.
//
// Wire it up once in internal/server:
//
//	r.Use(metrics.Middleware())
//	r.HandleFunc("/metrics", metrics.Handler())
//
// Then scrape http://localhost:8080/metrics from Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Built-in HTTP metrics
// ─────────────────────────────────────────────

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, route path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maalgodam",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maalgodam",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "maalgodam",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Inventory domain metrics
// ─────────────────────────────────────────────

var (
	// ItemsCreated counts inventory items created.
	ItemsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maalgodam",
		Subsystem: "inventory",
		Name:      "items_created_total",
		Help:      "Total inventory items created.",
	})

	// StockDeducted counts units of stock deducted across all items.
	StockDeducted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maalgodam",
		Subsystem: "inventory",
		Name:      "stock_deducted_total",
		Help:      "Total units of stock deducted.",
	})

	// DeductionsRejected counts deductions refused for insufficient stock.
	DeductionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "maalgodam",
		Subsystem: "inventory",
		Name:      "deductions_rejected_total",
		Help:      "Total stock deductions rejected for insufficient stock.",
	})

	// Uploads counts image uploads by outcome ("ok" | "rejected" | "failed").
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maalgodam",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Total image uploads by outcome.",
		},
		[]string{"outcome"},
	)

	// EventsPublished counts broker publishes by outcome ("ok" | "failed").
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maalgodam",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total stock events published by outcome.",
		},
		[]string{"outcome"},
	)

	// StoreQueryDuration tracks document store round-trip latency.
	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maalgodam",
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Duration of document store operations in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"operation"}, // "insert" | "find" | "update" | "delete" | "count"
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry used by maalgodam.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	// Go runtime metrics (GC, goroutines, memory)
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	// OS process metrics (CPU, open FDs)
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		ItemsCreated,
		StockDeducted,
		DeductionsRejected,
		Uploads,
		EventsPublished,
		StoreQueryDuration,
	)
}

// Register lets you add your own prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware returns an http.Handler middleware that records Prometheus
// metrics for every request: duration histogram, total counter, in-flight gauge.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path // raw path; normalize in high-cardinality APIs

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler returns an http.HandlerFunc that exposes the Prometheus metrics page.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveStoreQuery records a store operation duration with a simple timer:
//
//	defer metrics.ObserveStoreQuery("find", time.Now())
func ObserveStoreQuery(operation string, start time.Time) {
	StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
