package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/observability"
)

const namespace = "pairtree"

// Metrics exports build, cache, store and HTTP metrics in the Prometheus
// format. It implements the observability hook interfaces; call
// [Metrics.Install] to receive events from the library packages.
type Metrics struct {
	registry *prometheus.Registry

	builds         *prometheus.CounterVec
	buildDuration  *prometheus.HistogramVec
	buildNodes     prometheus.Histogram
	imports        *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: strategy, status (ok or the error code)
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "total",
			Help:      "Tree builds by strategy and outcome",
		}, []string{"strategy", "status"}),
		buildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Tree build latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"strategy"}),
		buildNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "nodes",
			Help:      "Node count of successfully built trees",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "total",
			Help:      "Tree imports from element records by outcome",
		}, []string{"status"}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Diagram renders by format and outcome",
		}, []string{"format", "status"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Diagram render latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),

		// Labels: key_type (build, render), result (hit, miss, set)
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),

		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Tree store operations by backend and outcome",
		}, []string{"backend", "op", "status"}),
		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "duration_seconds",
			Help:      "Tree store operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers m as the global build, cache and store hooks.
func (m *Metrics) Install() {
	observability.SetBuildHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (m *Metrics) OnBuildStart(context.Context, string, int) {}

func (m *Metrics) OnBuildComplete(_ context.Context, strategy string, nodeCount int, d time.Duration, err error) {
	m.builds.WithLabelValues(strategy, status(err)).Inc()
	m.buildDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err == nil {
		m.buildNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnImportComplete(_ context.Context, _ int, _ time.Duration, err error) {
	m.imports.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, status(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnStoreOp(_ context.Context, backend, op string, _ int, d time.Duration, err error) {
	st := "ok"
	if err != nil {
		st = "error"
	}
	m.storeOps.WithLabelValues(backend, op, st).Inc()
	m.storeDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *Metrics) observeRequest(method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.BuildHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.StoreHooks = (*Metrics)(nil)
)
