// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Register()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/edgebundle/pkg/errors"
	"github.com/matzehuels/edgebundle/pkg/observability"
)

const namespace = "edgebundle"

// Metrics holds every collector. It satisfies all observability hook
// interfaces.
type Metrics struct {
	bundleRuns     *prometheus.CounterVec
	bundleDuration prometheus.Histogram
	bundleEdges    prometheus.Histogram
	bundlePairs    prometheus.Histogram
	compatFailures prometheus.Counter
	inFlight       prometheus.Gauge
	parseTotal     *prometheus.CounterVec
	parseDuration  *prometheus.HistogramVec
	renderTotal    *prometheus.CounterVec
	renderDuration prometheus.Histogram
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
}

var (
	_ observability.BundleHooks   = (*Metrics)(nil)
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		bundleRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "runs_total",
			Help:      "Bundling runs by outcome",
		}, []string{"status"}),
		bundleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "duration_seconds",
			Help:      "Wall time of a bundling run",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		bundleEdges: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "edges",
			Help:      "Edges per bundling run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		bundlePairs: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "compatible_pairs",
			Help:      "Compatible edge pairs per bundling run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		compatFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "compatibility_failures_total",
			Help:      "Edge pairs whose custom compatibility function failed",
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bundle",
			Name:      "in_flight",
			Help:      "Bundling runs in progress",
		}),
		parseTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parse_total",
			Help:      "Parsed inputs by format and outcome",
		}, []string{"format", "status"}),
		parseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parse_duration_seconds",
			Help:      "Time to decode or lay out an input",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		renderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "render_total",
			Help:      "Rendered artifacts by format and outcome",
		}, []string{"format", "status"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "render_duration_seconds",
			Help:      "Time to write all requested formats",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
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
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight",
			Help:      "HTTP requests in progress",
		}),
	}
}

// Register installs m as every global observability hook.
func (m *Metrics) Register() {
	observability.SetBundleHooks(m)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// =============================================================================
// Bundle Hooks
// =============================================================================

func (m *Metrics) OnBundleStart(_ context.Context, edges int) {
	m.inFlight.Inc()
	m.bundleEdges.Observe(float64(edges))
}

func (m *Metrics) OnBundleComplete(_ context.Context, stats observability.BundleStats, d time.Duration, err error) {
	m.inFlight.Dec()
	m.bundleRuns.WithLabelValues(status(err)).Inc()
	m.bundleDuration.Observe(d.Seconds())
	if err == nil {
		m.bundlePairs.Observe(float64(stats.Pairs))
	}
}

func (m *Metrics) OnCompatibilityFailure(_ context.Context, failures int, _ error) {
	m.compatFailures.Add(float64(failures))
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

func (m *Metrics) OnParseStart(context.Context, string, string) {}

func (m *Metrics) OnParseComplete(_ context.Context, format, _ string, _ int, d time.Duration, err error) {
	m.parseTotal.WithLabelValues(format, status(err)).Inc()
	m.parseDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		m.renderTotal.WithLabelValues(f, status(err)).Inc()
	}
	m.renderDuration.Observe(d.Seconds())
}

// =============================================================================
// Cache Hooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// status labels an outcome. Canceled runs are kept apart from failures.
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errors.ErrCodeCanceled):
		return "canceled"
	}
	return "error"
}
