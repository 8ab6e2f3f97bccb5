// Package metrics provides Prometheus metrics for the crosswalk and
// drift engine: detection counts, gap counts, pass durations, and HTTP
// request instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector manages the engine's Prometheus metrics
type Collector struct {
	registry *prometheus.Registry

	// HTTP surface
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	// Engine business metrics
	driftDetected    *prometheus.CounterVec
	driftResolved    prometheus.Counter
	gapsIdentified   *prometheus.CounterVec
	openDriftRecords prometheus.Gauge
	openGapRecords   prometheus.Gauge
	passDuration     *prometheus.HistogramVec
	activations      prometheus.Counter
}

// CollectorConfig defines metrics collector configuration
type CollectorConfig struct {
	// Namespace for all metrics
	Namespace string

	// Include Go runtime and process collectors
	EnableRuntimeMetrics bool
}

// NewCollector creates the collector and registers all metrics
func NewCollector(cfg CollectorConfig) *Collector {
	registry := prometheus.NewRegistry()

	if cfg.EnableRuntimeMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	factory := promauto.With(registry)
	ns := cfg.Namespace

	return &Collector{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		driftDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "drift_records_detected_total",
			Help:      "Drift records detected, by drift type and severity",
		}, []string{"drift_type", "severity"}),
		driftResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "drift_records_resolved_total",
			Help:      "Drift records resolved",
		}),
		gapsIdentified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "gaps_identified_total",
			Help:      "Gap records produced by recalculation passes, by gap type",
		}, []string{"gap_type"}),
		openDriftRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "open_drift_records",
			Help:      "Drift records currently awaiting resolution",
		}),
		openGapRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "open_gap_records",
			Help:      "Gap records currently open",
		}),
		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "engine_pass_duration_seconds",
			Help:      "Duration of full recomputation passes",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		}, []string{"pass"}),
		activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "version_activations_total",
			Help:      "Framework version activations",
		}),
	}
}

// ObserveHTTP records one HTTP request
func (c *Collector) ObserveHTTP(method, path, status string, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, status).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// DriftDetected records a newly detected drift record
func (c *Collector) DriftDetected(driftType, severity string) {
	c.driftDetected.WithLabelValues(driftType, severity).Inc()
}

// DriftResolved records one resolved drift record
func (c *Collector) DriftResolved() {
	c.driftResolved.Inc()
}

// GapIdentified records one gap produced by a recalculation pass
func (c *Collector) GapIdentified(gapType string) {
	c.gapsIdentified.WithLabelValues(gapType).Inc()
}

// SetOpenDrift updates the open drift record gauge
func (c *Collector) SetOpenDrift(n int) {
	c.openDriftRecords.Set(float64(n))
}

// SetOpenGaps updates the open gap record gauge
func (c *Collector) SetOpenGaps(n int) {
	c.openGapRecords.Set(float64(n))
}

// ObservePass records the duration of a recomputation pass
// (pass is "gap_recalc" or "drift_scan")
func (c *Collector) ObservePass(pass string, duration time.Duration) {
	c.passDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

// VersionActivated records one framework version activation
func (c *Collector) VersionActivated() {
	c.activations.Inc()
}

// Handler returns the HTTP handler exposing the registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
