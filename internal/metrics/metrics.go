// Package metrics provides Prometheus metrics for the recommendation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder holds the service metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	// Cache metrics
	cacheLookups *prometheus.CounterVec

	// Recommendation metrics
	recommendations        prometheus.Counter
	recommendationDuration prometheus.Histogram

	// Ingestion metrics
	ingested prometheus.Counter

	// Index metrics
	indexRebuilds        prometheus.Counter
	indexRebuildFailures prometheus.Counter
	indexEntries         prometheus.Gauge
}

// NewRecorder creates and registers all metrics on a fresh registry,
// together with the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "related_cache_lookups_total",
			Help: "Recommendation cache lookups by result (hit, miss, stale)",
		}, []string{"result"}),
		recommendations: factory.NewCounter(prometheus.CounterOpts{
			Name: "related_recommendations_total",
			Help: "Total number of recommendation requests served",
		}),
		recommendationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "related_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		ingested: factory.NewCounter(prometheus.CounterOpts{
			Name: "related_posts_ingested_total",
			Help: "Total number of posts ingested",
		}),
		indexRebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "related_index_rebuilds_total",
			Help: "Total number of successful vector index rebuilds",
		}),
		indexRebuildFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "related_index_rebuild_failures_total",
			Help: "Total number of failed vector index rebuilds",
		}),
		indexEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "related_index_entries",
			Help: "Number of entries in the vector index after the last rebuild",
		}),
	}
}

// CacheHit records a fresh cache entry being served.
func (r *Recorder) CacheHit() { r.cacheLookups.WithLabelValues("hit").Inc() }

// CacheMiss records a lookup with no cache entry.
func (r *Recorder) CacheMiss() { r.cacheLookups.WithLabelValues("miss").Inc() }

// CacheStale records a lookup that found an expired entry.
func (r *Recorder) CacheStale() { r.cacheLookups.WithLabelValues("stale").Inc() }

// RecommendationServed records a completed recommendation request.
func (r *Recorder) RecommendationServed(d time.Duration) {
	r.recommendations.Inc()
	r.recommendationDuration.Observe(d.Seconds())
}

// Ingested records a successfully stored post.
func (r *Recorder) Ingested() { r.ingested.Inc() }

// IndexRebuilt records a successful rebuild and the resulting index size.
func (r *Recorder) IndexRebuilt(entries int) {
	r.indexRebuilds.Inc()
	r.indexEntries.Set(float64(entries))
}

// IndexRebuildFailed records a failed rebuild.
func (r *Recorder) IndexRebuildFailed() { r.indexRebuildFailures.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
