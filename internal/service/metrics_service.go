package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

const metricsNamespace = "clinic"

// durationTotal accumulates a count and a summed duration for averages on the status endpoint.
type durationTotal struct {
	count atomic.Uint64
	nanos atomic.Uint64
}

func (d *durationTotal) add(duration time.Duration) {
	d.count.Add(1)
	d.nanos.Add(uint64(duration.Nanoseconds()))
}

func (d *durationTotal) averageMs() (uint64, float64) {
	count := d.count.Load()
	if count == 0 {
		return 0, 0
	}
	return count, float64(d.nanos.Load()) / float64(count) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry for HTTP traffic, the summary cache, database
// snapshots and the matching engine. All methods are safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	httpDuration  *prometheus.HistogramVec
	httpTotal     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	cacheLatency  *prometheus.HistogramVec
	dbDuration    *prometheus.HistogramVec
	matchDuration *prometheus.HistogramVec
	matchResults  *prometheus.HistogramVec
	warnings      *prometheus.CounterVec

	requests     durationTotal
	queries      durationTotal
	matchCount   atomic.Uint64
	cacheHitsN   atomic.Uint64
	cacheMissesN atomic.Uint64
}

// NewMetricsService registers the scheduler collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	m := &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template and status.",
		}, []string{"method", "path", "status"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "summary_cache_lookups_total",
			Help:      "Hours summary cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "summary_cache_seconds",
			Help:      "Latency of hours summary cache operations.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"op"}),
		dbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of labelled database loads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		matchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "matching_duration_seconds",
			Help:      "Matching evaluations including snapshot loading.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		matchResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "matching_results",
			Help:      "Candidates, days or warnings returned by a matching operation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}, []string{"operation"}),
		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scheduling_warnings_total",
			Help:      "Soft constraint warnings produced for proposed appointments.",
		}, []string{"stage"}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "summary_cache_hit_ratio",
		Help:      "Share of summary lookups served from cache.",
	}, func() float64 {
		ratio, _, _ := m.cacheRatio()
		return ratio
	})
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a summary cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHitsN.Add(1)
	} else {
		m.cacheMissesN.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
}

// ObserveCacheWrite records a summary cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records a labelled database load such as "matching.snapshot".
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.queries.add(duration)
}

// ObserveMatching records one matching evaluation and the size of its result.
func (m *MetricsService) ObserveMatching(operation string, results int, duration time.Duration) {
	if m == nil {
		return
	}
	m.matchDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.matchResults.WithLabelValues(operation).Observe(float64(results))
	m.matchCount.Add(1)
}

// RecordWarnings counts warnings emitted at a stage ("create" or "update").
func (m *MetricsService) RecordWarnings(stage string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.warnings.WithLabelValues(stage).Add(float64(count))
}

func (m *MetricsService) cacheRatio() (float64, uint64, uint64) {
	hits, misses := m.cacheHitsN.Load(), m.cacheMissesN.Load()
	if hits+misses == 0 {
		return 0, hits, misses
	}
	return float64(hits) / float64(hits+misses), hits, misses
}

// Snapshot aggregates the counters for the status endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	ratio, hits, misses := m.cacheRatio()
	requests, avgRequestMs := m.requests.averageMs()
	queries, avgQueryMs := m.queries.averageMs()
	return models.SystemMetrics{
		MatchingEvaluations:      m.matchCount.Load(),
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: avgQueryMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
