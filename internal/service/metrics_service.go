package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/training-admin-api/internal/models"
)

const metricsNamespace = "training"

// Import outcome labels.
const (
	ImportOutcomeCreated   = "created"
	ImportOutcomeFailed    = "failed"
	ImportOutcomeDuplicate = "duplicate"
	ImportOutcomeRejected  = "rejected"
	ImportOutcomeUpdated   = "updated"
)

// MetricsService owns the Prometheus registry and keeps running totals for
// the JSON snapshot served by the analytics API. All methods are safe on a
// nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	sourceFetch     *prometheus.HistogramVec
	importOutcomes  *prometheus.CounterVec

	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	fetches         atomic.Uint64
	fetchNanos      atomic.Uint64
	importsByResult map[string]*atomic.Uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_read_seconds",
			Help:      "Latency of analytics cache reads.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_write_seconds",
			Help:      "Latency of analytics cache writes.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Analytics cache lookups by result.",
		}, []string{"result"}),
		sourceFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "record_source_fetch_seconds",
			Help:      "Duration of record source queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		importOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainee_import_rows_total",
			Help: "Imported trainee rows by outcome.",
		}, []string{"outcome"}),
		importsByResult: map[string]*atomic.Uint64{
			ImportOutcomeCreated:   new(atomic.Uint64),
			ImportOutcomeFailed:    new(atomic.Uint64),
			ImportOutcomeDuplicate: new(atomic.Uint64),
			ImportOutcomeRejected:  new(atomic.Uint64),
			ImportOutcomeUpdated:   new(atomic.Uint64),
		},
	}
	m.registry.MustRegister(
		m.requestDuration, m.cacheLatency, m.cacheWrite, m.cacheLookups, m.sourceFetch, m.importOutcomes,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cache_hit_ratio",
			Help:      "Share of analytics cache lookups served from cache.",
		}, m.hitRatio),
		prometheus.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
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
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and its latency.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	m.cacheMisses.Add(1)
}

// ObserveCacheWrite tracks the duration of a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSourceFetch records how long one record source query took.
func (m *MetricsService) ObserveSourceFetch(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sourceFetch.WithLabelValues(label).Observe(duration.Seconds())
	m.fetches.Add(1)
	m.fetchNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordImportOutcome adds n rows to the counter for outcome.
func (m *MetricsService) RecordImportOutcome(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importOutcomes.WithLabelValues(outcome).Add(float64(n))
	if counter, ok := m.importsByResult[outcome]; ok {
		counter.Add(uint64(n))
	}
}

func (m *MetricsService) hitRatio() float64 {
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}

// Snapshot returns the running totals.
func (m *MetricsService) Snapshot() models.AnalyticsSystemMetrics {
	if m == nil {
		return models.AnalyticsSystemMetrics{}
	}
	requests, fetches := m.requests.Load(), m.fetches.Load()
	return models.AnalyticsSystemMetrics{
		CacheHitRatio:              m.hitRatio(),
		CacheHits:                  m.cacheHits.Load(),
		CacheMisses:                m.cacheMisses.Load(),
		RequestsTotal:              requests,
		AverageRequestDurationMs:   averageMillis(m.requestNanos.Load(), requests),
		SourceFetchCount:           fetches,
		AverageSourceFetchDuration: averageMillis(m.fetchNanos.Load(), fetches),
		ImportsCreated:             m.importsByResult[ImportOutcomeCreated].Load(),
		ImportsFailed:              m.importsByResult[ImportOutcomeFailed].Load(),
		ImportsDuplicate:           m.importsByResult[ImportOutcomeDuplicate].Load(),
		ImportsRejected:            m.importsByResult[ImportOutcomeRejected].Load(),
		ImportsUpdated:             m.importsByResult[ImportOutcomeUpdated].Load(),
		Goroutines:                 runtime.NumGoroutine(),
		GeneratedAt:                time.Now().UTC(),
	}
}
