package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the prometheus registry and the collectors exposed
// at /metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService builds the registry and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Dashboard snapshots served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "Dashboard snapshots recomputed on cache miss.",
		}),
	}

	registry.MustRegister(s.requestDuration, s.requestTotal, s.cacheHits, s.cacheMisses)
	return s
}

// Handler exposes the registry in prometheus text format.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// CacheHit counts a snapshot served from cache.
func (s *MetricsService) CacheHit() { s.cacheHits.Inc() }

// CacheMiss counts a snapshot recomputed after a miss.
func (s *MetricsService) CacheMiss() { s.cacheMisses.Inc() }
