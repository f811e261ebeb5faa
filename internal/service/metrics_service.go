package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// generation pipeline.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationTotal      *prometheus.CounterVec
	generationDuration   prometheus.Histogram
	generationQuality    prometheus.Histogram
	unassignedSessions   prometheus.Counter
	patternUpsertedTotal *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generations_total",
		Help: "Total timetable generation runs by outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Duration of timetable generation runs",
		Buckets: prometheus.DefBuckets,
	})

	generationQuality := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_quality_score",
		Help:    "Quality score distribution of generated timetables",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	unassignedSessions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_unassigned_sessions_total",
		Help: "Total session units the engine failed to place",
	})

	patternUpsertedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "learned_pattern_upserts_total",
		Help: "Total learned pattern upserts by pattern type",
	}, []string{"type"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationTotal, generationDuration, generationQuality, unassignedSessions, patternUpsertedTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		generationTotal:      generationTotal,
		generationDuration:   generationDuration,
		generationQuality:    generationQuality,
		unassignedSessions:   unassignedSessions,
		patternUpsertedTotal: patternUpsertedTotal,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveGeneration records the outcome of one generation run.
func (s *MetricsService) ObserveGeneration(outcome string, duration time.Duration, quality float64, unassigned int) {
	s.generationTotal.WithLabelValues(outcome).Inc()
	s.generationDuration.Observe(duration.Seconds())
	if outcome == "success" {
		s.generationQuality.Observe(quality)
	}
	if unassigned > 0 {
		s.unassignedSessions.Add(float64(unassigned))
	}
}

// ObservePatternUpsert counts a learned pattern write.
func (s *MetricsService) ObservePatternUpsert(patternType string) {
	s.patternUpsertedTotal.WithLabelValues(patternType).Inc()
}

// ObserveCacheHit counts a pattern cache hit.
func (s *MetricsService) ObserveCacheHit() {
	s.cacheHits.Inc()
}

// ObserveCacheMiss counts a pattern cache miss.
func (s *MetricsService) ObserveCacheMiss() {
	s.cacheMisses.Inc()
}
