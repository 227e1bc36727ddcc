package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets optimized for API response times ranging from
	// milliseconds to 30+ seconds. Provides better granularity for storage
	// uploads and cache refresh operations.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	PostgresRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	PostgresRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics (photo uploads)
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	RestaurantSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_restaurant_searches_total",
			Help: "Total number of restaurant search requests",
		},
		[]string{"status"},
	)

	RestaurantsMatched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastebud_restaurants_matched",
			Help:    "Number of restaurants returned after filter matching",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
		},
		[]string{"filter_kind"}, // "daily", "combined"
	)

	RatingFlowSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_rating_flow_sessions_total",
			Help: "Total number of rating flow sessions by outcome",
		},
		[]string{"outcome"}, // "started", "completed", "abandoned", "expired"
	)

	RatingFlowSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_rating_flow_steps_total",
			Help: "Total number of rating flow step transitions",
		},
		[]string{"step", "direction"}, // direction: "forward", "back"
	)

	RatingSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_rating_submissions_total",
			Help: "Total number of rating flow submissions",
		},
		[]string{"status"},
	)

	RatingSubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tastebud_rating_submission_duration_seconds",
			Help:    "Rating submission duration in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tastebud_points_awarded_total",
			Help: "Total points awarded through rating flow completions",
		},
	)

	PhotoUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_photo_uploads_total",
			Help: "Total number of photo uploads",
		},
		[]string{"kind", "status"}, // kind: "dish", "restaurant"
	)

	PreferenceUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastebud_preference_updates_total",
			Help: "Total number of permanent filter preference updates",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
