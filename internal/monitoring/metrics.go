package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec

	// Search metrics
	SearchesTotal   *prometheus.CounterVec
	SearchDuration  *prometheus.HistogramVec
	SearchResults   prometheus.Histogram
	CandidatesTotal *prometheus.CounterVec

	// Geocoder metrics
	GeocodeRequests *prometheus.CounterVec
	GeocodeLatency  prometheus.Histogram

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	DBQueryDuration     *prometheus.HistogramVec

	// Ratings refresher
	RatingRefreshes *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
}

var (
	metrics  *Metrics
	initOnce sync.Once
)

// Init initializes all Prometheus metrics
func Init() *Metrics {
	initOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		// Search metrics
		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pawpals_searches_total",
				Help: "Total number of searches by outcome",
			},
			[]string{"result_type", "status"},
		),
		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pawpals_search_stage_duration_seconds",
				Help:    "Search pipeline stage duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"stage"},
		),
		SearchResults: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pawpals_search_results",
				Help:    "Number of results returned per search",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		CandidatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pawpals_candidates_total",
				Help: "Candidates seen per pipeline stage",
			},
			[]string{"kind", "stage"},
		),

		// Geocoder metrics
		GeocodeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pawpals_geocode_requests_total",
				Help: "Total number of geocoder lookups",
			},
			[]string{"direction", "status"},
		),
		GeocodeLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pawpals_geocode_latency_seconds",
				Help:    "Geocoder upstream latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 5},
			},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"viewer"},
		),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),

		// Database metrics
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_type"},
		),

		RatingRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pawpals_rating_refreshes_total",
				Help: "Rating summary refresh runs by outcome",
			},
			[]string{"status"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 0.5=half-open)",
			},
			[]string{"upstream"},
		),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Init()
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		// Track in-flight requests
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// Process request
		c.Next()

		// Record metrics
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordSearch records a completed search and its result count
func RecordSearch(resultType, status string, results int) {
	m := Get()
	m.SearchesTotal.WithLabelValues(resultType, status).Inc()
	if status == "ok" {
		m.SearchResults.Observe(float64(results))
	}
}

// RecordSearchStage records the duration of one pipeline stage
func RecordSearchStage(stage string, duration time.Duration) {
	Get().SearchDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCandidates adds n candidates of kind seen at stage
func RecordCandidates(kind, stage string, n int) {
	Get().CandidatesTotal.WithLabelValues(kind, stage).Add(float64(n))
}

// RecordGeocode records a geocoder lookup
func RecordGeocode(direction, status string, duration time.Duration) {
	m := Get()
	m.GeocodeRequests.WithLabelValues(direction, status).Inc()
	if duration > 0 {
		m.GeocodeLatency.Observe(duration.Seconds())
	}
}

// RecordRateLimitHit records a rate limit hit
func RecordRateLimitHit(viewer string) {
	Get().RateLimitHits.WithLabelValues(viewer).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	Get().CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	Get().CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(queryType string, duration time.Duration) {
	Get().DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// SetDBConnections sets database connection metrics
func SetDBConnections(active, idle int) {
	Get().DBConnectionsActive.Set(float64(active))
	Get().DBConnectionsIdle.Set(float64(idle))
}

// RecordRatingRefresh records a rating refresh run
func RecordRatingRefresh(status string) {
	Get().RatingRefreshes.WithLabelValues(status).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
// state: 0=closed, 1=open, 0.5=half-open
func SetCircuitBreakerState(upstream string, state float64) {
	Get().CircuitBreakerState.WithLabelValues(upstream).Set(state)
}
