// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Metadata gateway
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_requests_total",
			Help: "Total number of metadata API attempts by outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, not_found, error, rejected
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_tmdb_request_duration_seconds",
			Help:    "Duration of metadata API attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TMDBRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_retries_total",
			Help: "Total number of metadata API retries",
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	MovieCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_movie_cache_hits_total",
			Help: "Total number of movie cache hits",
		},
	)

	MovieCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_movie_cache_misses_total",
			Help: "Total number of movie cache misses",
		},
	)

	// Recommendation engine
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommendations_total",
			Help: "Total number of recommendation responses by source",
		},
		[]string{"source"}, // hybrid, trending
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommendation_duration_seconds",
			Help:    "Duration of hybrid ranking in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimilarityIndexGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_similarity_index_generation",
			Help: "Generation of the published similarity index snapshot",
		},
	)

	SimilarityIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_similarity_index_movies",
			Help: "Number of movies in the similarity index",
		},
	)

	// Interactions
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_interactions_total",
			Help: "Total number of interaction writes by kind and result",
		},
		[]string{"kind", "result"}, // result: added, removed, recorded, deduplicated
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordTMDBAttempt records the outcome and latency of one metadata API attempt.
func RecordTMDBAttempt(endpoint, outcome string, d time.Duration) {
	TMDBRequests.WithLabelValues(endpoint, outcome).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordSimilarityRebuild publishes the current similarity index shape.
func RecordSimilarityRebuild(generation uint64, size int) {
	SimilarityIndexGeneration.Set(float64(generation))
	SimilarityIndexSize.Set(float64(size))
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
