// Package metrics declares the Prometheus collectors shared by the engine,
// the catalog adapters and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendations counts served recommendation lists by scoring path
	// ("collaborative", "content", "popularity", "cold_start").
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_recommendations_total",
			Help: "Recommendation lists served, by scoring path",
		},
		[]string{"path"},
	)

	// Fallbacks counts degradations to a documented fallback.
	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_fallbacks_total",
			Help: "Degradations to a fallback, by reason",
		},
		[]string{"reason"},
	)

	MetadataFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_metadata_failures_total",
			Help: "Failed or empty metadata lookups, by operation",
		},
		[]string{"operation"},
	)

	Explanations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movierec_explanations_total",
			Help: "Explanations generated",
		},
	)

	ExplanationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_explanation_confidence",
			Help:    "Aggregate confidence of generated explanations",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_request_duration_seconds",
			Help:    "Engine operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ModelMovies is the number of movies in the loaded similarity index (0 = no model).
	ModelMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movierec_model_movies",
			Help: "Movies in the loaded similarity artifact",
		},
	)

	// TMDBRequests counts TMDB calls by endpoint and result
	// ("success", "failure", "not_found", "rejected", "cache_hit").
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_tmdb_requests_total",
			Help: "TMDB API calls by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movierec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_http_requests_total",
			Help: "HTTP requests by route pattern and status class",
		},
		[]string{"route", "status"},
	)
)
