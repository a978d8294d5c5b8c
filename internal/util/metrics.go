package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_created_total",
		Help: "Total number of listings created",
	})

	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed, by initial status",
	}, []string{"status"})

	OrdersShippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_shipped_total",
		Help: "Total number of orders marked shipped",
	})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of orders with delivery confirmed",
	})

	OrdersDisputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_disputed_total",
		Help: "Total number of orders disputed",
	})

	OrdersReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_manual_review_released_total",
		Help: "Total number of orders released from manual review",
	})

	ReviewsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_recorded_total",
		Help: "Total number of reviews recorded",
	})

	TrustScoringRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trust_scoring_requests_total",
		Help: "Total number of trust scoring calls, by provider",
	}, []string{"provider"})

	TrustScoringFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trust_scoring_fallback_total",
		Help: "Total number of scoring calls resolved by the heuristic fallback",
	}, []string{"reason"})

	TrustScoringLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trust_scoring_latency_seconds",
		Help:    "Latency of trust scoring calls including fallback",
		Buckets: prometheus.DefBuckets,
	})

	AuditFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_failures_total",
		Help: "Total number of failed audit writes, by sink",
	}, []string{"sink"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by rate limiting",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
