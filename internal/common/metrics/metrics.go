// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_planner_plans_total",
			Help: "Total number of plan requests by outcome",
		},
		[]string{"outcome", "error_code"},
	)

	PlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trip_planner_plan_duration_seconds",
			Help:    "Duration of plan generation in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	PlanRecommendations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trip_planner_plan_recommendations",
			Help:    "Number of recommendations per generated plan",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)

	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_planner_model_requests_total",
			Help: "Total number of external model calls by provider and status",
		},
		[]string{"provider", "model", "status"},
	)

	ModelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trip_planner_model_request_duration_seconds",
			Help:    "Duration of external model calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	ModelRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_planner_model_retries_total",
			Help: "Total number of retried model calls",
		},
		[]string{"provider"},
	)

	ResultViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_planner_result_views_total",
			Help: "Results view renders by state",
		},
		[]string{"state", "source"},
	)
)
