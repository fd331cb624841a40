// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	EligibilityEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_evaluations_total",
			Help: "Eligibility evaluations by mode (single, batch) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	SchemeMatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheme_match_duration_seconds",
			Help:    "Duration of an eligibility evaluation including explanations",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ExplanationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explanation_fallbacks_total",
			Help: "Explanations replaced by a deterministic fallback",
		},
		[]string{"mode", "reason"},
	)

	CatalogCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Scheme catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)
