package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "filetools"

var (
	JobsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_created_total",
			Help:      "Total number of jobs created (submitted).",
		},
		[]string{"tool"},
	)

	JobsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs reaching a terminal status.",
		},
		[]string{"tool", "status"},
	)

	JobDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Execution duration from admission to terminal status (seconds).",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"tool", "status"},
	)

	SubmissionRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_rejected_total",
			Help:      "Total number of submissions rejected by validation, labeled by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		JobsCreatedTotal,
		JobsCompletedTotal,
		JobDurationSeconds,
		SubmissionRejectedTotal,
	)
}
