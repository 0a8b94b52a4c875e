package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters. HTTP traffic is instrumented separately by the middleware
// package; these track what the monitor does with it.
var (
	// ErrorsCaptured counts failures filed by monitored jobs, by job name.
	ErrorsCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_errors_captured_total",
			Help: "Job failures filed as pending error records.",
		},
		[]string{"function"},
	)

	// JobRuns counts successful run markers, by job name.
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_job_runs_total",
			Help: "Successful job runs recorded.",
		},
		[]string{"function"},
	)

	// Announcements counts per-day announcements by result (sent|failed).
	Announcements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_announcements_total",
			Help: "Chat announcements attempted by the batcher.",
		},
		[]string{"result"},
	)

	// RetryOutcomes counts retried jobs by result (succeeded|failed).
	RetryOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_retry_outcomes_total",
			Help: "Job re-invocations performed by retry_all, by result.",
		},
		[]string{"result"},
	)

	// Interactions counts inbound interactions by kind
	// (ping|command|component|unsupported).
	Interactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_interactions_total",
			Help: "Verified interactions handled, by kind.",
		},
		[]string{"kind"},
	)

	// Tasks counts background tasks by name and result (ok|error|panic).
	Tasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmonitor_tasks_total",
			Help: "Background tasks finished, by name and result.",
		},
		[]string{"task", "result"},
	)
)

func init() {
	prometheus.MustRegister(ErrorsCaptured, JobRuns, Announcements, RetryOutcomes, Interactions, Tasks)
}
