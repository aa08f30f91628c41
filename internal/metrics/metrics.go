package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splicer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splicer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "splicer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Job metrics
var (
	JobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splicer_jobs_submitted_total",
			Help: "Total number of jobs accepted",
		},
		[]string{"kind"},
	)

	JobsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splicer_jobs_rejected_total",
			Help: "Total number of submissions refused",
		},
		[]string{"kind", "reason"},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splicer_jobs_finished_total",
			Help: "Total number of jobs that reached a terminal state",
		},
		[]string{"kind", "state"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splicer_job_duration_seconds",
			Help:    "Job duration from submission to terminal state",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"kind"},
	)

	JobActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "splicer_job_active",
			Help: "Whether a job is currently in flight (1) or not (0)",
		},
	)

	JobProgressPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "splicer_job_progress_percent",
			Help: "Progress of the current step in percent",
		},
	)
)

// Step metrics
var (
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splicer_step_duration_seconds",
			Help:    "Engine operation duration",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300, 900, 3600},
		},
		[]string{"step", "result"},
	)
)

// Artifact metrics
var (
	ArtifactBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splicer_artifact_bytes_total",
			Help: "Bytes registered or produced in the engine namespace",
		},
		[]string{"role"},
	)

	ArtifactsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "splicer_artifacts_released_total",
			Help: "Artifacts deleted from the engine namespace",
		},
	)
)
