// Package metrics exposes Prometheus instrumentation for the fetch queue,
// the upstream circuit breakers, the scheduler, and the rating engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchQueue Metrics

	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchqueue_attempts_total",
			Help: "Total number of HTTP fetch attempts issued by the fetch queue",
		},
		[]string{"call_site", "region"},
	)

	FetchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchqueue_retries_total",
			Help: "Total number of retries performed after a transient failure",
		},
		[]string{"call_site", "region"},
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchqueue_exhausted_total",
			Help: "Total number of requests that returned nil after exhausting retries",
		},
		[]string{"call_site", "region"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetchqueue_request_duration_seconds",
			Help:    "Duration of a single fetch attempt, including the ones that were retried",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call_site", "region"},
	)

	// Circuit Breaker Metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests observed by a circuit breaker",
		},
		[]string{"name", "outcome"}, // outcome: success, failure, rejected
	)

	// Rating Engine Metrics

	RatingSolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rating_solve_duration_seconds",
			Help:    "Duration of a single Elo/FFT delta solve for one contest",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"solver"}, // "elo" or "fft"
	)

	RatingSolveParticipants = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rating_solve_participants",
			Help:    "Number of attended participants passed into a rating solve",
			Buckets: []float64{100, 1000, 5000, 10000, 20000, 50000, 100000},
		},
		[]string{"solver"},
	)

	// Scheduler Metrics

	SchedulerJobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_enqueued_total",
			Help: "Total number of one-shot jobs enqueued by the scheduler",
		},
		[]string{"job"},
	)

	SchedulerJobsSkippedDuplicate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_skipped_duplicate_total",
			Help: "Total number of jobs skipped because an identical job was already in flight",
		},
		[]string{"job"},
	)

	SchedulerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of a single scheduler job run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	SchedulerTickErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_tick_errors_total",
			Help: "Total number of errors encountered while evaluating a scheduler tick",
		},
	)
)

// RecordFetchAttempt records a single fetch attempt outcome and its duration.
func RecordFetchAttempt(callSite, region string, duration time.Duration, retried bool) {
	FetchAttempts.WithLabelValues(callSite, region).Inc()
	FetchDuration.WithLabelValues(callSite, region).Observe(duration.Seconds())
	if retried {
		FetchRetries.WithLabelValues(callSite, region).Inc()
	}
}

// RecordFetchExhausted records a request that was abandoned after maxRetries.
func RecordFetchExhausted(callSite, region string) {
	FetchFailures.WithLabelValues(callSite, region).Inc()
}

// RecordRatingSolve records the duration and input size of a rating solve.
func RecordRatingSolve(solver string, participants int, duration time.Duration) {
	RatingSolveDuration.WithLabelValues(solver).Observe(duration.Seconds())
	RatingSolveParticipants.WithLabelValues(solver).Observe(float64(participants))
}
