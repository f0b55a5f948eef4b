package directory

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_attempts_total",
			Help: "Requests sent to directory candidates by operation, candidate index and outcome",
		},
		[]string{"operation", "candidate", "outcome"},
	)

	attemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_attempt_duration_seconds",
			Help:    "Duration of a single directory attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "outcome"},
	)

	exhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_exhausted_total",
			Help: "Fallback sequences that ended without a usable answer",
		},
		[]string{"operation", "result"},
	)
)

func recordAttempt(op string, a Attempt, seconds float64) {
	attemptsTotal.WithLabelValues(op, strconv.Itoa(a.Candidate), string(a.Outcome)).Inc()
	attemptDuration.WithLabelValues(op, string(a.Outcome)).Observe(seconds)
}
