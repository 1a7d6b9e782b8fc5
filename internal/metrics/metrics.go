package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vytor/mathflash/internal/adaptive"
	"github.com/vytor/mathflash/internal/difficulty"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathflash_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mathflash_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathflash_decisions_total",
			Help: "Difficulty decisions by transition",
		},
		[]string{"transition"},
	)

	DecisionScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mathflash_decision_score",
			Help:    "Distribution of decision scores",
			Buckets: []float64{0, 30, 40, 60, 70, 90, 100},
		},
	)

	Attempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathflash_attempts_total",
			Help: "Answered puzzles by difficulty and correctness",
		},
		[]string{"difficulty", "correct"},
	)

	PuzzlesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathflash_puzzles_issued_total",
			Help: "Puzzles generated by difficulty",
		},
		[]string{"difficulty"},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mathflash_sessions_started_total",
			Help: "Total number of practice sessions started",
		},
	)

	SessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mathflash_sessions_closed_total",
			Help: "Sessions completed, by reason",
		},
		[]string{"reason"},
	)
)

// Session close reasons.
const (
	ReasonLimit = "limit"
	ReasonEnded = "ended"
	ReasonIdle  = "idle"
)

// ObserveDecision records one scored answer.
func ObserveDecision(level difficulty.Level, correct bool, r adaptive.Result) {
	Decisions.WithLabelValues(string(r.Transition)).Inc()
	DecisionScore.Observe(float64(r.Score))
	Attempts.WithLabelValues(level.String(), strconv.FormatBool(correct)).Inc()
}
