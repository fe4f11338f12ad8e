// internal/matching/metrics.go

package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbuddy_match_suggestion_requests_total",
			Help: "Total number of match suggestion requests by outcome",
		},
		[]string{"outcome"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitbuddy_compatibility_scores",
			Help:    "Distribution of returned compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	candidatesEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitbuddy_match_candidates_evaluated",
			Help:    "Number of candidates fetched per suggestion request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	suggestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fitbuddy_match_suggestion_duration_seconds",
			Help: "Time spent producing match suggestions",
		},
	)

	matchesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitbuddy_matches_created_total",
			Help: "Total number of match requests created",
		},
	)

	matchResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbuddy_match_responses_total",
			Help: "Total number of match responses and expirations by resulting status",
		},
		[]string{"status"},
	)
)

// recordSuggestion observes one FindPotentialMatches call
func recordSuggestion(outcome string, evaluated int, results []*ScoredCandidate, took time.Duration) {
	suggestionRequestsTotal.WithLabelValues(outcome).Inc()
	suggestionDuration.Observe(took.Seconds())
	if outcome != "ok" {
		return
	}
	candidatesEvaluated.Observe(float64(evaluated))
	for _, r := range results {
		compatibilityScores.Observe(float64(r.Score))
	}
}

func recordMatchCreated() {
	matchesCreatedTotal.Inc()
}

func recordMatchResponse(status MatchStatus, n int) {
	matchResponsesTotal.WithLabelValues(string(status)).Add(float64(n))
}
