// Package metrics exposes prometheus counters for bracket generation and
// result propagation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BracketsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "elim_bracket",
		Name:      "brackets_generated_total",
		Help:      "Brackets built and persisted.",
	})

	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "elim_bracket",
		Name:      "matches_created_total",
		Help:      "Match records written by bracket generation.",
	})

	ResultsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elim_bracket",
		Name:      "results_reported_total",
		Help:      "Match results committed, by round label.",
	}, []string{"round"})

	Advancements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elim_bracket",
		Name:      "advancements_total",
		Help:      "Winner advancement attempts into a downstream match.",
	}, []string{"outcome"})
)

const (
	AdvanceFilled  = "filled"
	AdvanceSkipped = "skipped"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
