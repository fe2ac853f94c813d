package turn

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turn_transitions_total",
			Help: "Turn phase transitions by target phase",
		},
		[]string{"to"},
	)
	staleReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turn_stale_replies_total",
			Help: "Replies dropped because a newer request or session superseded them",
		},
		[]string{"kind"},
	)
	ignoredClicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turn_ignored_clicks_total",
			Help: "Clicks rejected because the cell was not interactable",
		},
	)
	resetFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turn_reset_failures_total",
			Help: "Engine reset calls that failed before a new game was begun",
		},
	)
	gamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "turn_games_finished_total",
			Help: "Games that reached an outcome",
		},
	)
)

func init() {
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(staleReplies)
	prometheus.MustRegister(ignoredClicks)
	prometheus.MustRegister(resetFailures)
	prometheus.MustRegister(gamesFinished)
}
