package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_sessions_active",
			Help: "Play sessions currently held by the hub",
		},
	)
	droppedViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_dropped_views_total",
			Help: "Views not delivered because a client send buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsActive)
	prometheus.MustRegister(droppedViews)
}
