package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WSConnections is the number of live room subscriptions.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voteapp_ws_connections",
		Help: "Live websocket connections across all rooms.",
	})

	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voteapp_events_broadcast_total",
		Help: "Room events fanned out, by event type.",
	}, []string{"type"})

	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voteapp_deliveries_dropped_total",
		Help: "Frames not queued to a connection because it was slow or closed.",
	})

	TimersArmed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voteapp_poll_timers_armed",
		Help: "Poll auto-stop timers currently armed.",
	})

	TimerFires = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voteapp_poll_timer_fires_total",
		Help: "Poll timer firings, by outcome (stopped, stale, inactive, error).",
	}, []string{"outcome"})

	Votes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voteapp_votes_total",
		Help: "Vote attempts, by result.",
	}, []string{"result"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
