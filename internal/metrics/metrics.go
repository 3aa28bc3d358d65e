package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codepair_connections_active",
			Help: "Number of websocket connections currently open",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codepair_sessions_active",
			Help: "Number of sessions currently held in the registry",
		},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codepair_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codepair_sessions_swept_total",
			Help: "Total number of sessions removed by the expiry sweep",
		},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codepair_events_total",
			Help: "Total number of realtime events processed",
		},
		[]string{"event"},
	)

	DroppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codepair_dropped_frames_total",
			Help: "Total number of outbound frames dropped on full client buffers",
		},
	)
)
