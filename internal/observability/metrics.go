package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Matches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trike",
		Name:      "matches_total",
		Help:      "Bookings successfully paired with a queued driver",
	})
	MatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trike",
		Name:      "match_failures_total",
		Help:      "Match commits rejected because the booking left PENDING",
	})
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "trike",
		Name:      "queue_depth",
		Help:      "Drivers currently waiting in the queue",
	})
	PendingTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trike",
		Name:      "pending_timeouts_total",
		Help:      "Bookings auto-cancelled after the pending timeout",
	})
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trike",
			Name:      "booking_transitions_total",
			Help:      "Committed booking status transitions",
		},
		[]string{"from", "to"},
	)
)
