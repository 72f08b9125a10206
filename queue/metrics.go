package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Entries currently waiting for service
	queueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_queue_length",
			Help: "Number of customers currently waiting in the service queue",
		},
	)

	queueEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_queue_enqueued_total",
			Help: "Total number of customers added to the service queue",
		},
	)

	// Check-ins whose MDN did not resolve to a customer
	queueDroppedCheckIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_queue_dropped_checkins_total",
			Help: "Total number of check-in events dropped because no customer was found",
		},
	)

	queueResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_queue_resolved_total",
			Help: "Total number of queue entries resolved, partitioned by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	outcomeAssist = "assist"
	outcomeRemove = "remove"
	outcomeRemote = "remote"
)
