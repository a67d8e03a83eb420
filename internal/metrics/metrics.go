package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_readings_total",
			Help: "Total readings consumed from the bus",
		},
		[]string{"status"}, // processed, rejected, failed
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_notifications_total",
			Help: "Total alert notifications dispatched",
		},
		[]string{"provider", "status"}, // status: sent, failed
	)

	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_store_write_failures_total",
			Help: "Document store write failures by document kind",
		},
		[]string{"kind"}, // status, history, error_state
	)

	ConfigPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_config_pushes_total",
			Help: "Configuration pushes relayed to devices",
		},
		[]string{"status"}, // sent, failed
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_ingest_queue_depth",
			Help: "Readings waiting in the ingest queue",
		},
	)
)
