package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	observationsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_observations_recorded_total",
			Help: "The total number of observations persisted by the collector",
		},
		[]string{"location"},
	)
	collectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_collect_failures_total",
			Help: "The total number of per-location collection failures by stage",
		},
		[]string{"location", "stage"},
	)
	alertsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_alerts_fired_total",
			Help: "The total number of alert rules that fired",
		},
		[]string{"location"},
	)
	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_notification_failures_total",
			Help: "The total number of notifications that could not be delivered",
		},
	)
	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_collect_cycle_duration_seconds",
			Help:    "Duration of a full collection cycle over all locations",
			Buckets: prometheus.DefBuckets,
		},
	)
)
