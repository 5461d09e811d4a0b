// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Commands handled, by command name and outcome kind ("ok" on success).
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_commands_total",
			Help: "Commands handled by the command bridge",
		},
		[]string{"command", "result"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habits_command_duration_seconds",
			Help:    "Command handling duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"command"},
	)

	UserPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habits_user_points",
		Help: "Current clamped point total of the user",
	})

	// Raw deltas applied through point updates, split by sign.
	PointDeltasTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_point_deltas_total",
			Help: "Sum of absolute raw point deltas applied, by sign",
		},
		[]string{"sign"},
	)

	DecayTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habits_decay_ticks_total",
		Help: "Inactivity decay ticks applied to the user",
	})
)

// ObserveCommand records one handled command.
func ObserveCommand(command, result string, took time.Duration) {
	CommandsTotal.WithLabelValues(command, result).Inc()
	CommandDuration.WithLabelValues(command).Observe(took.Seconds())
}

// ObserveDelta records one raw point delta.
func ObserveDelta(delta int16) {
	switch {
	case delta > 0:
		PointDeltasTotal.WithLabelValues("positive").Add(float64(delta))
	case delta < 0:
		PointDeltasTotal.WithLabelValues("negative").Add(-float64(delta))
	}
}
