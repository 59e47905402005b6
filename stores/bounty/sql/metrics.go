package sql

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOperations      *prometheus.HistogramVec
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusOperations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bountiful",
			Subsystem: "bountystore",
			Name:      "operation_seconds",
			Help:      "Duration of bounty store operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"operation"},
	)
}

func observe(operation string) func() {
	timer := prometheus.NewTimer(prometheusOperations.WithLabelValues(operation))

	return func() {
		timer.ObserveDuration()
	}
}
