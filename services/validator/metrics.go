package validator

import (
	"sync"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusTransitions counts verdicts by action and result
	prometheusTransitions *prometheus.CounterVec

	// prometheusValidateTx measures whole transaction validation
	prometheusValidateTx prometheus.Histogram

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bountiful",
			Subsystem: "validator",
			Name:      "transitions",
			Help:      "Number of bounty transitions checked by the validator, by action and result",
		},
		[]string{"action", "result"},
	)

	prometheusValidateTx = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bountiful",
			Subsystem: "validator",
			Name:      "validate_tx_seconds",
			Help:      "Histogram of transaction validation",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)
}

func observe(action model.Action, err error) {
	result := "accepted"
	if err != nil {
		result = "rejected"
	}

	prometheusTransitions.WithLabelValues(string(action), result).Inc()
}
