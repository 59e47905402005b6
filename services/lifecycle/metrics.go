package lifecycle

import (
	"sync"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusSubmissions     *prometheus.HistogramVec
	prometheusOutcomes        *prometheus.CounterVec
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusSubmissions = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bountiful",
			Subsystem: "lifecycle",
			Name:      "submission_seconds",
			Help:      "Time from reading a bounty to the ledger accepting its transition",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"action"},
	)

	prometheusOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bountiful",
			Subsystem: "lifecycle",
			Name:      "outcomes",
			Help:      "Number of transitions attempted, by action and outcome",
		},
		[]string{"action", "outcome"},
	)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, errors.ErrStaleRecord):
		return "stale"
	case errors.Is(err, errors.ErrLedgerRejected):
		return "rejected"
	case errors.IsPreconditionError(err):
		return "refused"
	default:
		return "failed"
	}
}

func observe(action model.Action, start time.Time, err error) {
	prometheusOutcomes.WithLabelValues(string(action), outcome(err)).Inc()

	if err == nil {
		prometheusSubmissions.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())
	}
}
