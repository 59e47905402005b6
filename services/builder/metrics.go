package builder

import (
	"sync"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusPlans           *prometheus.CounterVec
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusPlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bountiful",
			Subsystem: "builder",
			Name:      "plans",
			Help:      "Number of transition plans built, by action and result",
		},
		[]string{"action", "result"},
	)
}

func observe(action model.Action, err error) {
	result := "ok"
	if err != nil {
		result = "refused"
	}

	prometheusPlans.WithLabelValues(string(action), result).Inc()
}
