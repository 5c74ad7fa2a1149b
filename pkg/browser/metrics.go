package browser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts browser operations.
type Metrics struct {
	Attempts *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Evidence *prometheus.CounterVec
	WaitTime *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitac",
				Subsystem: "browser",
				Name:      "attempts_total",
				Help:      "Total number of operation attempts",
			},
			[]string{"operation"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitac",
				Subsystem: "browser",
				Name:      "failures_total",
				Help:      "Total number of failed operation attempts",
			},
			[]string{"operation"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitac",
				Subsystem: "browser",
				Name:      "retries_total",
				Help:      "Total number of retries scheduled after a failed attempt",
			},
			[]string{"operation"},
		),
		Evidence: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sitac",
				Subsystem: "browser",
				Name:      "evidence_total",
				Help:      "Total number of evidence captures by result",
			},
			[]string{"result"},
		),
		WaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sitac",
				Subsystem: "browser",
				Name:      "wait_seconds",
				Help:      "Time spent waiting for elements",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
}
