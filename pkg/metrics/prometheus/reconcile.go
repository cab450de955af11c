// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces declared by smbm components.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/smbmanager/pkg/metrics"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

// applyBuckets covers a single `net conf` call up to a long apply across
// many keys, in milliseconds.
var applyBuckets = []float64{
	5,     // one setparm on a warm registry
	25,    //
	100,   //
	250,   //
	1000,  // 1s
	3200,  // default command timeout
	10000, // 10s - many keys
	30000, // 30s
}

// reconcileMetrics is the Prometheus implementation of reconcile.Metrics.
type reconcileMetrics struct {
	appliesTotal  *prometheus.CounterVec
	applyDuration *prometheus.HistogramVec
	stepsTotal    *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
}

// NewReconcileMetrics creates Prometheus-backed apply metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewReconcileMetrics() reconcile.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &reconcileMetrics{
		appliesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "applies_total",
				Help:      "Total number of apply runs by final state",
			},
			[]string{"state"},
		),
		applyDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "apply_duration_milliseconds",
				Help:      "Duration of apply runs in milliseconds",
				Buckets:   applyBuckets,
			},
			[]string{"state"},
		),
		stepsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "apply_steps_total",
				Help:      "Total number of apply sink calls by step and status",
			},
			[]string{"step", "status"},
		),
		stepDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "apply_step_duration_milliseconds",
				Help:      "Duration of apply sink calls in milliseconds",
				Buckets:   applyBuckets,
			},
			[]string{"step"},
		),
	}
}

func (m *reconcileMetrics) ObserveApply(state reconcile.State, duration time.Duration) {
	if m == nil {
		return
	}
	m.appliesTotal.WithLabelValues(state.String()).Inc()
	m.applyDuration.WithLabelValues(state.String()).Observe(milliseconds(duration))
}

func (m *reconcileMetrics) ObserveStep(step reconcile.Step, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(string(step), status(err)).Inc()
	m.stepDuration.WithLabelValues(string(step)).Observe(milliseconds(duration))
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
