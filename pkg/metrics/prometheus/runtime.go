package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/metrics"
)

// runtimeMetrics is the Prometheus implementation of runtime.Metrics.
type runtimeMetrics struct {
	snapshotsTotal   *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	sections         prometheus.Gauge
	skippedLines     prometheus.Gauge
	openSessions     prometheus.Gauge
}

// NewRuntimeMetrics creates Prometheus-backed control plane runtime metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewRuntimeMetrics() runtime.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &runtimeMetrics{
		snapshotsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "config_reads_total",
				Help:      "Total number of configuration listings by status",
			},
			[]string{"status"},
		),
		snapshotDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "config_read_duration_milliseconds",
				Help:      "Duration of configuration listings in milliseconds",
				Buckets:   applyBuckets,
			},
		),
		sections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "config_share_sections",
				Help:      "Number of share sections in the last configuration listing",
			},
		),
		skippedLines: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "config_skipped_lines",
				Help:      "Unparsable lines in the last configuration listing",
			},
		),
		openSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "edit_sessions_open",
				Help:      "Number of open edit sessions",
			},
		),
	}
}

func (m *runtimeMetrics) ObserveSnapshot(duration time.Duration, sections, skipped int, err error) {
	if m == nil {
		return
	}
	m.snapshotsTotal.WithLabelValues(status(err)).Inc()
	m.snapshotDuration.Observe(milliseconds(duration))
	if err == nil {
		m.sections.Set(float64(sections))
		m.skippedLines.Set(float64(skipped))
	}
}

func (m *runtimeMetrics) SetOpenSessions(n int) {
	if m == nil {
		return
	}
	m.openSessions.Set(float64(n))
}
