package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/smbmanager/pkg/metrics"
	"github.com/marmos91/smbmanager/pkg/netconf"
)

// netconfMetrics is the Prometheus implementation of netconf.Metrics.
type netconfMetrics struct {
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// NewNetConfMetrics creates Prometheus-backed `net conf` command metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewNetConfMetrics() netconf.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &netconfMetrics{
		commandsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "netconf_commands_total",
				Help:      "Total number of net conf invocations by subcommand and status",
			},
			[]string{"subcommand", "status"},
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "netconf_command_duration_milliseconds",
				Help:      "Duration of net conf invocations in milliseconds",
				Buckets:   applyBuckets,
			},
			[]string{"subcommand"},
		),
	}
}

func (m *netconfMetrics) ObserveCommand(subcommand string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(subcommand, status(err)).Inc()
	m.commandDuration.WithLabelValues(subcommand).Observe(milliseconds(duration))
}
