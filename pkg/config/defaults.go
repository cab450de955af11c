package config

import (
	"strings"
	"time"

	"github.com/marmos91/smbmanager/internal/bytesize"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

const (
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsPort     = 9090

	// DefaultCommandTimeout leaves room for a slow winbind lookup inside
	// `net conf setparm`.
	DefaultCommandTimeout = 3200 * time.Millisecond
	DefaultSessionTTL     = runtime.DefaultSessionTTL
	DefaultMaxOutput      = bytesize.MiB
)

var defaultProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// ApplyDefaults fills every zero field of cfg and normalizes the case of
// enumerated values. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	cfg.Logging.applyDefaults()
	cfg.Telemetry.applyDefaults()
	setDefault(&cfg.ShutdownTimeout, DefaultShutdownTimeout)
	cfg.Database.ApplyDefaults()
	if cfg.Metrics.Enabled {
		setDefault(&cfg.Metrics.Port, DefaultMetricsPort)
	}
	cfg.ControlPlane.ApplyDefaults()
	setDefault(&cfg.Admin.Username, models.AdminUsername)
	cfg.Samba.applyDefaults()
}

func (c *LoggingConfig) applyDefaults() {
	setDefault(&c.Level, "INFO")
	c.Level = strings.ToUpper(c.Level)
	setDefault(&c.Format, "text")
	setDefault(&c.Output, "stdout")
}

func (c *TelemetryConfig) applyDefaults() {
	setDefault(&c.Endpoint, "localhost:4317")
	setDefault(&c.SampleRate, 1.0)
	setDefault(&c.Profiling.Endpoint, "http://localhost:4040")
	if len(c.Profiling.ProfileTypes) == 0 {
		c.Profiling.ProfileTypes = append([]string(nil), defaultProfileTypes...)
	}
}

func (c *SambaConfig) applyDefaults() {
	setDefault(&c.NetBinary, "net")
	setDefault(&c.SudoBinary, "sudo")
	setDefault(&c.CommandTimeout, DefaultCommandTimeout)
	setDefault(&c.MaxOutput, DefaultMaxOutput)
	setDefault(&c.AdvancedPolicy, string(reconcile.AdvancedResend))
	c.AdvancedPolicy = strings.ToLower(c.AdvancedPolicy)
	setDefault(&c.SessionTTL, DefaultSessionTTL)
}

// GetDefaultConfig is the configuration `smbm init` writes: SQLite storage
// and every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{Database: store.Config{Type: store.DatabaseTypeSQLite}}
	ApplyDefaults(cfg)
	return cfg
}
