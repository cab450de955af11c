// Package config loads the smbm server configuration.
//
// Values come from, in decreasing priority: SMBM_* environment variables,
// the YAML file, then the defaults in defaults.go. The Samba configuration
// itself never lives here; it is always read back through `net conf`.
package config

import (
	"time"

	"github.com/marmos91/smbmanager/internal/bytesize"
	"github.com/marmos91/smbmanager/pkg/controlplane/api"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
)

// EnvPrefix prefixes every environment variable override, e.g.
// SMBM_SAMBA_USE_SUDO=true.
const EnvPrefix = "SMBM"

// Config is the whole server configuration file.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds graceful shutdown of the API and metrics servers.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database holds accounts and apply history, never share data.
	Database store.Config `mapstructure:"database" yaml:"database"`

	Metrics      MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	ControlPlane api.APIConfig `mapstructure:"controlplane" yaml:"controlplane"`
	Admin        AdminConfig   `mapstructure:"admin" yaml:"admin"`
	Samba        SambaConfig   `mapstructure:"samba" yaml:"samba"`
}

// LoggingConfig selects level, encoding and destination of the logs.
type LoggingConfig struct {
	// DEBUG, INFO, WARN or ERROR; normalized to upper case.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	// text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	// stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig enables OTLP tracing of API requests and `net` calls.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig enables continuous profiling with Pyroscope.
type ProfilingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// Any of cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	// goroutines, mutex_count, mutex_duration, block_count, block_duration.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig serves /metrics on its own port. Nothing is collected while
// Enabled is false.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AdminConfig seeds the first admin account.
type AdminConfig struct {
	Username string `mapstructure:"username" yaml:"username"`

	// PasswordHash is a bcrypt hash. Without it the password is taken from
	// SMBM_ADMIN_INITIAL_PASSWORD, or generated and printed once.
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// SambaConfig controls how `net conf` is invoked and how edits behave.
type SambaConfig struct {
	NetBinary  string `mapstructure:"net_binary" validate:"required" yaml:"net_binary"`
	UseSudo    bool   `mapstructure:"use_sudo" yaml:"use_sudo"`
	SudoBinary string `mapstructure:"sudo_binary" yaml:"sudo_binary"`

	// CommandTimeout bounds a single `net` invocation.
	CommandTimeout time.Duration `mapstructure:"command_timeout" validate:"gt=0" yaml:"command_timeout"`

	// MaxOutput caps what is captured from one command. Accepts "64KiB",
	// "1Mi" or a plain byte count.
	MaxOutput bytesize.ByteSize `mapstructure:"max_output" yaml:"max_output"`

	// SetScript and DeleteScript replace the direct `net conf setparm` and
	// `delparm` calls; each receives its payload as JSON on stdin.
	SetScript    string `mapstructure:"set_script" yaml:"set_script,omitempty"`
	DeleteScript string `mapstructure:"delete_script" yaml:"delete_script,omitempty"`

	// AdvancedPolicy is resend or strict.
	AdvancedPolicy string `mapstructure:"advanced_policy" validate:"required,oneof=resend strict" yaml:"advanced_policy"`

	// SessionTTL is how long an opened edit stays valid.
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gt=0" yaml:"session_ttl"`
}
