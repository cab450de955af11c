package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(GetDefaultConfig()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{"log level", func(c *Config) { c.Logging.Level = "LOUD" }, "oneof"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"api port too high", func(c *Config) { c.ControlPlane.Port = 70000 }, "max"},
		{"api port negative", func(c *Config) { c.ControlPlane.Port = -1 }, "min"},
		{"advanced policy", func(c *Config) { c.Samba.AdvancedPolicy = "merge" }, "AdvancedPolicy"},
		{"command timeout", func(c *Config) { c.Samba.CommandTimeout = -1 }, "CommandTimeout"},
		{"net binary", func(c *Config) { c.Samba.NetBinary = "" }, "NetBinary"},
		{"short jwt secret", func(c *Config) { c.ControlPlane.JWT.Secret = "short" }, "controlplane.jwt.secret"},
		{"metrics port clash", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = c.ControlPlane.Port
		}, "metrics.port"},
		{"postgres without host", func(c *Config) {
			c.Database.Type = "postgres"
			c.Database.Postgres.Database = "smbm"
			c.Database.Postgres.User = "smbm"
		}, "host"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry.endpoint"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "SampleRate"},
		{"profile type", func(c *Config) {
			c.Telemetry.Profiling.Enabled = true
			c.Telemetry.Profiling.ProfileTypes = []string{"cpu", "heap"}
		}, `unknown type "heap"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, Validate(cfg), tt.errPart)
		})
	}
}

func TestValidate_AcceptsAnyCaseLevel(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "warn", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level
		assert.NoError(t, Validate(cfg), level)
		assert.Equal(t, level, cfg.Logging.Level)
	}
}

func TestValidate_ProfilingDefaults(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Profiling.Enabled = true
	assert.NoError(t, Validate(cfg))
}
