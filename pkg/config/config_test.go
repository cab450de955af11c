package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/internal/bytesize"
)

// writeConfig writes body to config.yaml in a fresh directory that also
// serves as XDG_CONFIG_HOME. "@DB@" in body is replaced by a sqlite path
// inside that directory.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// Backslashes would be escapes inside double-quoted YAML on Windows.
	db := filepath.ToSlash(filepath.Join(dir, "controlplane.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(body, "@DB@", db)), 0o644))
	return path
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
database:
  type: sqlite
  sqlite:
    path: "@DB@"
controlplane:
  jwt:
    secret: "load-test-secret-with-at-least-32-characters"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8080, cfg.ControlPlane.Port)
	assert.Equal(t, "net", cfg.Samba.NetBinary)
	assert.Equal(t, DefaultCommandTimeout, cfg.Samba.CommandTimeout)
	assert.Equal(t, DefaultSessionTTL, cfg.Samba.SessionTTL)
}

func TestLoad_SambaSection(t *testing.T) {
	path := writeConfig(t, `
database:
  sqlite:
    path: "@DB@"
samba:
  net_binary: /usr/bin/net
  use_sudo: true
  command_timeout: 5s
  max_output: 64KiB
  set_script: /usr/local/libexec/smbm-set
  advanced_policy: STRICT
  session_ttl: 1h
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	s := cfg.Samba
	assert.Equal(t, "/usr/bin/net", s.NetBinary)
	assert.True(t, s.UseSudo)
	assert.Equal(t, "sudo", s.SudoBinary)
	assert.Equal(t, 5*time.Second, s.CommandTimeout)
	assert.Equal(t, 64*bytesize.KiB, s.MaxOutput)
	assert.Equal(t, "/usr/local/libexec/smbm-set", s.SetScript)
	assert.Empty(t, s.DeleteScript)
	assert.Equal(t, "strict", s.AdvancedPolicy)
	assert.Equal(t, time.Hour, s.SessionTTL)
}

func TestLoad_MaxOutputAsNumber(t *testing.T) {
	path := writeConfig(t, "samba:\n  max_output: 4096\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, bytesize.ByteSize(4096), cfg.Samba.MaxOutput)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load(filepath.Join(dir, "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ControlPlane.Port)
	assert.Equal(t, filepath.Join(dir, "smbm", "controlplane.db"), cfg.Database.SQLite.Path)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"broken yaml":        "logging:\n  level: INFO\n  invalid yaml here [[[\n",
		"unknown policy":     "samba:\n  advanced_policy: merge\n",
		"bad duration":       "samba:\n  command_timeout: soon\n",
		"bad size":           "samba:\n  max_output: huge\n",
		"negative sample":    "telemetry:\n  sample_rate: -1\n",
		"unknown log format": "logging:\n  format: xml\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: INFO
database:
  sqlite:
    path: "@DB@"
controlplane:
  port: 8080
`)
	t.Setenv("SMBM_LOGGING_LEVEL", "ERROR")
	t.Setenv("SMBM_CONTROLPLANE_PORT", "9191")
	t.Setenv("SMBM_SAMBA_USE_SUDO", "true")
	t.Setenv("SMBM_SAMBA_COMMAND_TIMEOUT", "7s")
	t.Setenv("SMBM_SAMBA_MAX_OUTPUT", "2MiB")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, 9191, cfg.ControlPlane.Port)
	assert.True(t, cfg.Samba.UseSudo)
	assert.Equal(t, 7*time.Second, cfg.Samba.CommandTimeout)
	assert.Equal(t, 2*bytesize.MiB, cfg.Samba.MaxOutput)
}

func TestLoad_EnvironmentWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SMBM_SAMBA_NET_BINARY", "/opt/samba/bin/net")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/samba/bin/net", cfg.Samba.NetBinary)
}

func TestLeafKeys(t *testing.T) {
	keys := leafKeys(reflect.TypeOf(Config{}), "")
	assert.Contains(t, keys, "samba.max_output")
	assert.Contains(t, keys, "controlplane.jwt.secret")
	assert.Contains(t, keys, "telemetry.profiling.profile_types")
	assert.NotContains(t, keys, "samba")
}

func TestConfigPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "smbm"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "smbm", "config.yaml"), GetDefaultConfigPath())

	assert.False(t, DefaultConfigExists())
	_, err := InitConfig(false)
	require.NoError(t, err)
	assert.True(t, DefaultConfigExists())
}

func TestMustLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := MustLoad("")
	assert.ErrorContains(t, err, "smbm init")

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err = MustLoad(missing)
	assert.ErrorContains(t, err, "smbm init --config "+missing)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(dir, "controlplane.db")
	cfg.Samba.MaxOutput = 256 * bytesize.KiB
	cfg.Samba.AdvancedPolicy = "strict"
	require.NoError(t, SaveConfig(cfg, path))

	if os.PathSeparator == '/' {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256*bytesize.KiB, loaded.Samba.MaxOutput)
	assert.Equal(t, "strict", loaded.Samba.AdvancedPolicy)
}
