package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DatabaseType selects the backend.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// Config is the database section of the server configuration.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=sqlite postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

type SQLiteConfig struct {
	// Path defaults to $XDG_CONFIG_HOME/smbm/controlplane.db.
	Path string `mapstructure:"path" yaml:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	// disable, require, verify-ca or verify-full.
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode"`
	SSLRootCert  string `mapstructure:"sslrootcert" yaml:"sslrootcert,omitempty"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN renders the libpq keyword/value connection string. Values with
// spaces or quotes are single-quoted.
func (c *PostgresConfig) DSN() string {
	pairs := [][2]string{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", c.SSLMode},
		{"sslrootcert", c.SSLRootCert},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv[1] == "" && (kv[0] == "sslmode" || kv[0] == "sslrootcert") {
			continue
		}
		parts = append(parts, kv[0]+"="+dsnValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// DefaultSQLitePath is controlplane.db under the XDG config directory.
func DefaultSQLitePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "smbm", "controlplane.db")
}

// ApplyDefaults fills zero values. Postgres connection settings other than
// port and pool sizes have no default.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			c.SQLite.Path = DefaultSQLitePath()
		}
	case DatabaseTypePostgres:
		pg := &c.Postgres
		if pg.Port == 0 {
			pg.Port = 5432
		}
		if pg.SSLMode == "" {
			pg.SSLMode = "disable"
		}
		if pg.MaxOpenConns == 0 {
			pg.MaxOpenConns = 10
		}
		if pg.MaxIdleConns == 0 {
			pg.MaxIdleConns = 2
		}
	}
}

// Validate reports every missing setting of the selected backend.
func (c *Config) Validate() error {
	var errs []error
	required := func(name, v string) {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	switch c.Type {
	case DatabaseTypeSQLite:
		required("sqlite path", c.SQLite.Path)
	case DatabaseTypePostgres:
		required("postgres host", c.Postgres.Host)
		required("postgres database", c.Postgres.Database)
		required("postgres user", c.Postgres.User)
	default:
		errs = append(errs, fmt.Errorf("unsupported database type: %q", c.Type))
	}
	return errors.Join(errs...)
}
