package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

var _ Store = (*GORMStore)(nil)

// schema lists the tables AutoMigrate keeps current.
var schema = []any{&models.User{}, &models.ApplyRecord{}}

// GORMStore is the Store for both backends.
type GORMStore struct {
	db *gorm.DB
}

// New opens the configured database and migrates the schema. A nil config
// means SQLite at the default path.
func New(config *Config) (*GORMStore, error) {
	if config == nil {
		config = &Config{}
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dialector, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &GORMStore{db: db}
	if config.Type == DatabaseTypePostgres {
		pool, err := s.pool()
		if err != nil {
			return nil, err
		}
		pool.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		pool.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	if err := db.AutoMigrate(schema...); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s, nil
}

func dialectorFor(config *Config) (gorm.Dialector, error) {
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// WAL lets readers run during a write; busy_timeout makes writers wait.
		return sqlite.Open(config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"), nil
	case DatabaseTypePostgres:
		return postgres.Open(config.Postgres.DSN()), nil
	}
	return nil, fmt.Errorf("unsupported database type: %q", config.Type)
}

// DB exposes the connection for tests and maintenance.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

func (s *GORMStore) pool() (*sql.DB, error) {
	pool, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	return pool, nil
}

// Healthcheck pings the pool, then runs a query against the apply table so
// a reachable but unmigrated database fails too.
func (s *GORMStore) Healthcheck(ctx context.Context) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}
	if err := pool.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ApplyRecord{}).Limit(1).Count(&n).Error; err != nil {
		return fmt.Errorf("database query: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *GORMStore) Close() error {
	pool, err := s.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

// isDuplicate matches translated and untranslated unique violations.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
