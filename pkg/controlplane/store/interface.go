// Package store provides the control plane persistence layer.
//
// It keeps the accounts allowed to use the control plane API and the audit
// trail of every apply run against the Samba registry configuration. The
// Samba configuration itself is never stored here: `net conf` stays the
// source of truth.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL
package store

import (
	"context"
	"time"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

// UserStore manages control plane accounts.
type UserStore interface {
	// GetUser returns a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateUser inserts user and returns its ID, generated when empty.
	// Role defaults to viewer. Returns models.ErrDuplicateUser if the
	// username is taken.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// DeleteUser deletes a user by username.
	DeleteUser(ctx context.Context, username string) error

	// UpdatePassword replaces the password hash and clears MustChangePassword.
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// UpdateLastLogin updates the user's last login timestamp.
	UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error

	// ValidateCredentials verifies username/password credentials.
	// Returns models.ErrInvalidCredentials or models.ErrUserDisabled on failure.
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)

	// EnsureAdminUser creates the named administrator if missing and
	// returns its password when one was generated.
	EnsureAdminUser(ctx context.Context, username, passwordHash string) (string, error)
}

// ApplyFilter narrows ListApplies. Zero values match everything.
type ApplyFilter struct {
	Section string
	Limit   int
}

// ApplyStore keeps the apply audit trail.
type ApplyStore interface {
	// RecordApply persists one apply outcome. The ID is generated if empty.
	RecordApply(ctx context.Context, record *models.ApplyRecord) error

	// GetApply returns a record by ID.
	// Returns models.ErrApplyRecordNotFound if it doesn't exist.
	GetApply(ctx context.Context, id string) (*models.ApplyRecord, error)

	// ListApplies returns records newest first.
	ListApplies(ctx context.Context, filter ApplyFilter) ([]*models.ApplyRecord, error)
}

// Store provides the control plane persistence interface.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Store interface {
	UserStore
	ApplyStore

	// Healthcheck verifies the database is reachable.
	Healthcheck(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}
