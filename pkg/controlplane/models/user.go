// Package models holds the persistent control plane entities: smbm
// accounts and the audit trail of configuration applies.
package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole grants access to the API.
type UserRole string

const (
	// RoleViewer reads configuration and history.
	RoleViewer UserRole = "viewer"
	// RoleAdmin also edits sections and manages accounts.
	RoleAdmin UserRole = "admin"
)

// Roles lists every role, least privileged first.
var Roles = []UserRole{RoleViewer, RoleAdmin}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return slices.Contains(Roles, r)
}

// User is an API account. Samba users are not managed here.
type User struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	Username           string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	Enabled            bool       `gorm:"not null" json:"enabled"`
	MustChangePassword bool       `gorm:"default:false" json:"must_change_password"`
	Role               string     `gorm:"default:viewer;size:50" json:"role"`
	DisplayName        string     `gorm:"size:255" json:"display_name,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string { return "users" }

// BeforeCreate validates the row and fills ID and Role.
func (u *User) BeforeCreate(*gorm.DB) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = string(RoleViewer)
	}
	return nil
}

// Validate checks the username and role.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role != "" && !UserRole(u.Role).IsValid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return UserRole(u.Role) == RoleAdmin
}
