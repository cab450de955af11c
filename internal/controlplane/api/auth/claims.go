// Package auth issues and verifies the JWTs of the smbm control plane API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

// TokenType separates short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the payload of an smbm token.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"uid"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`

	// MustChangePassword limits the token to the password change endpoint.
	MustChangePassword bool `json:"must_change_password,omitempty"`
}

// IsAdmin reports whether the token grants the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == string(models.RoleAdmin)
}
