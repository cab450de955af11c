package models

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

const bcryptCost = bcrypt.DefaultCost

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 characters")
)

const (
	// AdminUsername is the account created on first start.
	AdminUsername = "admin"

	// EnvAdminInitialPassword sets that account's password instead of a
	// generated one.
	EnvAdminInitialPassword = "SMBM_ADMIN_INITIAL_PASSWORD"
)

// HashPassword checks the length limits and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, bcryptCost)
}

// HashPasswordWithCost is HashPassword with an explicit cost; tests use the
// minimum.
func HashPasswordWithCost(password string, cost int) (string, error) {
	switch {
	case len(password) < MinPasswordLength:
		return "", ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DefaultAdminUser is the bootstrap account. It must change its password on
// first login.
func DefaultAdminUser(passwordHash string) *User {
	return &User{
		Username:           AdminUsername,
		PasswordHash:       passwordHash,
		Enabled:            true,
		MustChangePassword: true,
		Role:               string(RoleAdmin),
		DisplayName:        "Administrator",
	}
}

// InitialAdminPassword returns EnvAdminInitialPassword when set. Otherwise
// it generates 24 URL-safe characters and reports generated=true.
func InitialAdminPassword() (password string, generated bool, err error) {
	if pw := os.Getenv(EnvAdminInitialPassword); pw != "" {
		return pw, false, nil
	}
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", false, err
	}
	return base64.URLEncoding.EncodeToString(b), true, nil
}
