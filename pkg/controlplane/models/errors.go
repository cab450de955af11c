package models

import "errors"

// Common errors for control plane operations.
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrUserDisabled  = errors.New("user account is disabled")

	// Share errors
	ErrShareNotFound    = errors.New("share not found")
	ErrDuplicateShare   = errors.New("share already exists")
	ErrInvalidShareName = errors.New("invalid share name")
	ErrInvalidSharePath = errors.New("invalid share path")

	// Edit session errors
	ErrSessionNotFound = errors.New("edit session not found")
	ErrSessionExpired  = errors.New("edit session expired")

	// Samba errors
	ErrConfigUnavailable = errors.New("failed to read configuration")

	// Apply history errors
	ErrApplyRecordNotFound = errors.New("apply record not found")
)
