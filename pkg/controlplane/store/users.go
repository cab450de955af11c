package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.db, models.ErrUserNotFound, "username = ?", username)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	if err := insert(ctx, s.db, user, models.ErrDuplicateUser); err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *GORMStore) DeleteUser(ctx context.Context, username string) error {
	tx := s.db.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	return mustAffect(tx, models.ErrUserNotFound)
}

func (s *GORMStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return s.updateUser(ctx, username, map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": false,
	})
}

func (s *GORMStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	return s.updateUser(ctx, username, map[string]any{"last_login": at})
}

func (s *GORMStore) updateUser(ctx context.Context, username string, columns map[string]any) error {
	tx := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Updates(columns)
	return mustAffect(tx, models.ErrUserNotFound)
}

// ValidateCredentials does not distinguish an unknown user from a wrong
// password.
func (s *GORMStore) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUser(ctx, username)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return nil, models.ErrInvalidCredentials
	case err != nil:
		return nil, err
	case !user.Enabled:
		return nil, models.ErrUserDisabled
	case !models.VerifyPassword(password, user.PasswordHash):
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdminUser creates the administrator named username (AdminUsername
// when empty) unless it exists. With passwordHash the account uses that
// hash. Otherwise the password comes from SMBM_ADMIN_INITIAL_PASSWORD or is
// generated; only a generated password is returned and must be changed on
// first login. An existing account is never modified.
func (s *GORMStore) EnsureAdminUser(ctx context.Context, username, passwordHash string) (string, error) {
	if username == "" {
		username = models.AdminUsername
	}
	_, err := s.GetUser(ctx, username)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return "", err
	}

	var password string
	generated := false
	if passwordHash == "" {
		if password, generated, err = models.InitialAdminPassword(); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		if passwordHash, err = models.HashPassword(password); err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
	}

	admin := models.DefaultAdminUser(passwordHash)
	admin.Username = username
	admin.MustChangePassword = generated
	if _, err := s.CreateUser(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}
	if !generated {
		return "", nil
	}
	return password, nil
}
