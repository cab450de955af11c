package controlplane

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/pkg/controlplane/api"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	"github.com/marmos91/smbmanager/pkg/smbconf"
)

type staticBackend struct{}

func (staticBackend) Snapshot(context.Context) (*smbconf.Snapshot, error) {
	return smbconf.NewSnapshot(map[string]string{"workgroup": "WORKGROUP"}, nil), nil
}
func (staticBackend) AddShare(context.Context, string, string) error           { return nil }
func (staticBackend) DeleteShare(context.Context, string) error                { return nil }
func (staticBackend) DeleteKeys(context.Context, string, []string) error       { return nil }
func (staticBackend) SetKeys(context.Context, string, map[string]string) error { return nil }

func newControlPlane(t *testing.T, apiCfg *api.APIConfig) *ControlPlane {
	t.Helper()
	cp, err := New(context.Background(), &Options{
		Database: &store.Config{
			Type:   store.DatabaseTypeSQLite,
			SQLite: store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cp.db")},
		},
		API:     apiCfg,
		Backend: staticBackend{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cp.Close() })
	return cp
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)

	_, err = New(context.Background(), &Options{Backend: staticBackend{}})
	assert.Error(t, err, "database required")

	_, err = New(context.Background(), &Options{Database: &store.Config{}})
	assert.Error(t, err, "backend required")
}

func TestNew_WithAPI(t *testing.T) {
	cp := newControlPlane(t, &api.APIConfig{
		Port: 18090,
		JWT:  api.JWTConfig{Secret: "test-secret-key-for-testing-only-32chars"},
	})
	require.NotNil(t, cp.APIServer())
	assert.Equal(t, 18090, cp.APIServer().Port())
	assert.NotNil(t, cp.Runtime())
	assert.NotNil(t, cp.Store())
}

func TestNew_BadSecret(t *testing.T) {
	_, err := New(context.Background(), &Options{
		Database: &store.Config{
			Type:   store.DatabaseTypeSQLite,
			SQLite: store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cp.db")},
		},
		API:     &api.APIConfig{JWT: api.JWTConfig{Secret: "short"}},
		Backend: staticBackend{},
	})
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("Generated", func(t *testing.T) {
		t.Setenv(models.EnvAdminInitialPassword, "")
		cp := newControlPlane(t, nil)
		password, err := cp.EnsureAdmin(ctx, "", "")
		require.NoError(t, err)
		assert.NotEmpty(t, password)

		user, err := cp.Store().ValidateCredentials(ctx, models.AdminUsername, password)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.True(t, user.MustChangePassword)

		again, err := cp.EnsureAdmin(ctx, "", "")
		require.NoError(t, err)
		assert.Empty(t, again, "existing admin is left untouched")
	})

	t.Run("ConfiguredHash", func(t *testing.T) {
		cp := newControlPlane(t, nil)
		hash, err := models.HashPassword("operator-password")
		require.NoError(t, err)

		password, err := cp.EnsureAdmin(ctx, "ops", hash)
		require.NoError(t, err)
		assert.Empty(t, password)

		user, err := cp.Store().ValidateCredentials(ctx, "ops", "operator-password")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.False(t, user.MustChangePassword)
	})

	t.Run("CustomUsernameGenerated", func(t *testing.T) {
		t.Setenv(models.EnvAdminInitialPassword, "")
		cp := newControlPlane(t, nil)
		password, err := cp.EnsureAdmin(ctx, "root", "")
		require.NoError(t, err)
		require.NotEmpty(t, password)

		_, err = cp.Store().ValidateCredentials(ctx, "root", password)
		assert.NoError(t, err)
	})
}
