package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreAt(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	return s
}

func TestContextIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"expired in past", time.Now().Add(-1 * time.Hour), true},
		{"expires within 60s", time.Now().Add(30 * time.Second), true},
		{"not expired", time.Now().Add(2 * time.Hour), false},
		{"zero time is expired", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, ctx.IsExpired())
		})
	}
}

func TestNewStore_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	s, err := NewStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultConfigDir, ConfigFileName), s.ConfigPath())

	_, err = s.GetCurrentContext()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
}

func TestStoreContexts(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.ListContexts())

	require.NoError(t, s.SetContext("nas-8080", &Context{
		ServerURL:   "http://nas:8080",
		Username:    "admin",
		AccessToken: "token1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))
	require.NoError(t, s.UseContext("nas-8080"))

	current, err := s.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "http://nas:8080", current.ServerURL)

	require.NoError(t, s.SetContext("backup", &Context{ServerURL: "http://backup:8080"}))

	assert.Equal(t, []string{"backup", "nas-8080"}, s.ListContexts())

	require.NoError(t, s.DeleteContext("nas-8080"))
	assert.Empty(t, s.GetCurrentContextName())

	_, err = s.GetContext("nas-8080")
	assert.ErrorIs(t, err, ErrContextNotFound)
	assert.ErrorIs(t, s.UseContext("nas-8080"), ErrContextNotFound)
	assert.ErrorIs(t, s.DeleteContext("nas-8080"), ErrContextNotFound)
}

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	s, err := NewStoreAt(path)
	require.NoError(t, err)

	require.NoError(t, s.SetContext("default", &Context{ServerURL: "http://localhost:8080", Username: "admin"}))
	require.NoError(t, s.UseContext("default"))
	require.NoError(t, s.UpdateTokens("access", "refresh", time.Now().Add(time.Hour)))

	reloaded, err := NewStoreAt(path)
	require.NoError(t, err)
	current, err := reloaded.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "access", current.AccessToken)
	assert.True(t, current.HasRefreshToken())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewStoreAt_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStoreAt(path)
	assert.ErrorContains(t, err, "corrupt credentials file")
}

func TestStoreClearCurrentContext(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetContext("default", &Context{
		ServerURL:    "http://localhost:8080",
		Username:     "admin",
		AccessToken:  "token",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, s.UseContext("default"))

	require.NoError(t, s.ClearCurrentContext())

	current, err := s.GetCurrentContext()
	require.NoError(t, err)
	assert.Empty(t, current.AccessToken)
	assert.False(t, current.HasRefreshToken())
	assert.True(t, current.ExpiresAt.IsZero())
	assert.Equal(t, "admin", current.Username)
}

func TestGenerateContextName(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080":     "localhost-8080",
		"https://nas.home.lan":      "nas-home-lan",
		"http://192.168.1.10:8080/": "192-168-1-10-8080",
		"not a url":                 "default",
		"":                          "default",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenerateContextName(in), in)
	}
}
