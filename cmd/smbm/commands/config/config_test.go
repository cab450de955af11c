package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/pkg/config"
)

func TestSchema(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema.Properties)

	samba, ok := schema.Properties.Get("samba")
	require.True(t, ok, "samba section present")
	_, ok = samba.Properties.Get("net_binary")
	assert.True(t, ok)
	_, ok = samba.Properties.Get("advanced_policy")
	assert.True(t, ok)

	_, ok = schema.Properties.Get("controlplane")
	assert.True(t, ok)
}

func TestMaskSecrets(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.ControlPlane.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	cfg.Database.Postgres.Password = "pg-secret"

	maskSecrets(cfg)

	assert.Equal(t, masked, cfg.ControlPlane.JWT.Secret)
	assert.Equal(t, masked, cfg.Admin.PasswordHash)
	assert.Equal(t, masked, cfg.Database.Postgres.Password)
}

func TestMaskSecrets_LeavesEmptyValues(t *testing.T) {
	cfg := config.GetDefaultConfig()
	maskSecrets(cfg)
	assert.Empty(t, cfg.Admin.PasswordHash)
	assert.Empty(t, cfg.Database.Postgres.Password)
}
