package api

import (
	"os"
	"time"

	"github.com/marmos91/smbmanager/internal/logger"
)

// EnvControlPlaneSecret overrides controlplane.jwt.secret.
const EnvControlPlaneSecret = "SMBM_CONTROLPLANE_SECRET"

// MinJWTSecretLength is the shortest accepted HMAC signing secret.
const MinJWTSecretLength = 32

// Defaults for APIConfig.
const (
	DefaultPort                 = 8080
	DefaultReadTimeout          = 10 * time.Second
	DefaultWriteTimeout         = time.Minute
	DefaultIdleTimeout          = time.Minute
	DefaultAccessTokenDuration  = 15 * time.Minute
	DefaultRefreshTokenDuration = 7 * 24 * time.Hour
)

// APIConfig is the controlplane section of the server configuration.
type APIConfig struct {
	Port        int           `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout covers a whole apply, which may run one `net conf` call
	// per edited key.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig holds the token signing key and lifetimes.
type JWTConfig struct {
	// Secret signs tokens with HS256. The environment variable wins over it.
	Secret string `mapstructure:"secret" yaml:"secret"`

	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" yaml:"refresh_token_duration"`
}

func orDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// ApplyDefaults fills zero values.
func (c *APIConfig) ApplyDefaults() {
	orDefault(&c.Port, DefaultPort)
	orDefault(&c.ReadTimeout, DefaultReadTimeout)
	orDefault(&c.WriteTimeout, DefaultWriteTimeout)
	orDefault(&c.IdleTimeout, DefaultIdleTimeout)
	orDefault(&c.JWT.AccessTokenDuration, DefaultAccessTokenDuration)
	orDefault(&c.JWT.RefreshTokenDuration, DefaultRefreshTokenDuration)
}

// Secret returns the signing secret in effect, or "" when none is set.
func (c *APIConfig) Secret() string {
	env := os.Getenv(EnvControlPlaneSecret)
	if env == "" {
		return c.JWT.Secret
	}
	if c.JWT.Secret != "" && c.JWT.Secret != env {
		logger.Warn("JWT secret from the environment overrides the config file", "env_var", EnvControlPlaneSecret)
	}
	return env
}
