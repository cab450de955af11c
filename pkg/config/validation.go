package config

import (
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/smbmanager/internal/telemetry"
	"github.com/marmos91/smbmanager/pkg/controlplane/api"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization is handled in ApplyDefaults, so validation
// accepts both uppercase and lowercase levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint: required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("telemetry.profiling.endpoint: required when profiling is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled {
		known := telemetry.ProfileTypeNames()
		for _, pt := range cfg.Telemetry.Profiling.ProfileTypes {
			if !slices.Contains(known, pt) {
				return fmt.Errorf("telemetry.profiling.profile_types: unknown type %q (valid: %s)", pt, strings.Join(known, ", "))
			}
		}
	}

	if secret := cfg.ControlPlane.JWT.Secret; secret != "" && len(secret) < api.MinJWTSecretLength {
		return fmt.Errorf("controlplane.jwt.secret: must be at least %d characters", api.MinJWTSecretLength)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.ControlPlane.Port {
		return fmt.Errorf("metrics.port: %d is already used by the control plane API", cfg.Metrics.Port)
	}

	return nil
}

// CheckBinaries reports whether the configured `net` (and sudo, when
// enabled) can be found. It is a runtime check, not part of Validate,
// so configuration can be validated on machines without Samba.
func CheckBinaries(cfg *Config) error {
	if _, err := exec.LookPath(cfg.Samba.NetBinary); err != nil {
		return fmt.Errorf("samba.net_binary: %w", err)
	}
	if cfg.Samba.UseSudo {
		if _, err := exec.LookPath(cfg.Samba.SudoBinary); err != nil {
			return fmt.Errorf("samba.sudo_binary: %w", err)
		}
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
