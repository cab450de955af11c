package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/pkg/config"
)

var validateBinaries bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the smbm configuration file.

Checks for syntax errors, missing required fields, and invalid values.
With --check-binaries, also verifies that the 'net' tool (and sudo, when
enabled) can be found on this machine.

Examples:
  # Validate default config
  smbm config validate

  # Validate and look for the Samba tooling
  smbm config validate --check-binaries`,
	RunE: runConfigValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateBinaries, "check-binaries", false, "Check that the configured binaries exist")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := pathFlag(cmd)

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := resolvedPath(cmd)

	var warnings []string
	if cfg.ControlPlane.Secret() == "" {
		warnings = append(warnings, "JWT secret not configured - API authentication will fail")
	}
	if cfg.Samba.SetScript != "" && cfg.Samba.DeleteScript == "" {
		warnings = append(warnings, "samba.set_script is set without samba.delete_script; deletions use 'net conf delparm'")
	}
	if validateBinaries {
		if err := config.CheckBinaries(cfg); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:    %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API port:         %d\n", cfg.ControlPlane.Port)
	_, _ = fmt.Fprintf(out, "  Log level:        %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  net binary:       %s (sudo: %t)\n", cfg.Samba.NetBinary, cfg.Samba.UseSudo)
	_, _ = fmt.Fprintf(out, "  Advanced policy:  %s\n", cfg.Samba.AdvancedPolicy)
	_, _ = fmt.Fprintf(out, "  Session TTL:      %s\n", cfg.Samba.SessionTTL)
	return nil
}
