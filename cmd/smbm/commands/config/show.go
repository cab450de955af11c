package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/pkg/config"
)

var (
	showOutput      string
	showWithSecrets bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective smbm configuration: file values merged with
SMBM_ environment variables and defaults.

The JWT secret and the admin password hash are masked unless
--show-secrets is given.

Examples:
  # Show config as YAML
  smbm config show

  # Show as JSON
  smbm config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showWithSecrets, "show-secrets", false, "Print secrets in clear")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := pathFlag(cmd)

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	if !showWithSecrets {
		maskSecrets(cfg)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}

const masked = "********"

func maskSecrets(cfg *config.Config) {
	if cfg.ControlPlane.JWT.Secret != "" {
		cfg.ControlPlane.JWT.Secret = masked
	}
	if cfg.Admin.PasswordHash != "" {
		cfg.Admin.PasswordHash = masked
	}
	if cfg.Database.Postgres.Password != "" {
		cfg.Database.Postgres.Password = masked
	}
}
