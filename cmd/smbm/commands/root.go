// Package commands implements the smbm server commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbm/commands/config"
	"github.com/marmos91/smbmanager/internal/buildinfo"
)

// cfgFile is the --config flag.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "smbm",
	Short: "smbm - Samba registry configuration manager",
	Long: `smbm manages the shares and global parameters of a Samba server whose
configuration lives in the registry ('net conf').

It serves a REST API used by smbmctl. Every change is computed as a minimal
set of 'net conf setparm' and 'net conf delparm' calls and recorded in an
audit history.

Use "smbm [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/smbm/config.yaml)")

	rootCmd.AddCommand(buildinfo.Command("smbm"))
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(config.Cmd)
}
