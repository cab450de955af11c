// Package config holds the `smbm config` subcommands, which operate on the
// server's own YAML file rather than on Samba.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/pkg/config"
)

// Cmd groups edit, validate, show and schema.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the smbm configuration file",
	Long: `Inspect and edit the smbm configuration file.

The file is created by 'smbm init'. Every subcommand honours the global
--config flag and otherwise uses the default location.`,
}

func init() {
	Cmd.AddCommand(editCmd, validateCmd, showCmd, schemaCmd)
}

// pathFlag returns the --config value, or "" when unset.
func pathFlag(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	return p
}

// resolvedPath is pathFlag with the default location filled in.
func resolvedPath(cmd *cobra.Command) string {
	if p := pathFlag(cmd); p != "" {
		return p
	}
	return config.GetDefaultConfigPath()
}
