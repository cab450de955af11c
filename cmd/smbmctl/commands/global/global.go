// Package global implements commands for the [global] section.
package global

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for the [global] section.
var Cmd = &cobra.Command{
	Use:   "global",
	Short: "Global parameters",
	Long: `Inspect and edit the [global] section of the Samba registry configuration.

Examples:
  # Show global parameters
  smbmctl global show

  # Change the workgroup
  smbmctl global edit --set workgroup=HOME`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(editCmd)
}
