// Package share implements share management commands for smbmctl.
package share

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for share management.
var Cmd = &cobra.Command{
	Use:   "share",
	Short: "Share management",
	Long: `Manage Samba shares stored in the registry configuration.

Every change is applied with 'net conf' and recorded in the apply history.
Listing and showing shares is open to any account; creating, editing and
deleting requires the admin role.

Examples:
  # List all shares
  smbmctl share list

  # Create a share
  smbmctl share create media --path /srv/media --set "read only=no"

  # Edit a share interactively
  smbmctl share edit media

  # Edit a share with flags
  smbmctl share edit media --valid-user alice --unset "vfs objects"

  # Delete a share
  smbmctl share delete media`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(deleteCmd)
}
