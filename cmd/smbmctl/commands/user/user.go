// Package user implements smbm account management commands.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for account management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Account management",
	Long: `Manage smbm accounts. These are the accounts that log in to smbm,
not Samba users.

Listing, creating and deleting accounts requires the admin role.
Any account can change its own password.

Examples:
  # List accounts
  smbmctl user list

  # Create a read-only account
  smbmctl user create --username auditor --role viewer

  # Change your password
  smbmctl user change-password`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(changePasswordCmd)
}
