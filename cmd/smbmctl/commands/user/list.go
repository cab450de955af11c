package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/timeutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE:  runList,
}

// UserList is a list of accounts for table rendering.
type UserList []apiclient.User

// Headers implements TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "ROLE", "ENABLED", "LAST LOGIN"}
}

// Rows implements TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		lastLogin := "never"
		if u.LastLogin != nil {
			lastLogin = timeutil.Local(*u.LastLogin)
		}
		enabled := "no"
		if u.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{u.Username, u.Role, enabled, lastLogin})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users found.", UserList(users))
}
