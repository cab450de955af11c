package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the tokens of the current context",
	Long: `Forget the tokens of the current context. The server URL and user name
stay, so a plain 'smbmctl login' logs back in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("open credential store: %w", err)
		}
		name := store.GetCurrentContextName()
		if name == "" {
			return errors.New("not logged in")
		}
		if err := store.ClearCurrentContext(); err != nil {
			return fmt.Errorf("clear credentials: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", name)
		return nil
	},
}
