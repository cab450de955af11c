package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/credentials"
	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the logged-in account",
	Long: `Change the password of the logged-in account. The server answers with a
fresh token pair, which replaces the one in the current context.

Passwords given as flags end up in shell history; leave them out to be
prompted instead.`,
	Args: cobra.NoArgs,
	RunE: runChangePassword,
}

func init() {
	changePasswordCmd.Flags().StringP("current", "c", "", "current password")
	changePasswordCmd.Flags().StringP("new", "n", "", "new password")
}

// passwordFlag returns the named flag or asks for it with ask.
func passwordFlag(cmd *cobra.Command, name string, ask func() (string, error)) (string, error) {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v, nil
	}
	return ask()
}

func runChangePassword(cmd *cobra.Command, _ []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	current, err := passwordFlag(cmd, "current", func() (string, error) {
		return prompt.Password("Current password")
	})
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	next, err := passwordFlag(cmd, "new", func() (string, error) {
		return prompt.PasswordWithConfirmation("New password", "Repeat new password", models.MinPasswordLength)
	})
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if len(next) < models.MinPasswordLength {
		return fmt.Errorf("new password must be at least %d characters", models.MinPasswordLength)
	}

	tokens, err := client.ChangeOwnPassword(current, next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	store, err := credentials.NewStore()
	if err == nil {
		err = store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt)
	}
	if err != nil {
		return fmt.Errorf("password changed but the stored tokens were not updated: %w", err)
	}
	cmdutil.PrintSuccess("Password changed")
	return nil
}
