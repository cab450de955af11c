package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

// ConfirmAndDelete asks before running deleteFn unless force is set.
func ConfirmAndDelete(kind, name string, force bool, deleteFn func() error) error {
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", strings.ToLower(kind), name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}
	if err := deleteFn(); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("%s '%s' deleted", kind, name))
	return nil
}

// DeleteCommand builds `<kind> delete <name> [--force]` around an API call.
func DeleteCommand(kind, long string, del func(c *apiclient.Client, name string) error) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a " + strings.ToLower(kind),
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			client, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			return ConfirmAndDelete(kind, args[0], force, func() error {
				if err := del(client, args[0]); err != nil {
					return fmt.Errorf("delete %s %s: %w", strings.ToLower(kind), args[0], err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}
