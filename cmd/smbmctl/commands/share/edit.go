package share

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

var editEdits cmdutil.FormEdits

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a share",
	Long: `Edit an existing share.

When run without flags, prompts for each field and optionally opens the
advanced text in $EDITOR. When flags are provided, only the named
parameters change; the rest of the share is left alone.

Examples:
  # Edit share interactively
  smbmctl share edit media

  # Make the share read-only
  smbmctl share edit media --set "read only=yes"

  # Grant access to another user and group
  smbmctl share edit media --valid-user bob --valid-group staff

  # Remove an advanced parameter
  smbmctl share edit media --unset "vfs objects"

  # Replace the advanced text from stdin
  smbmctl share edit media --advanced-file - < media.conf`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editEdits.AddFlags(editCmd, true)
}

func runEdit(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	sec, err := client.GetShare(name)
	if err != nil {
		return fmt.Errorf("failed to get share: %w", err)
	}

	var form apiclient.Form
	if editEdits.Changed(cmd) {
		form, err = editEdits.Apply(binding.ScopeShare, sec.Form, os.Stdin)
	} else {
		form, err = cmdutil.PromptForm(binding.ScopeShare, sec.Name, sec.Form)
	}
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	res, err := client.UpdateShare(name, form)
	if err != nil {
		return cmdutil.ApplyFailure("update share", err)
	}

	return cmdutil.PrintApplyResult(os.Stdout, res)
}
