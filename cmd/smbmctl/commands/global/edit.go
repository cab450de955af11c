package global

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
	Use:   "edit",
	Short: "Edit global parameters",
	Long: `Edit the [global] section.

When run without flags, prompts for each field and optionally opens the
advanced text in $EDITOR. When flags are provided, only the named
parameters change.

Examples:
  # Edit interactively
  smbmctl global edit

  # Set the server string and drop a parameter
  smbmctl global edit --set "server string=NAS" --unset "log level"`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	editEdits.AddFlags(editCmd, false)
}

func runEdit(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	sec, err := client.GetGlobal()
	if err != nil {
		return fmt.Errorf("failed to get global section: %w", err)
	}

	var form apiclient.Form
	if editEdits.Changed(cmd) {
		form, err = editEdits.Apply(binding.ScopeGlobal, sec.Form, os.Stdin)
	} else {
		form, err = cmdutil.PromptForm(binding.ScopeGlobal, sec.Name, sec.Form)
	}
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	res, err := client.UpdateGlobal(form)
	if err != nil {
		return cmdutil.ApplyFailure("update global section", err)
	}

	return cmdutil.PrintApplyResult(os.Stdout, res)
}
