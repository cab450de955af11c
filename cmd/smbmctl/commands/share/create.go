package share

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

var (
	createPath  string
	createEdits cmdutil.FormEdits
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a share",
	Long: `Create a new share in the Samba registry configuration.

Parameters can be given with --set (repeatable), an advanced text file,
and valid users or groups.

Examples:
  # Create a writable share
  smbmctl share create media --path /srv/media --set "read only=no"

  # Create a share restricted to a group
  smbmctl share create finance --path /srv/finance --valid-group accounting

  # Create a share with advanced parameters from a file
  smbmctl share create tm --path /srv/tm --advanced-file tm.conf`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createPath, "path", "", "Directory exported by the share (required)")
	_ = createCmd.MarkFlagRequired("path")
	createEdits.AddFlags(createCmd, true)
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	form, err := createEdits.Apply(binding.ScopeShare, apiclient.Form{}, os.Stdin)
	if err != nil {
		return err
	}

	res, err := client.CreateShare(&apiclient.CreateShareRequest{
		Name: name,
		Path: createPath,
		Form: form,
	})
	if err != nil {
		return cmdutil.ApplyFailure("create share", err)
	}

	return cmdutil.PrintApplyResult(os.Stdout, res)
}
