package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
)

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print the registry configuration in smb.conf syntax",
	Long: `Print the whole registry configuration as 'net conf list' reports it,
in smb.conf syntax.

Examples:
  # Save a copy of the configuration
  smbmctl raw > smb.conf.backup`,
	Args: cobra.NoArgs,
	RunE: runRaw,
}

func runRaw(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	text, err := client.RawConfig()
	if err != nil {
		return fmt.Errorf("failed to get configuration: %w", err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
