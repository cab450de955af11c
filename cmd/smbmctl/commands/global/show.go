package global

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/cmd/smbmctl/commands/share"
	"github.com/marmos91/smbmanager/internal/cli/output"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show global parameters",
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	sec, err := client.GetGlobal()
	if err != nil {
		return fmt.Errorf("failed to get global section: %w", err)
	}

	format, err := cmdutil.OutputFormat()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintOutput(os.Stdout, sec, false, "", nil)
	}
	return share.PrintSection(os.Stdout, sec)
}
