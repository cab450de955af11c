package share

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a share's parameters",
	Long: `Show every parameter of a share, followed by its advanced text: the
parameters not covered by a dedicated field, one 'key = value' per line.

Examples:
  # Show a share
  smbmctl share show media

  # Show as YAML
  smbmctl share show media -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	sec, err := client.GetShare(args[0])
	if err != nil {
		return fmt.Errorf("failed to get share: %w", err)
	}

	format, err := cmdutil.OutputFormat()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintOutput(os.Stdout, sec, false, "", nil)
	}
	return PrintSection(os.Stdout, sec)
}

// PrintSection writes a section as a parameter table plus its advanced text.
func PrintSection(w io.Writer, sec *apiclient.Section) error {
	_, _ = fmt.Fprintf(w, "[%s]\n", sec.Name)
	if len(sec.Params) == 0 {
		_, _ = fmt.Fprintln(w, "No parameters set.")
		return nil
	}
	if err := output.PrintTable(w, output.ParamTable(sec.Params)); err != nil {
		return err
	}
	if sec.Form.Advanced != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Advanced:")
		_, _ = fmt.Fprint(w, sec.Form.Advanced)
	}
	return nil
}
