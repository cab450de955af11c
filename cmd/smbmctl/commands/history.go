package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/timeutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var (
	historySection string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the apply history",
	Long: `Show recorded applies, newest first.

Each entry lists the section, the account that applied it, how many
parameters were set and deleted, and whether the apply completed.

Examples:
  # Last applies on any section
  smbmctl history

  # Last 10 applies on one share
  smbmctl history --section media --limit 10

  # Full entries with deltas
  smbmctl history -o yaml`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySection, "section", "", "Only show applies to this section")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum number of entries (server default when 0)")
}

// HistoryList is a list of history entries for table rendering.
type HistoryList []apiclient.HistoryEntry

// Headers implements TableRenderer.
func (hl HistoryList) Headers() []string {
	return []string{"TIME", "SECTION", "OPERATION", "ACTOR", "SET", "DELETED", "STATE", "ERROR"}
}

// Rows implements TableRenderer.
func (hl HistoryList) Rows() [][]string {
	rows := make([][]string, 0, len(hl))
	for _, e := range hl {
		rows = append(rows, []string{
			timeutil.Local(e.CreatedAt),
			e.Section,
			e.Operation,
			cmdutil.EmptyOr(e.Actor, "-"),
			strconv.Itoa(len(e.ToSet)),
			strconv.Itoa(len(e.ToDelete)),
			e.State,
			cmdutil.EmptyOr(e.Error, "-"),
		})
	}
	return rows
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	entries, err := client.History(historySection, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0, "No applies recorded.", HistoryList(entries))
}
