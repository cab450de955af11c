package share

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List shares",
	Long:    "List every share section of the registry configuration. [global] is not included.",
	Example: "  smbmctl share list\n  smbmctl share list -o json",
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		shares, err := client.ListShares()
		if err != nil {
			return err
		}
		return cmdutil.PrintOutput(os.Stdout, shares, len(shares) == 0, "No shares defined.", ShareList(shares))
	},
}

// ShareList renders shares with their most looked-at parameters.
type ShareList []apiclient.Section

var shareColumns = []struct{ header, key string }{
	{"PATH", "path"},
	{"READ ONLY", "read-only"},
	{"BROWSEABLE", "browseable"},
	{"VALID USERS", "valid-users"},
}

func (sl ShareList) Headers() []string {
	h := []string{"NAME"}
	for _, c := range shareColumns {
		h = append(h, c.header)
	}
	return append(h, "PARAMS")
}

func (sl ShareList) Rows() [][]string {
	rows := make([][]string, len(sl))
	for i, s := range sl {
		row := []string{s.Name}
		for _, c := range shareColumns {
			row = append(row, cmdutil.EmptyOr(s.Params[c.key], "-"))
		}
		rows[i] = append(row, strconv.Itoa(len(s.Params)))
	}
	return rows
}
