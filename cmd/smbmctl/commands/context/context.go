// Package context implements the smbmctl context subcommands.
package context

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/credentials"
)

// Cmd is the parent command for context management.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage the smbm servers smbmctl has logged in to.

Each 'smbmctl login' saves a context: the server URL, the username and the
tokens. Commands run against the current context.

Examples:
  # List saved servers
  smbmctl context list

  # Switch to another server
  smbmctl context use backup-nas-8080`,
}

// withStore adapts a function of the credential store to cobra's RunE.
func withStore(fn func(store *credentials.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("open credential store: %w", err)
		}
		return fn(store, args)
	}
}

func init() {
	var force bool
	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Forget a context and its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(store *credentials.Store, args []string) error {
			return cmdutil.ConfirmAndDelete("Context", args[0], force, func() error {
				return store.DeleteContext(args[0])
			})
		}),
	}
	deleteCmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")

	Cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved contexts",
		Args:    cobra.NoArgs,
		RunE: withStore(func(store *credentials.Store, _ []string) error {
			list := listContexts(store)
			return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No contexts. Run 'smbmctl login --server <url>'.", list)
		}),
	}, &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current context",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(store *credentials.Store, args []string) error {
			if err := store.UseContext(args[0]); err != nil {
				return fmt.Errorf("context %q: %w", args[0], err)
			}
			cmdutil.PrintSuccess(fmt.Sprintf("Switched to context %q", args[0]))
			return nil
		}),
	}, deleteCmd)
}

// contextRow is one saved server for display.
type contextRow struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	LoggedIn  bool   `json:"logged_in" yaml:"logged_in"`
}

// ContextList is a list of contexts for table rendering.
type ContextList []contextRow

// Headers implements TableRenderer.
func (cl ContextList) Headers() []string {
	return []string{"CURRENT", "NAME", "SERVER", "USER", "LOGGED IN"}
}

// Rows implements TableRenderer.
func (cl ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current, loggedIn := "", "no"
		if c.Current {
			current = "*"
		}
		if c.LoggedIn {
			loggedIn = "yes"
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, cmdutil.EmptyOr(c.Username, "-"), loggedIn})
	}
	return rows
}

func listContexts(store *credentials.Store) ContextList {
	var list ContextList
	for _, name := range store.ListContexts() {
		c, err := store.GetContext(name)
		if err != nil {
			continue
		}
		list = append(list, contextRow{
			Name:      name,
			Current:   name == store.GetCurrentContextName(),
			ServerURL: c.ServerURL,
			Username:  c.Username,
			LoggedIn:  c.AccessToken != "",
		})
	}
	return list
}
