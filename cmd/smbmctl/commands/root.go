// Package commands holds the smbmctl command tree.
package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	contextcmd "github.com/marmos91/smbmanager/cmd/smbmctl/commands/context"
	globalcmd "github.com/marmos91/smbmanager/cmd/smbmctl/commands/global"
	sharecmd "github.com/marmos91/smbmanager/cmd/smbmctl/commands/share"
	usercmd "github.com/marmos91/smbmanager/cmd/smbmctl/commands/user"
	"github.com/marmos91/smbmanager/internal/buildinfo"
	"github.com/marmos91/smbmanager/internal/logger"
)

// EnvPrefix prefixes the environment variables that stand in for the
// global flags, e.g. SMBMCTL_SERVER or SMBMCTL_NO_COLOR.
const EnvPrefix = "SMBMCTL"

var rootCmd = &cobra.Command{
	Use:   "smbmctl",
	Short: "Client for the smbm Samba configuration server",
	Long: `smbmctl talks to an smbm server over its REST API: it lists and edits
Samba shares and the global section, shows the apply history and manages
smbm accounts.

Global flags may also be given as SMBMCTL_<FLAG> environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bindGlobalFlags,
}

// bindGlobalFlags resolves each global flag from the command line, then
// the environment, then its default.
func bindGlobalFlags(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	*cmdutil.Flags = cmdutil.GlobalFlags{
		ServerURL: v.GetString("server"),
		Token:     v.GetString("token"),
		Output:    v.GetString("output"),
		NoColor:   v.GetBool("no-color"),
		Verbose:   v.GetBool("verbose"),
	}
	if cmdutil.Flags.Verbose {
		return logger.Init(logger.Config{Level: "DEBUG", Output: "stderr"})
	}
	logger.SetLevel("WARN")
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("server", "", "server URL, overrides the current context")
	pf.String("token", "", "bearer token, overrides the current context")
	pf.StringP("output", "o", "table", "output format (table|json|yaml)")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("verbose", "v", false, "log API calls to stderr")

	rootCmd.AddCommand(
		buildinfo.Command("smbmctl"),
		loginCmd,
		logoutCmd,
		historyCmd,
		rawCmd,
		contextcmd.Cmd,
		sharecmd.Cmd,
		globalcmd.Cmd,
		usercmd.Cmd,
	)
}
