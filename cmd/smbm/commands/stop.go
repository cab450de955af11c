package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/daemon"
)

var (
	stopPidFile string
	stopForce   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the smbm server",
	Long: `Stop a running smbm server.

Sends SIGTERM, or SIGKILL with --force. Open edit sessions are discarded;
an apply in progress finishes its current 'net conf' call first.

Examples:
  smbm stop
  smbm stop --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := stopPidFile
		if path == "" {
			path = daemon.DefaultPidFile()
		}
		pid, err := daemon.Stop(path, stopForce)
		if errors.Is(err, daemon.ErrNotRunning) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Server is not running:", err)
			return nil
		}
		if err != nil {
			return err
		}
		if stopForce {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Killed process %d\n", pid)
		} else {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent shutdown signal to process %d\n", pid)
		}
		return nil
	},
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/smbm/smbm.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Kill instead of a graceful shutdown")
}
