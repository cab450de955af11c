package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file and validate the result",
	Long: `Open the configuration file in $VISUAL or $EDITOR (vi when neither is
set). When the saved file does not load, you are offered another round in
the editor.`,
	Example: `  smbm config edit
  EDITOR="code --wait" smbm config edit --config /etc/smbm/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, _ []string) error {
	path := resolvedPath(cmd)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no configuration at %s; run 'smbm init --config %s' first", path, path)
	}

	for {
		if err := openEditor(path); err != nil {
			return err
		}
		_, loadErr := config.Load(path)
		if loadErr == nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s saved and valid\n", path)
			return nil
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration: %v\n", loadErr)
		again, err := prompt.Confirm("Edit again", true)
		if err != nil || !again {
			return fmt.Errorf("%s left invalid: %w", path, loadErr)
		}
	}
}

func openEditor(path string) error {
	argv := strings.Fields(prompt.Editor())
	c := exec.Command(argv[0], append(argv[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return nil
}
