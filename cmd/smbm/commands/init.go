package commands

import (
	"fmt"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/pkg/config"
	"github.com/marmos91/smbmanager/pkg/controlplane/api"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file with a freshly generated JWT secret.

The file goes to --config when given, otherwise to
$XDG_CONFIG_HOME/smbm/config.yaml. An existing file is kept unless --force
is passed.`,
	Example: `  smbm init
  smbm init --config /etc/smbm/config.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

var nextSteps = template.Must(template.New("init").Parse(`wrote {{.Path}}

Before starting the server:
  - Samba must read its shares from the registry ('config backend = registry').
  - Set samba.use_sudo when smbm does not run as root.
  - Start with 'smbm start'.

The generated JWT secret is fine for a test box. In production pass it
through the environment instead:
  export {{.SecretEnv}}=$(openssl rand -hex 32)
`))

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := cfgFile
	var err error
	if path == "" {
		path, err = config.InitConfig(force)
	} else {
		err = config.InitConfigToPath(path, force)
	}
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	return nextSteps.Execute(cmd.OutOrStdout(), struct{ Path, SecretEnv string }{path, api.EnvControlPlaneSecret})
}
