package user

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/apiclient"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

var (
	createUsername    string
	createPassword    string
	createDisplayName string
	createRole        string
	createEnabled     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	Long: `Create a new smbm account.

If username or password are not provided via flags, you will be prompted
to enter them interactively.

Examples:
  # Create account interactively
  smbmctl user create

  # Create a viewer
  smbmctl user create --username auditor --password secret123

  # Create another admin
  smbmctl user create --username ops --password secret123 --role admin`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username (required)")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Display name")
	createCmd.Flags().StringVar(&createRole, "role", string(models.RoleViewer), "Role (viewer|admin)")
	createCmd.Flags().BoolVar(&createEnabled, "enabled", true, "Enable account")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	interactive := !cmd.Flags().Changed("username")

	username := createUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := createPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", models.MinPasswordLength)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	role := createRole
	if interactive && !cmd.Flags().Changed("role") {
		role, err = prompt.Select("Role", []prompt.SelectOption{
			{Label: "viewer", Value: string(models.RoleViewer), Description: "Read shares, global parameters and history"},
			{Label: "admin", Value: string(models.RoleAdmin), Description: "Apply changes and manage accounts"},
		})
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}
	if !models.UserRole(role).IsValid() {
		return fmt.Errorf("invalid role %q: must be viewer or admin", role)
	}

	enabled := createEnabled
	user, err := client.CreateUser(&apiclient.CreateUserRequest{
		Username:    username,
		Password:    password,
		DisplayName: createDisplayName,
		Role:        role,
		Enabled:     &enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	format, err := cmdutil.OutputFormat()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintOutput(os.Stdout, user, false, "", nil)
	}
	cmdutil.PrintSuccess(fmt.Sprintf("User '%s' created with role %s", user.Username, user.Role))
	return nil
}
