package commands

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/internal/cli/credentials"
	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/apiclient"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

var loginOpts struct {
	server   string
	username string
	password string
	context  string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to an smbm server and store the tokens",
	Long: `Log in to an smbm server and store the tokens in a named context.

--server is needed the first time; later logins reuse the server of the
current context. Accounts created with a generated password have to pick
a new one before the tokens are saved.`,
	Example: `  smbmctl login --server http://nas:8080 -u admin
  smbmctl login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	f := loginCmd.Flags()
	f.StringVar(&loginOpts.server, "server", "", "server URL, required on first login")
	f.StringVarP(&loginOpts.username, "username", "u", "", "account name")
	f.StringVarP(&loginOpts.password, "password", "p", "", "password (prompted when empty)")
	f.StringVar(&loginOpts.context, "context", "", "context name (default: derived from the server host)")
}

var errNoServer = errors.New("no server known yet; pass --server, e.g. smbmctl login --server http://localhost:8080")

// normalizeServer accepts host:port or a full URL and returns a URL with a
// scheme and without a trailing slash.
func normalizeServer(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errNoServer
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	server := loginOpts.server
	if server == "" {
		if cur, err := store.GetCurrentContext(); err == nil {
			server = cur.ServerURL
		}
	}
	if server, err = normalizeServer(server); err != nil {
		return err
	}

	username, password := loginOpts.username, loginOpts.password
	if username == "" {
		if username, err = prompt.InputRequired("Username"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}
	if password == "" {
		if password, err = prompt.Password("Password"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	out := cmd.OutOrStdout()
	client := apiclient.New(server)
	tokens, err := client.Login(username, password)
	if err != nil {
		return fmt.Errorf("login to %s failed: %w", server, err)
	}
	if tokens.User != nil && tokens.User.MustChangePassword {
		if tokens, err = forcePasswordChange(out, client.WithToken(tokens.AccessToken), password); err != nil {
			return err
		}
	}

	name := loginOpts.context
	if name == "" {
		name = store.GetCurrentContextName()
	}
	if name == "" {
		name = credentials.GenerateContextName(server)
	}
	err = store.SetContext(name, &credentials.Context{
		ServerURL:    server,
		Username:     username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	})
	if err == nil {
		err = store.UseContext(name)
	}
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Logged in to %s as %s (context %q, stored in %s)\n", server, username, name, store.ConfigPath())
	return nil
}

func forcePasswordChange(out io.Writer, client *apiclient.Client, current string) (*apiclient.TokenResponse, error) {
	_, _ = fmt.Fprintln(out, "This account uses a temporary password; choose a new one.")
	next, err := prompt.PasswordWithConfirmation("New password", "Confirm password", models.MinPasswordLength)
	if err != nil {
		return nil, cmdutil.HandleAbort(err)
	}
	tokens, err := client.ChangeOwnPassword(current, next)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	return tokens, nil
}
