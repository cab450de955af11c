// Package cmdutil holds the plumbing shared by smbmctl commands: global
// flags, the authenticated API client and result printing.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/smbmanager/internal/cli/credentials"
	"github.com/marmos91/smbmanager/internal/cli/output"
	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

// Flags holds the persistent flags of the root command.
var Flags = &GlobalFlags{}

// GlobalFlags are the flags every smbmctl command accepts.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// OutputFormat returns the format selected with --output.
func OutputFormat() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// ColorEnabled reports whether --no-color was left unset.
func ColorEnabled() bool {
	return !Flags.NoColor
}

// GetAuthenticatedClient returns an API client for the current context.
// --server and --token override the stored values. An expired access token
// is refreshed when a refresh token is available.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	cur, err := store.GetCurrentContext()
	if err != nil {
		return nil, credentials.ErrNotLoggedIn
	}

	serverURL := cur.ServerURL
	if Flags.ServerURL != "" {
		serverURL = Flags.ServerURL
	}
	if serverURL == "" {
		return nil, errors.New("no server URL configured. Run 'smbmctl login --server <url>' first")
	}

	token := Flags.Token
	if token == "" {
		if token, err = currentToken(store, cur, serverURL); err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, credentials.ErrNotLoggedIn
	}
	return apiclient.New(serverURL).WithToken(token), nil
}

// currentToken returns the stored access token, trading the refresh token
// for a new pair first when the access token has expired.
func currentToken(store *credentials.Store, cur *credentials.Context, serverURL string) (string, error) {
	if !cur.IsExpired() || !cur.HasRefreshToken() {
		return cur.AccessToken, nil
	}
	tokens, err := apiclient.New(serverURL).RefreshToken(cur.RefreshToken)
	if err != nil {
		return "", errors.New("session expired. Run 'smbmctl login' to re-authenticate")
	}
	if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to save refreshed tokens: %w", err)
	}
	return tokens.AccessToken, nil
}

// PrintOutput renders data in the selected format. Table output prints
// emptyMsg instead of an empty table.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	format, err := OutputFormat()
	if err != nil {
		return err
	}
	if format == output.FormatTable && isEmpty {
		_, _ = fmt.Fprintln(w, emptyMsg)
		return nil
	}
	return output.Write(w, format, data, table)
}

// PrintSuccess prints msg to stdout in table mode. Machine-readable output
// stays clean.
func PrintSuccess(msg string) {
	if format, err := OutputFormat(); err == nil && format == output.FormatTable {
		output.Success(os.Stdout, msg, ColorEnabled())
	}
}

// EmptyOr returns value, or fallback when value is empty.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort turns a Ctrl+C at a prompt into a clean exit.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
