// Package credentials keeps the smbm servers smbmctl knows about and the
// tokens it holds for each of them.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	DefaultConfigDir = "smbmctl"
	ConfigFileName   = "config.json"
)

// expirySkew treats a token as expired slightly early so a request does
// not race the server clock.
const expirySkew = time.Minute

var (
	ErrNoCurrentContext = errors.New("no current context set")
	ErrContextNotFound  = errors.New("context not found")
	ErrNotLoggedIn      = errors.New("not logged in - run 'smbmctl login' first")
)

// Context is one smbm server and the session held against it.
type Context struct {
	ServerURL    string    `json:"server_url"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token is missing an expiry or
// expires within a minute.
func (c *Context) IsExpired() bool {
	return c.ExpiresAt.IsZero() || time.Now().Add(expirySkew).After(c.ExpiresAt)
}

// HasRefreshToken reports whether the session can be refreshed.
func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

type file struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
}

// Store is the smbmctl state file. Every mutation is written through.
type Store struct {
	path  string
	state file
}

// NewStore opens $XDG_CONFIG_HOME/smbmctl/config.json, defaulting
// XDG_CONFIG_HOME to ~/.config.
func NewStore() (*Store, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return NewStoreAt(filepath.Join(base, DefaultConfigDir, ConfigFileName))
}

// NewStoreAt opens the state file at path. A missing file is an empty store.
func NewStoreAt(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("corrupt credentials file %s: %w", path, err)
		}
	}
	if s.state.Contexts == nil {
		s.state.Contexts = make(map[string]*Context)
	}
	return s, nil
}

// save replaces the file atomically; it holds tokens, so it is 0600.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// ConfigPath returns the state file location.
func (s *Store) ConfigPath() string {
	return s.path
}

// GetCurrentContext returns the context selected by login or use.
func (s *Store) GetCurrentContext() (*Context, error) {
	if s.state.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	c, ok := s.state.Contexts[s.state.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return c, nil
}

// GetCurrentContextName returns the selected context name, or "".
func (s *Store) GetCurrentContextName() string {
	return s.state.CurrentContext
}

// ListContexts returns the context names in sorted order.
func (s *Store) ListContexts() []string {
	return slices.Sorted(maps.Keys(s.state.Contexts))
}

// GetContext returns the named context.
func (s *Store) GetContext(name string) (*Context, error) {
	c, ok := s.state.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return c, nil
}

// SetContext creates or replaces the named context.
func (s *Store) SetContext(name string, c *Context) error {
	s.state.Contexts[name] = c
	return s.save()
}

// UseContext selects the named context.
func (s *Store) UseContext(name string) error {
	if _, ok := s.state.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.state.CurrentContext = name
	return s.save()
}

// DeleteContext forgets the named context, unselecting it if current.
func (s *Store) DeleteContext(name string) error {
	if _, ok := s.state.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	delete(s.state.Contexts, name)
	if s.state.CurrentContext == name {
		s.state.CurrentContext = ""
	}
	return s.save()
}

// UpdateTokens stores a refreshed token pair on the current context.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	c, err := s.GetCurrentContext()
	if err != nil {
		return err
	}
	c.AccessToken, c.RefreshToken, c.ExpiresAt = accessToken, refreshToken, expiresAt
	return s.save()
}

// ClearCurrentContext drops the tokens of the current context and keeps
// the server URL and username for the next login.
func (s *Store) ClearCurrentContext() error {
	return s.UpdateTokens("", "", time.Time{})
}

// GenerateContextName derives a context name from the server host and
// port, falling back to "default" when the URL has no usable host.
func GenerateContextName(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "default"
	}
	name := strings.ReplaceAll(u.Hostname(), ".", "-")
	if port := u.Port(); port != "" {
		name += "-" + port
	}
	return name
}
