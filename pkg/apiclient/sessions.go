package apiclient

import (
	"net/http"
	"time"
)

// Session is an open edit of one section.
type Session struct {
	ID        string            `json:"id"`
	Section   string            `json:"section"`
	Scope     string            `json:"scope"`
	Policy    string            `json:"policy"`
	Actor     string            `json:"actor,omitempty"`
	Form      Form              `json:"form"`
	Baseline  map[string]string `json:"baseline"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// OpenSession starts an edit of section. Opening a second session on the
// same section replaces the first.
func (c *Client) OpenSession(section string) (*Session, error) {
	return callPtr[Session](c, http.MethodPost, endpoint("sessions"), map[string]string{"section": section})
}

// GetSession returns an open session.
func (c *Client) GetSession(id string) (*Session, error) {
	return callPtr[Session](c, http.MethodGet, endpoint("sessions", id), nil)
}

// ApplySession diffs form against the session baseline and applies it.
// The session is closed whatever the outcome.
func (c *Client) ApplySession(id string, form Form) (*ApplyResult, error) {
	return callPtr[ApplyResult](c, http.MethodPost, endpoint("sessions", id, "apply"), form)
}

// CancelSession discards a session.
func (c *Client) CancelSession(id string) error {
	return c.exec(http.MethodDelete, endpoint("sessions", id), nil)
}
