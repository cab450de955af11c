package apiclient

import (
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Form is the editable view of a section: values of the bound fields and
// the free-form advanced text.
type Form struct {
	Bound    map[string]string `json:"bound"`
	Advanced string            `json:"advanced"`
}

// Section is the current state of a configuration section.
type Section struct {
	Name   string            `json:"name"`
	Scope  string            `json:"scope"`
	Params map[string]string `json:"params"`
	Form   Form              `json:"form"`
}

// Delta is what an apply set and deleted.
type Delta struct {
	ToSet    map[string]string `json:"to_set"`
	ToDelete []string          `json:"to_delete"`
}

// ApplyResult reports what an apply changed.
type ApplyResult struct {
	Section    string            `json:"section"`
	State      string            `json:"state"`
	Delta      Delta             `json:"delta"`
	Warnings   []string          `json:"warnings,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	RecordID   string            `json:"record_id,omitempty"`
}

// CreateShareRequest is the request to create a share.
type CreateShareRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Form Form   `json:"form"`
}

// HistoryEntry is one recorded apply.
type HistoryEntry struct {
	ID         string            `json:"id"`
	Section    string            `json:"section"`
	Scope      string            `json:"scope"`
	Operation  string            `json:"operation"`
	Actor      string            `json:"actor"`
	ToSet      map[string]string `json:"to_set"`
	ToDelete   []string          `json:"to_delete"`
	State      string            `json:"state"`
	Error      string            `json:"error,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ListShares returns every share section.
func (c *Client) ListShares() ([]Section, error) {
	return call[[]Section](c, http.MethodGet, endpoint("shares"), nil)
}

// GetShare returns one share section.
func (c *Client) GetShare(name string) (*Section, error) {
	return callPtr[Section](c, http.MethodGet, endpoint("shares", name), nil)
}

// CreateShare adds a share and applies form to it.
func (c *Client) CreateShare(req *CreateShareRequest) (*ApplyResult, error) {
	return callPtr[ApplyResult](c, http.MethodPost, endpoint("shares"), req)
}

// UpdateShare applies form to a share against its current state.
func (c *Client) UpdateShare(name string, form Form) (*ApplyResult, error) {
	return callPtr[ApplyResult](c, http.MethodPut, endpoint("shares", name), form)
}

// DeleteShare removes a share.
func (c *Client) DeleteShare(name string) error {
	return c.exec(http.MethodDelete, endpoint("shares", name), nil)
}

// GetGlobal returns the global section.
func (c *Client) GetGlobal() (*Section, error) {
	return callPtr[Section](c, http.MethodGet, endpoint("global"), nil)
}

// UpdateGlobal applies form to the global section.
func (c *Client) UpdateGlobal(form Form) (*ApplyResult, error) {
	return callPtr[ApplyResult](c, http.MethodPut, endpoint("global"), form)
}

// History returns recorded applies, newest first. Empty section and zero
// limit use the server defaults.
func (c *Client) History(section string, limit int) ([]HistoryEntry, error) {
	q := url.Values{}
	if section != "" {
		q.Set("section", section)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := endpoint("history")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return call[[]HistoryEntry](c, http.MethodGet, path, nil)
}

// RawConfig returns the configuration rendered in smb.conf syntax.
func (c *Client) RawConfig() (string, error) {
	body, err := c.roundTrip(http.MethodGet, endpoint("config", "raw"), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
