package apiclient

import (
	"net/http"
	"time"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login, refresh and password change.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// Login trades credentials for a token pair.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	return callPtr[TokenResponse](c, http.MethodPost, endpoint("auth", "login"),
		LoginRequest{Username: username, Password: password})
}

// RefreshToken trades a refresh token for a new pair.
func (c *Client) RefreshToken(refreshToken string) (*TokenResponse, error) {
	return callPtr[TokenResponse](c, http.MethodPost, endpoint("auth", "refresh"),
		map[string]string{"refresh_token": refreshToken})
}

// Me returns the account the token belongs to.
func (c *Client) Me() (*User, error) {
	return callPtr[User](c, http.MethodGet, endpoint("auth", "me"), nil)
}

// HealthResponse is the envelope of the health endpoints.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Health calls the liveness probe, or the readiness probe when ready is
// set. A failing readiness check comes back as *APIError with status 503.
func (c *Client) Health(ready bool) (*HealthResponse, error) {
	path := "/health"
	if ready {
		path += "/ready"
	}
	return callPtr[HealthResponse](c, http.MethodGet, path, nil)
}
