package apiclient

import (
	"net/http"
	"time"
)

// User represents a control plane account.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"display_name,omitempty"`
	Role               string     `json:"role"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// CreateUserRequest is the request to create an account.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

// ChangePasswordRequest is the request to change a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// ListUsers returns all accounts.
func (c *Client) ListUsers() ([]User, error) {
	return call[[]User](c, http.MethodGet, endpoint("users"), nil)
}

// CreateUser creates an account.
func (c *Client) CreateUser(req *CreateUserRequest) (*User, error) {
	return callPtr[User](c, http.MethodPost, endpoint("users"), req)
}

// DeleteUser deletes an account.
func (c *Client) DeleteUser(username string) error {
	return c.exec(http.MethodDelete, endpoint("users", username), nil)
}

// ChangeOwnPassword changes the authenticated user's password and returns
// fresh tokens.
func (c *Client) ChangeOwnPassword(currentPassword, newPassword string) (*TokenResponse, error) {
	return callPtr[TokenResponse](c, http.MethodPost, endpoint("users", "me", "password"), ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
}
