package apiclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	c, seen := fakeServer(t, http.StatusOK, []User{
		{ID: "1", Username: "admin", Role: "admin", Enabled: true},
		{ID: "2", Username: "watcher", Role: "viewer", Enabled: true},
	})

	users, err := c.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users", seen.Path)
	require.Len(t, users, 2)
	assert.Equal(t, "watcher", users[1].Username)
}

func TestCreateUser(t *testing.T) {
	c, seen := fakeServer(t, http.StatusCreated, User{ID: "u2", Username: "bob", Role: "viewer", MustChangePassword: true})

	enabled := true
	user, err := c.CreateUser(&CreateUserRequest{Username: "bob", Password: "pw", Role: "viewer", Enabled: &enabled})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.Method)
	req := decodeBody[CreateUserRequest](t, seen)
	assert.Equal(t, "bob", req.Username)
	require.NotNil(t, req.Enabled)
	assert.True(t, *req.Enabled)
	assert.True(t, user.MustChangePassword)
}

func TestCreateUser_Duplicate(t *testing.T) {
	c, _ := fakeServer(t, http.StatusConflict, `{"title":"Conflict","status":409,"detail":"user already exists"}`)

	_, err := c.CreateUser(&CreateUserRequest{Username: "bob", Password: "pw"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())
}

func TestDeleteUser(t *testing.T) {
	c, seen := fakeServer(t, http.StatusNoContent, nil)

	require.NoError(t, c.DeleteUser("bob smith"))
	assert.Equal(t, http.MethodDelete, seen.Method)
	assert.Equal(t, "/api/v1/users/bob smith", seen.Path)
}

func TestChangeOwnPassword(t *testing.T) {
	c, seen := fakeServer(t, http.StatusOK, TokenResponse{AccessToken: "fresh"})

	resp, err := c.ChangeOwnPassword("old", "new")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users/me/password", seen.Path)
	assert.Equal(t, ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new"}, decodeBody[ChangePasswordRequest](t, seen))
	assert.Equal(t, "fresh", resp.AccessToken)
}
