package apiclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	c, seen := fakeServer(t, http.StatusOK, TokenResponse{
		AccessToken: "acc", RefreshToken: "ref", TokenType: "Bearer",
		ExpiresIn: 3600, ExpiresAt: expires,
		User: &User{Username: "alice", Role: "admin"},
	})

	resp, err := c.Login("alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.Method)
	assert.Equal(t, "/api/v1/auth/login", seen.Path)
	assert.Equal(t, LoginRequest{Username: "alice", Password: "s3cret"}, decodeBody[LoginRequest](t, seen))

	assert.Equal(t, "acc", resp.AccessToken)
	assert.Equal(t, "ref", resp.RefreshToken)
	assert.True(t, expires.Equal(resp.ExpiresAt))
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLogin_Rejected(t *testing.T) {
	c, _ := fakeServer(t, http.StatusUnauthorized,
		`{"title":"Unauthorized","status":401,"detail":"invalid username or password"}`)

	resp, err := c.Login("alice", "wrong")
	assert.Nil(t, resp)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthError())
	assert.Equal(t, "invalid username or password", apiErr.Error())
}

func TestRefreshToken(t *testing.T) {
	c, seen := fakeServer(t, http.StatusOK, TokenResponse{AccessToken: "acc2", RefreshToken: "ref2"})

	resp, err := c.RefreshToken("ref1")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/auth/refresh", seen.Path)
	assert.Equal(t, map[string]string{"refresh_token": "ref1"}, decodeBody[map[string]string](t, seen))
	assert.Equal(t, "acc2", resp.AccessToken)
}

func TestMe(t *testing.T) {
	c, seen := fakeServer(t, http.StatusOK, User{ID: "u1", Username: "alice", Role: "viewer"})

	user, err := c.WithToken("tok").Me()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, seen.Method)
	assert.Equal(t, "/api/v1/auth/me", seen.Path)
	assert.Equal(t, "viewer", user.Role)
}

func TestHealth(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		c, seen := fakeServer(t, http.StatusOK, `{"status":"healthy","data":{"service":"smbm"}}`)
		resp, err := c.Health(false)
		require.NoError(t, err)
		assert.Equal(t, "/health", seen.Path)
		assert.Equal(t, "smbm", resp.Data["service"])
	})

	t.Run("not ready", func(t *testing.T) {
		c, seen := fakeServer(t, http.StatusServiceUnavailable, `{"status":"unhealthy","error":"database unreachable"}`)
		_, err := c.Health(true)
		assert.Equal(t, "/health/ready", seen.Path)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Equal(t, "database unreachable", apiErr.Error())
	})
}
