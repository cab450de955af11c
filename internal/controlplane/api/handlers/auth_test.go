package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

func (ts *testServer) anonymous(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		rr := ts.anonymous(t, http.MethodPost, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decode[LoginResponse](t, rr)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "admin", resp.User.Role)

		user, err := ts.store.GetUser(context.Background(), "alice")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLogin)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		rr := ts.anonymous(t, http.MethodPost, "/auth/login", LoginRequest{Username: "alice", Password: "nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		rr := ts.anonymous(t, http.MethodPost, "/auth/login", LoginRequest{Username: "bob", Password: "whatever1"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		rr := ts.anonymous(t, http.MethodPost, "/auth/login", LoginRequest{Username: "alice"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)

	alice, err := ts.store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	pair, err := ts.jwt.GenerateTokenPair(alice)
	require.NoError(t, err)

	rr := ts.anonymous(t, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[LoginResponse](t, rr).AccessToken)

	rr = ts.anonymous(t, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "access tokens cannot refresh")
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[UserResponse](t, rr).Username)

	rr = ts.anonymous(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUsers(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/users", CreateUserRequest{Username: "bob", Password: "bob-password"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	bob := decode[UserResponse](t, rr)
	assert.Equal(t, "viewer", bob.Role)
	assert.False(t, bob.MustChangePassword)

	rr = ts.do(t, http.MethodPost, "/users", CreateUserRequest{Username: "bob", Password: "bob-password"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(t, http.MethodPost, "/users", CreateUserRequest{Username: "carol", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/users", CreateUserRequest{Username: "carol", Password: "carol-password", Role: "root"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]UserResponse](t, rr), 2)

	rr = ts.do(t, http.MethodDelete, "/users/alice", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code, "own account")

	rr = ts.do(t, http.MethodDelete, "/users/"+models.AdminUsername, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(t, http.MethodDelete, "/users/bob", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.do(t, http.MethodDelete, "/users/bob", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestChangeOwnPassword(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/users/me/password", ChangePasswordRequest{NewPassword: "new-password"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "current password required")

	rr = ts.do(t, http.MethodPost, "/users/me/password", ChangePasswordRequest{
		CurrentPassword: "wrong-password", NewPassword: "new-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodPost, "/users/me/password", ChangePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "new-password",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[LoginResponse](t, rr).AccessToken)

	_, err := ts.store.ValidateCredentials(context.Background(), "alice", "new-password")
	assert.NoError(t, err)
}
