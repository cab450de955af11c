package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbmanager/internal/controlplane/api/auth"
	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	"github.com/marmos91/smbmanager/pkg/netconf"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

// fakeBackend is an in-memory registry configuration.
type fakeBackend struct {
	mu     sync.Mutex
	global map[string]string
	shares map[string]map[string]string
	fail   map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		global: map[string]string{"workgroup": "WORKGROUP"},
		shares: map[string]map[string]string{
			"media": {"path": "/srv/media", "read-only": "yes", "vfs-objects": "fruit"},
		},
		fail: map[string]error{},
	}
}

func (f *fakeBackend) setFail(sub string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[sub] = err
}

func (f *fakeBackend) target(section string) map[string]string {
	if smbconf.IsGlobal(section) {
		return f.global
	}
	return f.shares[section]
}

func (f *fakeBackend) Snapshot(context.Context) (*smbconf.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["list"]; err != nil {
		return nil, err
	}
	shares := make(map[string]map[string]string, len(f.shares))
	for name, params := range f.shares {
		shares[name] = maps.Clone(params)
	}
	return smbconf.NewSnapshot(maps.Clone(f.global), shares), nil
}

func (f *fakeBackend) AddShare(_ context.Context, name, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["addshare"]; err != nil {
		return err
	}
	f.shares[name] = map[string]string{"path": path}
	return nil
}

func (f *fakeBackend) DeleteShare(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["delshare"]; err != nil {
		return err
	}
	delete(f.shares, name)
	return nil
}

func (f *fakeBackend) DeleteKeys(_ context.Context, section string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["delparm"]; err != nil {
		return err
	}
	for _, k := range keys {
		delete(f.target(section), k)
	}
	return nil
}

func (f *fakeBackend) SetKeys(_ context.Context, section string, parms map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["setparm"]; err != nil {
		return err
	}
	maps.Copy(f.target(section), parms)
	return nil
}

func (f *fakeBackend) share(name string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.shares[name])
}

type testServer struct {
	router  http.Handler
	backend *fakeBackend
	store   store.Store
	jwt     *auth.JWTService
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "api.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testSecret})
	require.NoError(t, err)

	backend := newFakeBackend()
	rt := runtime.New(backend, s)

	shares := NewShareHandler(rt)
	global := NewGlobalHandler(rt)
	sessions := NewSessionHandler(rt)
	history := NewHistoryHandler(rt)
	config := NewConfigHandler(rt)
	health := NewHealthHandler(rt, s)
	authHandler := NewAuthHandler(s, jwtService)
	users, err := NewUserHandler(s, jwtService)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/health", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh", authHandler.Refresh)
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtService))
		r.Get("/auth/me", authHandler.Me)
		r.Post("/users/me/password", users.ChangeOwnPassword)
		r.Get("/users", users.List)
		r.Post("/users", users.Create)
		r.Delete("/users/{username}", users.Delete)
		r.Get("/shares", shares.List)
		r.Post("/shares", shares.Create)
		r.Get("/shares/{name}", shares.Get)
		r.Put("/shares/{name}", shares.Update)
		r.Delete("/shares/{name}", shares.Delete)
		r.Get("/global", global.Get)
		r.Put("/global", global.Update)
		r.Post("/sessions", sessions.Open)
		r.Get("/sessions/{id}", sessions.Get)
		r.Post("/sessions/{id}/apply", sessions.Apply)
		r.Delete("/sessions/{id}", sessions.Cancel)
		r.Get("/history", history.List)
		r.Get("/config/raw", config.Raw)
	})

	hash, err := models.HashPassword("correct-horse")
	require.NoError(t, err)
	_, err = s.CreateUser(context.Background(), &models.User{
		Username: "alice", PasswordHash: hash, Enabled: true, Role: string(models.RoleAdmin),
	})
	require.NoError(t, err)
	alice, err := s.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	pair, err := jwtService.GenerateTokenPair(alice)
	require.NoError(t, err)

	return &testServer{router: r, backend: backend, store: s, jwt: jwtService, token: pair.AccessToken}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func formOf(bound map[string]string, advanced string) reconcile.Form {
	return reconcile.Form{Bound: bound, Advanced: advanced}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func TestShares_ListAndGet(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/shares", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	shares := decode[[]runtime.Section](t, rr)
	require.Len(t, shares, 1)
	assert.Equal(t, "media", shares[0].Name)
	assert.Equal(t, "yes", shares[0].Form.Bound["read-only"])
	assert.Equal(t, "vfs objects = fruit\n", shares[0].Form.Advanced)

	rr = ts.do(t, http.MethodGet, "/shares/media", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	share := decode[runtime.Section](t, rr)
	assert.Equal(t, "/srv/media", share.Params["path"])

	rr = ts.do(t, http.MethodGet, "/shares/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ContentTypeProblemJSON, rr.Header().Get("Content-Type"))

	rr = ts.do(t, http.MethodGet, "/shares/GLOBAL", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShares_CreateUpdateDelete(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/shares", CreateShareRequest{
		Name: "backup",
		Path: "/srv/backup",
		Form: formOf(map[string]string{"comment": "Nightly"}, ""),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[runtime.ApplyResult](t, rr)
	assert.Equal(t, "done", res.State)
	assert.Equal(t, "Nightly", ts.backend.share("backup")["comment"])
	assert.Equal(t, "/srv/backup", ts.backend.share("backup")["path"])

	rr = ts.do(t, http.MethodPost, "/shares", CreateShareRequest{Name: "Backup", Path: "/x"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(t, http.MethodPost, "/shares", CreateShareRequest{Name: "bad[name", Path: "/x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPut, "/shares/backup", formOf(map[string]string{"read-only": "no"}, ""))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "no", ts.backend.share("backup")["read-only"])

	rr = ts.do(t, http.MethodDelete, "/shares/backup", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, ts.backend.share("backup"))

	rr = ts.do(t, http.MethodDelete, "/shares/backup", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShares_EncodedName(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.shares["team docs"] = map[string]string{"path": "/srv/docs"}

	rr := ts.do(t, http.MethodGet, "/shares/team%20docs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "team docs", decode[runtime.Section](t, rr).Name)
}

func TestShares_ApplyFailureReturnsVerbatimOutput(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.setFail("setparm", &netconf.SinkError{
		Command: "net conf setparm",
		Output:  "setparm: Invalid parameter 'read only' value 'maybe'\n",
	})

	rr := ts.do(t, http.MethodPut, "/shares/media", formOf(map[string]string{"read-only": "no"}, "vfs objects = fruit\n"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, ContentTypeProblemJSON, rr.Header().Get("Content-Type"))

	problem := decode[struct {
		ApplyProblem
		Result runtime.ApplyResult `json:"result"`
	}](t, rr)
	assert.Equal(t, ProblemTypeApplyFailed, problem.Type)
	assert.Equal(t, "setparm: Invalid parameter 'read only' value 'maybe'", problem.Detail)
	assert.Equal(t, "set", problem.Step)
	assert.Equal(t, "failed", problem.Result.State)
	assert.NotEmpty(t, problem.Result.RecordID)
}

func TestShares_ConfigUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.setFail("list", errors.New("net: registry not available"))

	rr := ts.do(t, http.MethodGet, "/shares", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "registry not available")
}

func TestGlobal_GetAndUpdate(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/global", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	section := decode[runtime.Section](t, rr)
	assert.Equal(t, "WORKGROUP", section.Form.Bound["workgroup"])

	rr = ts.do(t, http.MethodPut, "/global", formOf(map[string]string{"workgroup": "HOME"}, ""))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "HOME", ts.backend.global["workgroup"])
}

func TestSessions_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/sessions", OpenSessionRequest{Section: "media"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	s := decode[runtime.Session](t, rr)
	assert.Equal(t, "media", s.Section)
	assert.Equal(t, "alice", s.Actor)

	rr = ts.do(t, http.MethodGet, "/sessions/"+s.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodPost, "/sessions/"+s.ID+"/apply", formOf(map[string]string{"read-only": "no"}, ""))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[runtime.ApplyResult](t, rr)
	assert.Equal(t, map[string]string{"read-only": "no"}, res.Delta.ToSet)
	assert.Equal(t, []string{"vfs-objects"}, res.Delta.ToDelete)

	rr = ts.do(t, http.MethodGet, "/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "apply closes the session")

	rr = ts.do(t, http.MethodPost, "/sessions", OpenSessionRequest{Section: "media"})
	require.Equal(t, http.StatusCreated, rr.Code)
	s = decode[runtime.Session](t, rr)
	rr = ts.do(t, http.MethodDelete, "/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.do(t, http.MethodDelete, "/sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodPost, "/sessions", OpenSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistory_List(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPut, "/shares/media", formOf(map[string]string{"read-only": "no"}, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodGet, "/history?section=media&limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[[]HistoryEntry](t, rr)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Actor)
	assert.Equal(t, "done", entries[0].State)
	assert.Equal(t, "no", entries[0].ToSet["read-only"])
	assert.Equal(t, []string{"vfs-objects"}, entries[0].ToDelete)

	rr = ts.do(t, http.MethodGet, "/history?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConfig_Raw(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/config/raw", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "[media]")
	assert.Contains(t, rr.Body.String(), "vfs objects = fruit")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[HealthResponse](t, rr)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "smbm", resp.Data.(map[string]any)["service"])

	rr = ts.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	ts.backend.setFail("list", errors.New("boom"))
	rr = ts.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "boom")
}

func TestReadiness_NotInitialized(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
