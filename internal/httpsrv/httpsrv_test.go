package httpsrv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHello() *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "hello") })
	return New("test server", &http.Server{Addr: "127.0.0.1:0", Handler: mux})
}

func waitForPort(t *testing.T, s *Server) int {
	t.Helper()
	require.Eventually(t, func() bool { return s.Port() != 0 }, 5*time.Second, 10*time.Millisecond)
	return s.Port()
}

func TestNew_Port(t *testing.T) {
	s := New("x", &http.Server{Addr: ":8181"})
	assert.Equal(t, 8181, s.Port())
}

func TestStart_ServesUntilCancelled(t *testing.T) {
	s := newHello()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	port := waitForPort(t, s)
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStop_EndsStart(t *testing.T) {
	s := newHello()
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	waitForPort(t, s)

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Stop(context.Background()), "second stop")
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStart_ListenError(t *testing.T) {
	s := New("bad", &http.Server{Addr: "256.0.0.1:1"})
	assert.ErrorContains(t, s.Start(context.Background()), "bad failed to listen")
}
