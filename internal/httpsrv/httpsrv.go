// Package httpsrv runs an http.Server for the lifetime of a context. The API
// and the metrics endpoint both use it.
package httpsrv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/smbmanager/internal/logger"
)

// DefaultShutdownTimeout bounds the drain after the context ends.
const DefaultShutdownTimeout = 5 * time.Second

// errClosed ends the run group when Stop closed the server directly.
var errClosed = errors.New("server closed")

// Server is an http.Server with a Start/Stop lifecycle. Start may be
// called once.
type Server struct {
	name     string
	srv      *http.Server
	port     atomic.Int64
	grace    time.Duration
	stopOnce sync.Once
	stopErr  error
}

// New prepares srv for serving on srv.Addr. name labels log lines.
func New(name string, srv *http.Server) *Server {
	s := &Server{name: name, srv: srv, grace: DefaultShutdownTimeout}
	if _, p, err := net.SplitHostPort(srv.Addr); err == nil {
		var port int
		_, _ = fmt.Sscan(p, &port)
		s.port.Store(int64(port))
	}
	return s
}

// Start listens and serves until ctx is cancelled or Stop is called, then
// drains. A listen or serve failure is returned; a clean stop returns nil.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("%s failed to listen: %w", s.name, err)
	}
	s.port.Store(int64(ln.Addr().(*net.TCPAddr).Port))
	logger.Info(s.name+" listening", "port", s.Port())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return errClosed
		}
		return fmt.Errorf("%s failed: %w", s.name, err)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
		defer cancel()
		return s.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests. Later calls return the first result.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if err := s.srv.Shutdown(ctx); err != nil {
			s.stopErr = fmt.Errorf("%s shutdown: %w", s.name, err)
			return
		}
		logger.Info(s.name + " stopped")
	})
	return s.stopErr
}

// Port is the configured port, or the bound one once Start has listened.
func (s *Server) Port() int {
	return int(s.port.Load())
}

// Handler returns the served handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
