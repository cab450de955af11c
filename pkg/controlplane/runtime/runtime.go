// Package runtime coordinates reads of the Samba registry configuration,
// edit sessions, applies and the apply audit trail. It is the single entry
// point the control plane API uses to touch `net conf`.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
)

const (
	// DefaultShutdownTimeout bounds the graceful stop of auxiliary servers.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultSessionTTL is how long an idle edit session stays open.
	DefaultSessionTTL = 15 * time.Minute
)

// Backend is the Samba configuration the runtime reads and writes.
// *netconf.Client implements it.
type Backend interface {
	reconcile.KeyDeleter
	reconcile.KeySetter

	Snapshot(ctx context.Context) (*smbconf.Snapshot, error)
	AddShare(ctx context.Context, name, path string) error
	DeleteShare(ctx context.Context, name string) error
}

// Metrics observes runtime activity. Implementations must tolerate being
// called from multiple goroutines.
type Metrics interface {
	ObserveSnapshot(duration time.Duration, sections, skipped int, err error)
	SetOpenSessions(n int)
}

// AuxiliaryServer is an HTTP server (API, metrics) that runs alongside the
// runtime for the lifetime of Serve.
type AuxiliaryServer interface {
	// Start starts the HTTP server and blocks until context is cancelled or error.
	Start(ctx context.Context) error
	// Stop initiates graceful shutdown.
	Stop(ctx context.Context) error
	// Port returns the TCP port the server is listening on.
	Port() int
}

// Runtime manages edit sessions and applies against a Backend.
//
// Applies are serialized: the registry is a single shared resource and the
// delete-then-set sequence of one apply must not interleave with another.
type Runtime struct {
	backend      Backend
	store        store.ApplyStore
	orchestrator *reconcile.Orchestrator
	metrics      Metrics

	policy     reconcile.AdvancedPolicy
	sessionTTL time.Duration
	now        func() time.Time

	applyMu  sync.Mutex
	sessions *sessionTable
	reaper   *SessionReaper

	auxMu           sync.Mutex
	auxServers      []AuxiliaryServer
	shutdownTimeout time.Duration

	serveOnce sync.Once
	served    bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithMetrics attaches a runtime metrics observer.
func WithMetrics(m Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// WithApplyMetrics attaches a metrics observer to the apply orchestrator.
func WithApplyMetrics(m reconcile.Metrics) Option {
	return func(r *Runtime) {
		r.orchestrator = reconcile.NewOrchestrator(r.backend, r.backend, reconcile.WithMetrics(m))
	}
}

// WithAdvancedPolicy selects how advanced-text entries enter a delta.
func WithAdvancedPolicy(p reconcile.AdvancedPolicy) Option {
	return func(r *Runtime) { r.policy = p }
}

// WithSessionTTL sets the idle lifetime of edit sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(r *Runtime) {
		if ttl > 0 {
			r.sessionTTL = ttl
		}
	}
}

// WithShutdownTimeout sets the graceful stop timeout for auxiliary servers.
func WithShutdownTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.shutdownTimeout = d
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// New creates a Runtime over backend. s may be nil, in which case applies
// are not recorded.
func New(backend Backend, s store.ApplyStore, opts ...Option) *Runtime {
	r := &Runtime{
		backend:         backend,
		store:           s,
		policy:          reconcile.AdvancedResend,
		sessionTTL:      DefaultSessionTTL,
		now:             time.Now,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	r.orchestrator = reconcile.NewOrchestrator(backend, backend)
	for _, opt := range opts {
		opt(r)
	}
	r.sessions = newSessionTable(r.now)
	r.reaper = NewSessionReaper(r, DefaultReapInterval)
	return r
}

// Policy returns the advanced-text policy used for new sessions.
func (r *Runtime) Policy() reconcile.AdvancedPolicy {
	return r.policy
}

// Snapshot reads and parses the current configuration.
func (r *Runtime) Snapshot(ctx context.Context) (*smbconf.Snapshot, error) {
	start := time.Now()
	snap, err := r.backend.Snapshot(ctx)

	sections, skipped := 0, 0
	if snap != nil {
		sections, skipped = len(snap.Sections()), snap.Skipped()
	}
	if r.metrics != nil {
		r.metrics.ObserveSnapshot(time.Since(start), sections, skipped, err)
	}
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read configuration", logger.Err(err))
		return nil, fmt.Errorf("%w: %w", models.ErrConfigUnavailable, err)
	}
	if skipped > 0 {
		logger.DebugCtx(ctx, "Configuration listing had unparsable lines", logger.Count(skipped))
	}
	return snap, nil
}

// ============================================================================
// Lifecycle: Serve, shutdown
// ============================================================================

// AddAuxiliaryServer registers a server started by Serve. It panics if
// Serve has already been called.
func (r *Runtime) AddAuxiliaryServer(server AuxiliaryServer) {
	r.auxMu.Lock()
	defer r.auxMu.Unlock()
	if r.served {
		panic("cannot add auxiliary server after Serve() has been called")
	}
	if server != nil {
		r.auxServers = append(r.auxServers, server)
		logger.Info("Auxiliary server registered", "port", server.Port())
	}
}

// Serve starts the session reaper and the auxiliary servers, and blocks
// until ctx is cancelled or a server fails.
func (r *Runtime) Serve(ctx context.Context) error {
	var err error
	r.serveOnce.Do(func() {
		r.auxMu.Lock()
		r.served = true
		servers := append([]AuxiliaryServer(nil), r.auxServers...)
		r.auxMu.Unlock()
		err = r.serve(ctx, servers)
	})
	return err
}

func (r *Runtime) serve(ctx context.Context, servers []AuxiliaryServer) error {
	logger.Info("Starting smbm runtime", "servers", len(servers), "session_ttl", r.sessionTTL)

	r.reaper.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			if err := srv.Start(gctx); err != nil {
				logger.Error("Server error - initiating shutdown", "port", srv.Port(), logger.Err(err))
				return err
			}
			return nil
		})
	}

	<-gctx.Done()
	if ctx.Err() != nil {
		logger.Info("Shutdown signal received", "reason", ctx.Err())
	}

	r.shutdown(servers)
	err := g.Wait()

	logger.Info("smbm runtime stopped")
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return ctx.Err()
}

// shutdown stops the reaper and every auxiliary server.
func (r *Runtime) shutdown(servers []AuxiliaryServer) {
	r.reaper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("Server shutdown error", "port", srv.Port(), logger.Err(err))
		}
	}

	if n := r.sessions.clear(); n > 0 {
		logger.Info("Discarded open edit sessions", logger.Count(n))
	}
	r.reportSessions()
}
