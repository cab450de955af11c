// Package controlplane ties together the account and history store, the
// edit runtime over `net conf`, and the REST API.
//
//	cp, err := controlplane.New(ctx, &controlplane.Options{...})
//	...
//	defer cp.Close()
//	err = cp.Serve(ctx)
package controlplane

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/api"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
)

type ControlPlane struct {
	store     *store.GORMStore
	runtime   *runtime.Runtime
	apiServer *api.Server
}

type Options struct {
	Database *store.Config

	// API nil runs without the REST server.
	API *api.APIConfig

	// Backend is normally a *netconf.Client.
	Backend runtime.Backend

	Runtime []runtime.Option
}

// New opens the store and builds the runtime and, when configured, the API
// server. Nothing listens until Serve.
func New(ctx context.Context, opts *Options) (*ControlPlane, error) {
	switch {
	case opts == nil:
		return nil, errors.New("options cannot be nil")
	case opts.Database == nil:
		return nil, errors.New("database configuration is required")
	case opts.Backend == nil:
		return nil, errors.New("backend is required")
	}

	cpStore, err := store.New(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	cp := &ControlPlane{
		store:   cpStore,
		runtime: runtime.New(opts.Backend, cpStore, opts.Runtime...),
	}
	if opts.API == nil {
		return cp, nil
	}

	cp.apiServer, err = api.NewServer(*opts.API, cp.runtime, cpStore)
	if err != nil {
		_ = cpStore.Close()
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}
	cp.runtime.AddAuxiliaryServer(cp.apiServer)
	logger.InfoCtx(ctx, "Control plane API server initialized", "port", cp.apiServer.Port())
	return cp, nil
}

func (cp *ControlPlane) Store() *store.GORMStore   { return cp.store }
func (cp *ControlPlane) Runtime() *runtime.Runtime { return cp.runtime }
func (cp *ControlPlane) APIServer() *api.Server    { return cp.apiServer }

// Serve runs the runtime and its servers until ctx is cancelled.
func (cp *ControlPlane) Serve(ctx context.Context) error {
	return cp.runtime.Serve(ctx)
}

// EnsureAdmin creates the bootstrap administrator unless it exists and
// returns its password when one was generated. See
// store.UserStore.EnsureAdminUser.
func (cp *ControlPlane) EnsureAdmin(ctx context.Context, username, passwordHash string) (string, error) {
	return cp.store.EnsureAdminUser(ctx, username, passwordHash)
}

// Close closes the store.
func (cp *ControlPlane) Close() error {
	return cp.store.Close()
}
