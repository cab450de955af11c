package api

import (
	"fmt"
	"net/http"

	"github.com/marmos91/smbmanager/internal/controlplane/api/auth"
	"github.com/marmos91/smbmanager/internal/httpsrv"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	metricsprom "github.com/marmos91/smbmanager/pkg/metrics/prometheus"
)

// Server serves the REST API routed by NewRouter. It is registered with the
// runtime as an auxiliary server, which drives Start and Stop.
type Server struct {
	*httpsrv.Server
}

// NewServer builds a stopped API server. The signing secret comes from
// SMBM_CONTROLPLANE_SECRET or config.JWT.Secret and must be at least
// MinJWTSecretLength bytes. rt may be nil, which leaves only health and
// account routes usable.
func NewServer(config APIConfig, rt *runtime.Runtime, cpStore store.Store) (*Server, error) {
	config.ApplyDefaults()

	secret := config.Secret()
	if len(secret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters; set %s or controlplane.jwt.secret",
			MinJWTSecretLength, EnvControlPlaneSecret)
	}

	tokens, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               secret,
		Issuer:               auth.DefaultIssuer,
		AccessTokenDuration:  config.JWT.AccessTokenDuration,
		RefreshTokenDuration: config.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	srv := httpsrv.New("API server", &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(rt, tokens, cpStore, metricsprom.NewHTTPMetrics()),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	})
	return &Server{srv}, nil
}
