package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/smbmanager/internal/httpsrv"
)

// Server exposes the registry at GET /metrics. Start, Stop and Port come
// from the embedded httpsrv.Server.
type Server struct {
	*httpsrv.Server
}

// ServerConfig configures the metrics HTTP server.
type ServerConfig struct {
	// Port to listen on; 0 picks a free port. Negative means 9090.
	Port int
}

// NewServer creates a stopped metrics server.
func NewServer(config ServerConfig) *Server {
	if config.Port < 0 {
		config.Port = 9090
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler())

	return &Server{httpsrv.New("metrics server", &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	})}
}

func metricsHandler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics collection is disabled", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          reg,
	})
}
