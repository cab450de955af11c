package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
)

// HealthCheckTimeout bounds the readiness probe: one database ping and one
// `net conf list`.
const HealthCheckTimeout = 5 * time.Second

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Healthcheck(ctx context.Context) error
}

// HealthResponse is the body of both health endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthHandler serves the unauthenticated liveness and readiness probes.
type HealthHandler struct {
	rt      *runtime.Runtime
	store   Pinger
	started time.Time
}

// NewHealthHandler returns a handler. With a nil rt or store readiness
// always fails.
func NewHealthHandler(rt *runtime.Runtime, store Pinger) *HealthHandler {
	return &HealthHandler{rt: rt, store: store, started: time.Now()}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	up := time.Since(h.started)
	writeHealth(w, true, map[string]any{
		"service":    "smbm",
		"started_at": h.started.UTC().Format(time.RFC3339),
		"uptime":     up.Round(time.Second).String(),
		"uptime_sec": int64(up.Seconds()),
	}, "")
}

// Readiness handles GET /health/ready: 200 when the database answers and
// `net conf list` succeeds, 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.rt == nil || h.store == nil {
		writeHealth(w, false, nil, "runtime not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	checks := map[string]CheckResult{
		"database": timed(func() error { return h.store.Healthcheck(ctx) }),
		"samba": timed(func() error {
			_, err := h.rt.Snapshot(ctx)
			return err
		}),
	}
	ok := true
	for _, c := range checks {
		ok = ok && c.Status == statusHealthy
	}
	writeHealth(w, ok, checks, "")
}

func writeHealth(w http.ResponseWriter, ok bool, data any, msg string) {
	resp := HealthResponse{Status: statusHealthy, Timestamp: time.Now().UTC(), Data: data, Error: msg}
	status := http.StatusOK
	if !ok {
		resp.Status = statusUnhealthy
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, resp)
}

func timed(fn func() error) CheckResult {
	start := time.Now()
	err := fn()
	res := CheckResult{Status: statusHealthy, Latency: time.Since(start).String()}
	if err != nil {
		res.Status = statusUnhealthy
		res.Error = err.Error()
	}
	return res
}
