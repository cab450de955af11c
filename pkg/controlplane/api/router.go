package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/smbmanager/internal/controlplane/api/auth"
	"github.com/marmos91/smbmanager/internal/controlplane/api/handlers"
	mw "github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/controlplane/store"
	metricsprom "github.com/marmos91/smbmanager/pkg/metrics/prometheus"
)

// RequestTimeout cancels the context of a request that runs longer. It is
// kept below DefaultWriteTimeout so the client still receives the 504.
const RequestTimeout = 50 * time.Second

const changePasswordPath = "/api/v1/users/me/password"

// NewRouter wires the health probes and the /api/v1 tree.
//
// Reads of shares, the global section, history and the rendered config are
// open to every role. Writes, sessions and account management need admin.
// Until a flagged account changes its password only changePasswordPath
// and /auth are reachable. httpMetrics may be nil.
func NewRouter(rt *runtime.Runtime, tokens *auth.JWTService, cpStore store.Store, httpMetrics *metricsprom.HTTPMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		mw.LogContext,
		httpMetrics.Middleware,
		requestLogger,
		middleware.Recoverer,
		middleware.Timeout(RequestTimeout),
	)

	var pinger handlers.Pinger
	if cpStore != nil {
		pinger = cpStore
	}
	health := handlers.NewHealthHandler(rt, pinger)
	r.Get("/health", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Get("/", http.RedirectHandler("/health", http.StatusTemporaryRedirect).ServeHTTP)

	users, err := handlers.NewUserHandler(cpStore, tokens)
	if err != nil {
		panic("api: " + err.Error())
	}

	r.Route("/api/v1", func(r chi.Router) {
		mountAuth(r, handlers.NewAuthHandler(cpStore, tokens), users, tokens)

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTAuth(tokens), mw.RequirePasswordChange(changePasswordPath))
			mountUsers(r, users)
			mountConfig(r, rt)
		})
	})
	return r
}

func mountAuth(r chi.Router, h *handlers.AuthHandler, users *handlers.UserHandler, tokens *auth.JWTService) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.With(mw.JWTAuth(tokens)).Get("/auth/me", h.Me)
	// Outside the password-change gate, which would otherwise lock it out.
	r.With(mw.JWTAuth(tokens)).Post(strings.TrimPrefix(changePasswordPath, "/api/v1"), users.ChangeOwnPassword)
}

func mountUsers(r chi.Router, users *handlers.UserHandler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(mw.RequireAdmin())
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Delete("/{username}", users.Delete)
	})
}

func mountConfig(r chi.Router, rt *runtime.Runtime) {
	read := r.With(mw.RequireRole(string(models.RoleAdmin), string(models.RoleViewer)))
	admin := r.With(mw.RequireAdmin())

	shares := handlers.NewShareHandler(rt)
	read.Get("/shares", shares.List)
	read.Get("/shares/{name}", shares.Get)
	admin.Post("/shares", shares.Create)
	admin.Put("/shares/{name}", shares.Update)
	admin.Delete("/shares/{name}", shares.Delete)

	global := handlers.NewGlobalHandler(rt)
	read.Get("/global", global.Get)
	admin.Put("/global", global.Update)

	sessions := handlers.NewSessionHandler(rt)
	admin.Post("/sessions", sessions.Open)
	admin.Get("/sessions/{id}", sessions.Get)
	admin.Post("/sessions/{id}/apply", sessions.Apply)
	admin.Delete("/sessions/{id}", sessions.Cancel)

	read.Get("/history", handlers.NewHistoryHandler(rt).List)
	read.Get("/config/raw", handlers.NewConfigHandler(rt).Raw)
}

// requestLogger logs each completed request. Health probes go to DEBUG.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log := logger.InfoCtx
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/health/") {
			log = logger.DebugCtx
		}
		log(r.Context(), "API request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(float64(logger.FromContext(r.Context()).Elapsed().Microseconds())/1000))
	})
}
