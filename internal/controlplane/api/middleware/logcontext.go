package middleware

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/smbmanager/internal/logger"
)

// LogContext attaches a logger.LogContext carrying the request ID and the
// client address to every request. Mount it after chi's RequestID and
// RealIP middleware.
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext(clientIP(r.RemoteAddr))
		lc.RequestID = chimw.GetReqID(r.Context())
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), lc)))
	})
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
