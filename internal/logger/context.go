package logger

import (
	"context"
	"time"
)

type ctxKey struct{}

// LogContext is the request or apply scope whose fields the *Ctx functions
// append to every line. Treat a stored LogContext as immutable; Annotate
// replaces it with a modified copy.
type LogContext struct {
	TraceID   string
	SpanID    string
	RequestID string
	Section   string // "global" or a share name
	Actor     string
	ClientIP  string
	StartTime time.Time
}

// NewLogContext starts a scope for a request from clientIP.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{ClientIP: clientIP, StartTime: time.Now()}
}

// WithContext stores lc in ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, lc)
}

// FromContext returns the LogContext of ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(ctxKey{}).(*LogContext)
	return lc
}

// Annotate returns ctx carrying a copy of its LogContext changed by fn. A
// fresh LogContext is started when ctx has none.
func Annotate(ctx context.Context, fn func(*LogContext)) context.Context {
	next := LogContext{StartTime: time.Now()}
	if lc := FromContext(ctx); lc != nil {
		next = *lc
	}
	fn(&next)
	return WithContext(ctx, &next)
}

// Elapsed is the time since the scope started, zero for a nil scope.
func (lc *LogContext) Elapsed() time.Duration {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return time.Since(lc.StartTime)
}
