// Package logger is the process-wide structured logger of smbm and smbmctl:
// log/slog behind a colored text handler for terminals and a JSON handler
// for log shipping.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Config selects level, encoding and destination.
type Config struct {
	Level  string // DEBUG, INFO, WARN or ERROR
	Format string // text or json
	Output string // stdout, stderr or a file path
}

// sink is where lines go and how they are encoded.
type sink struct {
	w      io.Writer
	closer io.Closer
	json   bool
	color  bool
}

var (
	level = new(slog.LevelVar)

	mu      sync.RWMutex
	current = sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd())}
	slogger *slog.Logger
)

func init() {
	install(current)
}

// install makes s the active sink. It closes the previous file, if any,
// when s writes elsewhere.
func install(s sink) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if s.json {
		h = slog.NewJSONHandler(s.w, opts)
	} else {
		h = newTextHandler(s.w, level, s.color)
	}

	mu.Lock()
	defer mu.Unlock()
	if current.closer != nil && current.closer != s.closer {
		_ = current.closer.Close()
	}
	current = s
	slogger = slog.New(h)
}

// ParseLevel reads a level name case-insensitively. WARNING is accepted
// for WARN.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func openOutput(dest string) (sink, error) {
	switch strings.ToLower(dest) {
	case "", "stdout":
		return sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd())}, nil
	case "stderr":
		return sink{w: os.Stderr, color: isTerminal(os.Stderr.Fd())}, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return sink{}, fmt.Errorf("open log file %q: %w", dest, err)
	}
	return sink{w: f, closer: f}, nil
}

// Init applies cfg. Empty fields keep their current value, except Output,
// which falls back to stdout.
func Init(cfg Config) error {
	s, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	mu.RLock()
	s.json = current.json
	mu.RUnlock()
	if cfg.Format != "" {
		s.json = strings.EqualFold(cfg.Format, "json")
	}
	SetLevel(cfg.Level)
	install(s)
	return nil
}

// InitWithWriter sends logs to w. Used by tests.
func InitWithWriter(w io.Writer, levelName, format string, color bool) {
	SetLevel(levelName)
	install(sink{w: w, json: strings.EqualFold(format, "json"), color: color})
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := ParseLevel(name); ok {
		level.Set(l)
	}
}

// GetLevel returns the minimum level.
func GetLevel() slog.Level {
	return level.Level()
}

// SetFormat switches between text and json. Other values are ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	mu.RLock()
	s := current
	mu.RUnlock()
	s.json = format == "json"
	install(s)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// With returns a logger carrying args on every line.
func With(args ...any) *slog.Logger { return get().With(args...) }

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// DebugCtx and the other *Ctx functions put the fields of the ctx
// LogContext ahead of args.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if level.Level() > slog.LevelDebug {
		return
	}
	get().Debug(msg, withScope(ctx, args)...)
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	get().Info(msg, withScope(ctx, args)...)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	get().Warn(msg, withScope(ctx, args)...)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().Error(msg, withScope(ctx, args)...)
}

func withScope(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	out := make([]any, 0, 12+len(args))
	for _, f := range [...]struct{ key, value string }{
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeyRequestID, lc.RequestID},
		{KeySection, lc.Section},
		{KeyActor, lc.Actor},
		{KeyClientIP, lc.ClientIP},
	} {
		if f.value != "" {
			out = append(out, f.key, f.value)
		}
	}
	return append(out, args...)
}

// Duration is the time since start in fractional milliseconds.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
