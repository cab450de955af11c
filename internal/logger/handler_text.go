package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

const textTimeLayout = "2006-01-02 15:04:05"

// textOutput is shared by a handler and every handler derived from it.
type textOutput struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// textHandler writes one line per record:
//
//	[2006-01-02 15:04:05] [INFO] message key=value key2="quoted value"
//
// Groups become dotted key prefixes.
type textHandler struct {
	out   *textOutput
	level slog.Leveler
	// pre holds the already rendered WithAttrs attributes.
	pre   []byte
	group string
}

func newTextHandler(w io.Writer, level slog.Leveler, color bool) *textHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &textHandler{out: &textOutput{w: w, color: color}, level: level}
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 128+len(h.pre))
	line = append(line, '[')
	line = r.Time.AppendFormat(line, textTimeLayout)
	line = append(line, "] ["...)
	line = append(line, h.levelLabel(r.Level)...)
	line = append(line, "] "...)
	line = append(line, r.Message...)
	line = append(line, h.pre...)
	r.Attrs(func(a slog.Attr) bool {
		line = h.appendAttr(line, h.group, a)
		return true
	})
	line = append(line, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(line)
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.pre = append([]byte(nil), h.pre...)
	for _, a := range attrs {
		next.pre = h.appendAttr(next.pre, h.group, a)
	}
	return &next
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func (h *textHandler) levelLabel(l slog.Level) string {
	label, color := "ERROR", ansiRed
	switch {
	case l < slog.LevelInfo:
		label, color = "DEBUG", ansiGray
	case l < slog.LevelWarn:
		label, color = "INFO", ansiGreen
	case l < slog.LevelError:
		label, color = "WARN", ansiYellow
	}
	if !h.out.color {
		return label
	}
	return color + label + ansiReset
}

func (h *textHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range a.Value.Group() {
			buf = h.appendAttr(buf, prefix, member)
		}
		return buf
	}

	buf = append(buf, ' ')
	if h.out.color {
		buf = append(buf, ansiCyan...)
	}
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	if h.out.color {
		buf = append(buf, ansiReset...)
	}
	buf = append(buf, '=')
	return append(buf, textValue(a.Value)...)
}

// textValue renders v so that the line splits back on spaces: strings that
// are empty or contain blanks, quotes or '=' are quoted.
func textValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}
