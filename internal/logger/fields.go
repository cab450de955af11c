package logger

import (
	"log/slog"
	"strings"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID   = "trace_id"   // OpenTelemetry trace ID for request correlation
	KeySpanID    = "span_id"    // OpenTelemetry span ID for operation tracking
	KeyRequestID = "request_id" // HTTP request ID

	// ========================================================================
	// Samba configuration
	// ========================================================================
	KeySection  = "section"   // Section name: global or a share name
	KeyScope    = "scope"     // Binding scope: share, global
	KeyParm     = "parm"      // Normalized parameter key
	KeyValue    = "value"     // Parameter value
	KeyLine     = "line"      // Raw input line (parser diagnostics)
	KeyLineNo   = "line_no"   // 1-based input line number
	KeyToSet    = "to_set"    // Number of keys in a delta's set half
	KeyToDelete = "to_delete" // Number of keys in a delta's delete half
	KeyState    = "state"     // Apply state machine state
	KeyStep     = "step"      // Apply step: delete, set
	KeySession  = "session"   // Edit session ID

	// ========================================================================
	// Command execution
	// ========================================================================
	KeyCommand  = "command"   // Executed command line
	KeyExitCode = "exit_code" // Process exit code
	KeyOutput   = "output"    // Combined process output

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP = "client_ip" // Client IP address
	KeyActor    = "actor"     // Authenticated admin username

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOperation  = "operation"   // Operation name
	KeyCount      = "count"       // Generic counter
)

// TraceID returns a trace ID attribute
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a span ID attribute
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

func Section(name string) slog.Attr {
	return slog.String(KeySection, name)
}

func Scope(scope string) slog.Attr {
	return slog.String(KeyScope, scope)
}

func Parm(key string) slog.Attr {
	return slog.String(KeyParm, key)
}

func Value(v string) slog.Attr {
	return slog.String(KeyValue, v)
}

func Line(l string) slog.Attr {
	return slog.String(KeyLine, l)
}

func LineNo(n int) slog.Attr {
	return slog.Int(KeyLineNo, n)
}

func ToSet(n int) slog.Attr {
	return slog.Int(KeyToSet, n)
}

func ToDelete(n int) slog.Attr {
	return slog.Int(KeyToDelete, n)
}

func State(s string) slog.Attr {
	return slog.String(KeyState, s)
}

func Step(s string) slog.Attr {
	return slog.String(KeyStep, s)
}

func Session(id string) slog.Attr {
	return slog.String(KeySession, id)
}

// Command returns the command line joined with spaces
func Command(name string, args ...string) slog.Attr {
	return slog.String(KeyCommand, strings.TrimSpace(name+" "+strings.Join(args, " ")))
}

func ExitCode(code int) slog.Attr {
	return slog.Int(KeyExitCode, code)
}

func Output(out string) slog.Attr {
	return slog.String(KeyOutput, out)
}

func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

func Actor(name string) slog.Attr {
	return slog.String(KeyActor, name)
}

// DurationMs returns a duration attribute in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an error attribute; nil errors yield an empty attribute
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
