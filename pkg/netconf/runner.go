// Package netconf drives the Samba registry configuration through the
// `net conf` command line tool. Client implements the key deleter and key
// setter sinks used by the apply orchestrator.
package netconf

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process
// was killed on cancellation.
const waitDelay = time.Second

// Runner executes a command and returns its combined stdout and stderr.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout bounds each command. Zero means no limit beyond ctx.
	Timeout time.Duration

	// MaxOutput caps the captured output in bytes. Output past the cap is
	// discarded. Zero means unlimited.
	MaxOutput int64
}

func (r ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	buf := &cappedBuffer{max: r.MaxOutput}
	cmd.Stdout = buf
	cmd.Stderr = buf
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		return buf.Bytes(), ctx.Err()
	}
	return buf.Bytes(), err
}

// cappedBuffer keeps at most max bytes and silently drops the rest so the
// child never blocks on a full pipe.
type cappedBuffer struct {
	bytes.Buffer
	max int64
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.max <= 0 {
		return b.Buffer.Write(p)
	}
	if room := b.max - int64(b.Len()); room > 0 {
		if int64(len(p)) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}

// SinkError carries the output of a failed command. Its message is the
// command's own output so callers can show it verbatim.
type SinkError struct {
	Command  string
	Output   string
	ExitCode int
	Err      error
}

func (e *SinkError) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return out
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed: " + e.Command
}

func (e *SinkError) Unwrap() error { return e.Err }

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
