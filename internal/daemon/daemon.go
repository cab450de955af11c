// Package daemon holds the process plumbing of `smbm start`, `stop` and
// `status`: state paths, the PID file and detaching into the background.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotRunning means no live process owns the PID file.
var ErrNotRunning = errors.New("server is not running")

// StateDir is $XDG_STATE_HOME/smbm, falling back to ~/.local/state/smbm.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "smbm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "smbm")
	}
	return filepath.Join(home, ".local", "state", "smbm")
}

func DefaultPidFile() string { return filepath.Join(StateDir(), "smbm.pid") }

func DefaultLogFile() string { return filepath.Join(StateDir(), "smbm.log") }

// WritePID records the current process in path and returns a func that
// removes it.
func WritePID(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write PID file: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}

// ReadPID parses the PID stored in path.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID file %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Running returns the PID in path when that process is alive.
func Running(path string) (int, bool) {
	pid, err := ReadPID(path)
	if err != nil || !alive(pid) {
		return 0, false
	}
	return pid, true
}

// Stop signals the process recorded in path: a graceful stop, or a kill
// when force is set. A stale PID file is removed and reported as
// ErrNotRunning.
func Stop(path string, force bool) (int, error) {
	pid, err := ReadPID(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: no PID file at %s", ErrNotRunning, path)
	}
	if err != nil {
		return 0, err
	}
	if !alive(pid) {
		_ = os.Remove(path)
		return pid, fmt.Errorf("%w: process %d is gone", ErrNotRunning, pid)
	}
	if err := signal(pid, force); err != nil {
		return pid, fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return pid, nil
}
