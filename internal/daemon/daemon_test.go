//go:build !windows

package daemon

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "smbm"), StateDir())
	assert.Equal(t, filepath.Join(dir, "smbm", "smbm.pid"), DefaultPidFile())
	assert.Equal(t, filepath.Join(dir, "smbm", "smbm.log"), DefaultLogFile())

	t.Setenv("XDG_STATE_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "state", "smbm"), StateDir())
}

func TestWriteAndReadPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "smbm.pid")

	remove, err := WritePID(path)
	require.NoError(t, err)

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	got, ok := Running(path)
	assert.True(t, ok)
	assert.Equal(t, os.Getpid(), got)

	remove()
	_, ok = Running(path)
	assert.False(t, ok)
}

func TestReadPID_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smbm.pid")
	for _, content := range []string{"", "abc", "-4"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := ReadPID(path)
		assert.ErrorContains(t, err, "invalid PID file", content)
	}
}

func TestStop(t *testing.T) {
	t.Run("no pid file", func(t *testing.T) {
		_, err := Stop(filepath.Join(t.TempDir(), "missing.pid"), false)
		assert.ErrorIs(t, err, ErrNotRunning)
	})

	t.Run("stale pid file is removed", func(t *testing.T) {
		child := exec.Command("true")
		require.NoError(t, child.Run())
		path := filepath.Join(t.TempDir(), "smbm.pid")
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(child.Process.Pid)), 0o644))

		_, err := Stop(path, false)
		assert.ErrorIs(t, err, ErrNotRunning)
		assert.NoFileExists(t, path)
	})

	t.Run("terminates the process", func(t *testing.T) {
		child := exec.Command("sleep", "30")
		require.NoError(t, child.Start())
		done := make(chan struct{})
		go func() { _ = child.Wait(); close(done) }()

		path := filepath.Join(t.TempDir(), "smbm.pid")
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(child.Process.Pid)), 0o644))

		pid, err := Stop(path, false)
		require.NoError(t, err)
		assert.Equal(t, child.Process.Pid, pid)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("process survived SIGTERM")
		}
	})
}
