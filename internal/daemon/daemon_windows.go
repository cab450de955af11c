//go:build windows

package daemon

import (
	"errors"
	"os"
)

func alive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}

func signal(pid int, _ bool) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func Spawn([]string, string) (int, error) {
	return 0, errors.New("daemon mode is not supported on Windows; use 'smbm start --foreground'")
}
