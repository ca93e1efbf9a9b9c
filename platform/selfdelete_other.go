//go:build !windows

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
)

// NeedsRelocatedUninstall reports whether a running executable is locked
// against deletion. Unix systems unlink running binaries directly.
func NeedsRelocatedUninstall() bool { return false }

// StartDetached launches exe with args in a new session without waiting
// for it.
func StartDetached(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	return cmd.Process.Release()
}

// ScheduleFileDelete removes filePath immediately.
func ScheduleFileDelete(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
