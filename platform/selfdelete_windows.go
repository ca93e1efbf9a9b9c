//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/windows"
)

// NeedsRelocatedUninstall reports whether a running executable is locked
// against deletion, so an uninstaller must run from a temporary copy.
func NeedsRelocatedUninstall() bool { return true }

// StartDetached launches exe with args in a new process group without
// waiting for it.
func StartDetached(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	return cmd.Process.Release()
}

// ScheduleFileDelete starts a detached cmd.exe helper that retries deleting
// filePath, then its directory if empty, until the file is released.
func ScheduleFileDelete(filePath string) error {
	script := fmt.Sprintf(
		`:loop & del /f /q "%[1]s" 2>nul & if exist "%[1]s" ( timeout /t 1 /nobreak >nul & goto loop ) & rd "%[2]s" 2>nul`,
		filePath, filepath.Dir(filePath),
	)

	cmd := exec.Command("cmd.exe", "/C", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start delete helper: %w", err)
	}
	return nil
}
