//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// ShortcutExt is the file extension of shortcuts on this platform.
const ShortcutExt = ".lnk"

// CreateShortcut creates a shell link at lnkPath through WScript.Shell.
func CreateShortcut(lnkPath string, s Shortcut) error {
	if _, err := os.Stat(s.Target); err != nil {
		return fmt.Errorf("target not found: %s", s.Target)
	}

	// COM is thread-bound.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE means COM was already initialized on this thread.
		if errors.As(err, &oleErr) && oleErr.Code() > 1 {
			return oleFailure("initialize COM", err)
		}
	}
	defer ole.CoUninitialize()

	return saveShellLink(lnkPath, s)
}

// saveShellLink expects COM to be initialized on the calling thread.
func saveShellLink(lnkPath string, s Shortcut) error {
	if err := os.MkdirAll(filepath.Dir(lnkPath), 0o755); err != nil {
		return fmt.Errorf("create shortcut directory: %w", err)
	}
	_ = DeleteShortcut(lnkPath)

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return oleFailure("create WScript.Shell", err)
	}
	defer unknown.Release()
	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return oleFailure("query WScript.Shell", err)
	}
	defer shell.Release()

	v, err := oleutil.CallMethod(shell, "CreateShortcut", lnkPath)
	if err != nil {
		return oleFailure("CreateShortcut", err)
	}
	link := v.ToIDispatch()
	defer link.Release()

	workingDir := s.WorkingDir
	if workingDir == "" {
		workingDir = filepath.Dir(s.Target)
	}
	iconPath := s.IconPath
	if iconPath == "" {
		iconPath = s.Target
	}
	props := []struct{ name, value string }{
		{"TargetPath", s.Target},
		{"Arguments", s.Arguments},
		{"WorkingDirectory", workingDir},
		{"Description", s.Description},
		{"IconLocation", fmt.Sprintf("%s,%d", iconPath, s.IconIndex)},
	}
	for _, p := range props {
		if p.value == "" {
			continue
		}
		if _, err := oleutil.PutProperty(link, p.name, p.value); err != nil {
			return oleFailure("set "+p.name, err)
		}
	}

	if _, err := oleutil.CallMethod(link, "Save"); err != nil {
		return oleFailure("save shortcut", err)
	}
	return nil
}

func oleFailure(op string, err error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return fmt.Errorf("%s: %s (HRESULT 0x%08X)", op, oleErr.Error(), uint32(oleErr.Code()))
	}
	return fmt.Errorf("%s: %w", op, err)
}
