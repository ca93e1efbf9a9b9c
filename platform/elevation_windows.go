//go:build windows

package platform

import (
	"errors"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// ErrElevationDeclined indicates the user rejected the UAC prompt.
var ErrElevationDeclined = errors.New("administrator elevation declined")

// IsElevated reports whether the process holds an elevated token.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// EnsureElevated starts an elevated copy of the executable with args through
// the "runas" verb. It returns nil once the copy is running, after which the
// caller should exit, or ErrElevationDeclined if the UAC prompt was refused.
func EnsureElevated(args []string) error {
	if IsElevated() {
		return nil
	}

	exePath, err := os.Executable()
	if err != nil {
		return err
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = QuoteArg(a)
	}
	err = windows.ShellExecute(0,
		windows.StringToUTF16Ptr("runas"),
		windows.StringToUTF16Ptr(exePath),
		windows.StringToUTF16Ptr(strings.Join(quoted, " ")),
		nil,
		windows.SW_SHOWNORMAL,
	)
	if err != nil {
		if errors.Is(err, windows.ERROR_CANCELLED) {
			return ErrElevationDeclined
		}
		return err
	}
	return nil
}
