//go:build !windows

package platform

import (
	"errors"
	"os"
)

// ErrElevationDeclined indicates the process lacks root privileges.
var ErrElevationDeclined = errors.New("administrator elevation declined")

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// EnsureElevated returns ErrElevationDeclined unless the process runs as root.
// args are ignored; relaunching through sudo is left to the user.
func EnsureElevated(args []string) error {
	if IsElevated() {
		return nil
	}
	return ErrElevationDeclined
}
