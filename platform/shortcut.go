package platform

import (
	"errors"
	"io/fs"
	"os"
)

// Shortcut describes a launcher for an installed program.
type Shortcut struct {
	Target      string // Path to the target executable
	Arguments   string // Command-line arguments (optional)
	WorkingDir  string // Working directory (optional, defaults to target's directory)
	Description string // Tooltip description (optional)
	IconPath    string // Path to icon file (optional, defaults to target)
	IconIndex   int    // Icon index within the icon file (optional, Windows only)
}

// DeleteShortcut removes a shortcut file. A missing file is not an error.
func DeleteShortcut(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
