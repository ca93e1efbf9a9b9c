//go:build linux

package platform

import (
	"os"
	"path/filepath"
)

// UserDataPath returns $XDG_DATA_HOME, or ~/.local/share by default.
func UserDataPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// UserConfigPath returns $XDG_CONFIG_HOME, or ~/.config by default.
func UserConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// SystemDataPath returns the machine-wide state directory.
func SystemDataPath() string { return "/var/lib" }

// SystemConfigPath returns the machine-wide XDG config directory.
func SystemConfigPath() string { return "/etc/xdg" }

// StartMenuPath returns the directory holding system-wide .desktop entries.
func StartMenuPath() (string, error) {
	return "/usr/share/applications", nil
}

// UserStartMenuPath returns the directory holding the user's .desktop
// entries.
func UserStartMenuPath() (string, error) {
	dataPath, err := UserDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataPath, "applications"), nil
}

// ProgramsPath returns the default parent of installation directories:
// /opt for all users, ~/.local/opt otherwise.
func ProgramsPath(allUsers bool) (string, error) {
	if allUsers {
		return "/opt", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "opt"), nil
}
