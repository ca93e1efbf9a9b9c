//go:build darwin

package platform

import (
	"os"
	"path/filepath"
)

func userLibrary(sub ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home, "Library"}, sub...)...), nil
}

// UserDataPath returns ~/Library/Application Support.
func UserDataPath() (string, error) {
	return userLibrary("Application Support")
}

// UserConfigPath returns ~/Library/Preferences.
func UserConfigPath() (string, error) {
	return userLibrary("Preferences")
}

// SystemDataPath returns /Library/Application Support.
func SystemDataPath() string { return "/Library/Application Support" }

// SystemConfigPath returns /Library/Preferences.
func SystemConfigPath() string { return "/Library/Preferences" }

// StartMenuPath returns /Applications.
func StartMenuPath() (string, error) {
	return "/Applications", nil
}

// UserStartMenuPath returns ~/Applications.
func UserStartMenuPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Applications"), nil
}

// ProgramsPath returns the default parent of installation directories.
func ProgramsPath(allUsers bool) (string, error) {
	if allUsers {
		return "/Applications", nil
	}
	return UserStartMenuPath()
}
