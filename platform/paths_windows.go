//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// StartMenuPath returns the common (all users) Start Menu Programs folder.
// Example: C:\ProgramData\Microsoft\Windows\Start Menu\Programs
func StartMenuPath() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_CommonPrograms, 0)
}

// UserStartMenuPath returns the current user's Start Menu Programs folder.
// Example: C:\Users\<user>\AppData\Roaming\Microsoft\Windows\Start Menu\Programs
func UserStartMenuPath() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Programs, 0)
}

// ProgramFilesPath returns the Program Files folder.
func ProgramFilesPath() string {
	if path := os.Getenv("ProgramFiles"); path != "" {
		return path
	}
	return `C:\Program Files`
}

// LocalAppDataPath returns the current user's local app data folder.
// Example: C:\Users\<user>\AppData\Local
func LocalAppDataPath() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_LocalAppData, 0)
}

// ProgramsPath returns the default parent of installation directories:
// Program Files for all users, %LOCALAPPDATA%\Programs otherwise.
func ProgramsPath(allUsers bool) (string, error) {
	if allUsers {
		return ProgramFilesPath(), nil
	}
	local, err := LocalAppDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(local, "Programs"), nil
}
