//go:build !windows

package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const registryDirName = "selfinstall/uninstall"

// RegisterApp writes a machine-wide uninstall record.
// The registryKey should be unique to the product (e.g. "Company.Product").
func RegisterApp(registryKey string, info AppInfo) error {
	return writeAppRecord(true, registryKey, info)
}

// RegisterUserApp writes an uninstall record for the current user.
func RegisterUserApp(registryKey string, info AppInfo) error {
	return writeAppRecord(false, registryKey, info)
}

// UnregisterApp removes the machine-wide uninstall record.
func UnregisterApp(registryKey string) error {
	return deleteAppRecord(true, registryKey)
}

// UnregisterUserApp removes the current user's uninstall record.
func UnregisterUserApp(registryKey string) error {
	return deleteAppRecord(false, registryKey)
}

// FindInstalledApp looks up a machine-wide installation.
// Returns nil if the app is not installed.
func FindInstalledApp(registryKey string) (*AppInfo, error) {
	return readAppRecord(true, registryKey)
}

// FindInstalledUserApp looks up a per-user installation.
// Returns nil if the app is not installed for the current user.
func FindInstalledUserApp(registryKey string) (*AppInfo, error) {
	return readAppRecord(false, registryKey)
}

func appRecordPath(allUsers bool, registryKey string) (string, error) {
	if registryKey == "" {
		return "", ErrEmptyRegistryKey
	}
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(registryKey) + ".yaml"
	if allUsers {
		return filepath.Join(SystemDataPath(), filepath.FromSlash(registryDirName), name), nil
	}
	base, err := UserDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, filepath.FromSlash(registryDirName), name), nil
}

func writeAppRecord(allUsers bool, registryKey string, info AppInfo) error {
	path, err := appRecordPath(allUsers, registryKey)
	if err != nil {
		return err
	}
	return writeYAMLFile(path, info.withDefaults())
}

func deleteAppRecord(allUsers bool, registryKey string) error {
	path, err := appRecordPath(allUsers, registryKey)
	if err != nil {
		return err
	}
	return removeFileAndEmptyParent(path)
}

func readAppRecord(allUsers bool, registryKey string) (*AppInfo, error) {
	path, err := appRecordPath(allUsers, registryKey)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	info := &AppInfo{}
	if err := readYAMLFile(path, info); err != nil {
		return nil, err
	}
	return info, nil
}
