//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const uninstallKeyBase = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\`

// RegisterApp creates an Add/Remove Programs entry under HKLM.
// The registryKey should be unique to the product (e.g. "Company.Product").
func RegisterApp(registryKey string, info AppInfo) error {
	return writeAppKey(registry.LOCAL_MACHINE, registryKey, info)
}

// RegisterUserApp creates a per-user Add/Remove Programs entry (HKCU).
// No elevation required.
func RegisterUserApp(registryKey string, info AppInfo) error {
	return writeAppKey(registry.CURRENT_USER, registryKey, info)
}

// UnregisterApp removes the HKLM uninstall entry.
func UnregisterApp(registryKey string) error {
	return deleteAppKey(registry.LOCAL_MACHINE, registryKey)
}

// UnregisterUserApp removes the HKCU uninstall entry.
func UnregisterUserApp(registryKey string) error {
	return deleteAppKey(registry.CURRENT_USER, registryKey)
}

// FindInstalledApp looks up a per-machine installation.
// Returns nil if the app is not installed.
func FindInstalledApp(registryKey string) (*AppInfo, error) {
	return readAppKey(registry.LOCAL_MACHINE, registryKey)
}

// FindInstalledUserApp looks up a per-user installation.
// Returns nil if the app is not installed for the current user.
func FindInstalledUserApp(registryKey string) (*AppInfo, error) {
	return readAppKey(registry.CURRENT_USER, registryKey)
}

func writeAppKey(root registry.Key, registryKey string, info AppInfo) error {
	if registryKey == "" {
		return ErrEmptyRegistryKey
	}
	info = info.withDefaults()

	key, _, err := registry.CreateKey(root, uninstallKeyBase+registryKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create registry key: %w", err)
	}
	defer key.Close()

	stringValues := []struct{ name, value string }{
		{"DisplayName", info.DisplayName},
		{"DisplayVersion", info.DisplayVersion},
		{"Publisher", info.Publisher},
		{"InstallLocation", info.InstallLocation},
		{"UninstallString", info.UninstallString},
		{"DisplayIcon", info.DisplayIcon},
		{"URLInfoAbout", info.URLInfoAbout},
		{"HelpLink", info.HelpLink},
		{"InstallDate", info.InstallDate},
	}
	for _, v := range stringValues {
		if v.value == "" {
			continue
		}
		if err := key.SetStringValue(v.name, v.value); err != nil {
			return fmt.Errorf("set %s: %w", v.name, err)
		}
	}

	dwordValues := []struct {
		name  string
		value uint32
		set   bool
	}{
		{"NoModify", 1, info.NoModify},
		{"NoRepair", 1, info.NoRepair},
		{"EstimatedSize", info.EstimatedSize, info.EstimatedSize > 0},
	}
	for _, v := range dwordValues {
		if !v.set {
			continue
		}
		if err := key.SetDWordValue(v.name, v.value); err != nil {
			return fmt.Errorf("set %s: %w", v.name, err)
		}
	}
	return nil
}

func deleteAppKey(root registry.Key, registryKey string) error {
	if registryKey == "" {
		return ErrEmptyRegistryKey
	}
	err := registry.DeleteKey(root, uninstallKeyBase+registryKey)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete registry key: %w", err)
	}
	return nil
}

func readAppKey(root registry.Key, registryKey string) (*AppInfo, error) {
	if registryKey == "" {
		return nil, ErrEmptyRegistryKey
	}
	key, err := registry.OpenKey(root, uninstallKeyBase+registryKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, nil
	}
	defer key.Close()

	info := &AppInfo{}
	fields := []struct {
		name string
		dst  *string
	}{
		{"DisplayName", &info.DisplayName},
		{"DisplayVersion", &info.DisplayVersion},
		{"Publisher", &info.Publisher},
		{"InstallLocation", &info.InstallLocation},
		{"UninstallString", &info.UninstallString},
		{"DisplayIcon", &info.DisplayIcon},
		{"InstallDate", &info.InstallDate},
	}
	for _, f := range fields {
		if v, _, err := key.GetStringValue(f.name); err == nil {
			*f.dst = v
		}
	}
	return info, nil
}
