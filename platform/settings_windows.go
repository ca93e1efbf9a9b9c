//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// Settings is a persistent string store for one scope, backed by the
// registry key Software\<scope> under HKCU or HKLM.
type Settings struct {
	key registry.Key
}

// OpenSettings opens the store for scope, a slash separated path such as
// "Publisher/Product". allUsers selects HKLM.
func OpenSettings(scope string, allUsers bool) (*Settings, error) {
	scope = strings.Trim(scope, "/")
	if scope == "" {
		return nil, fmt.Errorf("open settings: empty scope")
	}
	root := registry.CURRENT_USER
	if allUsers {
		root = registry.LOCAL_MACHINE
	}
	path := `Software\` + strings.ReplaceAll(scope, "/", `\`)
	key, _, err := registry.CreateKey(root, path, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}
	return &Settings{key: key}, nil
}

// Value returns the stored value and whether it exists.
func (s *Settings) Value(name string) (string, bool, error) {
	v, _, err := s.key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", name, err)
	}
	return v, true, nil
}

// SetValue stores value under name.
func (s *Settings) SetValue(name, value string) error {
	if err := s.key.SetStringValue(name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Delete removes name. A missing value is not an error.
func (s *Settings) Delete(name string) error {
	err := s.key.DeleteValue(name)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Close releases the registry handle.
func (s *Settings) Close() error {
	return s.key.Close()
}
