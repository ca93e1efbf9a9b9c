//go:build !windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Settings is a persistent string store for one scope. Elsewhere than on
// Windows it is a YAML file named after the scope under the config directory.
type Settings struct {
	path   string
	values map[string]string
}

// OpenSettings opens the store for scope, a slash separated path such as
// "Publisher/Product". allUsers selects the machine-wide location.
func OpenSettings(scope string, allUsers bool) (*Settings, error) {
	scope = strings.Trim(scope, "/")
	if scope == "" {
		return nil, fmt.Errorf("open settings: empty scope")
	}
	base := SystemConfigPath()
	if !allUsers {
		var err error
		if base, err = UserConfigPath(); err != nil {
			return nil, fmt.Errorf("open settings: %w", err)
		}
	}

	s := &Settings{
		path:   filepath.Join(base, filepath.FromSlash(scope)) + ".yaml",
		values: map[string]string{},
	}
	if err := readYAMLFile(s.path, &s.values); err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// Path returns the backing file.
func (s *Settings) Path() string { return s.path }

// Value returns the stored value and whether it exists.
func (s *Settings) Value(key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

// SetValue stores value under key.
func (s *Settings) SetValue(key, value string) error {
	s.values[key] = value
	return s.flush()
}

// Delete removes key. A missing key is not an error.
func (s *Settings) Delete(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

// Close releases the store.
func (s *Settings) Close() error { return nil }

func (s *Settings) flush() error {
	if len(s.values) == 0 {
		if err := removeFileAndEmptyParent(s.path); err != nil {
			return fmt.Errorf("remove settings %s: %w", s.path, err)
		}
		return nil
	}
	if err := writeYAMLFile(s.path, s.values); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
