package task

import (
	"fmt"
	"io"
	"strings"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
)

// WriteSettings stores one persistent setting for the product. The store is
// scoped by the Publisher and ProductName variables and lives machine-wide
// when AllUsers is "true".
//
// Undo restores the value that existed before installation, or deletes the
// key if there was none.
type WriteSettings struct {
	Key   string
	Value string

	scope       string
	allUsers    bool
	hadPrevious bool
	previous    string
	written     bool
}

// NewWriteSettings returns a task that stores value under key.
func NewWriteSettings(key, value string) *WriteSettings {
	return &WriteSettings{Key: key, Value: value}
}

func (s *WriteSettings) Kind() Kind { return KindWriteSettings }

// Describe returns a short summary.
func (s *WriteSettings) Describe() string {
	return fmt.Sprintf("Setting %s=%s", s.Key, s.Value)
}

// SettingsScope returns the store scope for a publisher and product name.
func SettingsScope(publisher, product string) string {
	var parts []string
	for _, p := range []string{publisher, product} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// WriteToInstaller writes the key and value.
func (s *WriteSettings) WriteToInstaller(w io.Writer) error {
	if err := archive.AppendString(w, s.Key); err != nil {
		return err
	}
	return archive.AppendString(w, s.Value)
}

// ReadAndExecuteFromInstaller resolves variables in key and value and writes
// the setting, remembering what it replaced.
func (s *WriteSettings) ReadAndExecuteFromInstaller(env Env, r io.Reader) error {
	key, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("settings key: %w", err)
	}
	value, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("settings value: %w", err)
	}
	s.Key = env.ReplaceVariables(key)
	s.Value = env.ReplaceVariables(value)
	s.scope = SettingsScope(env.Value("Publisher"), env.Value("ProductName"))
	s.allUsers = env.Value("AllUsers") == "true"
	env.SetProgressText("Writing setting " + s.Key)

	store, err := platform.OpenSettings(s.scope, s.allUsers)
	if err != nil {
		return err
	}
	defer store.Close()

	prev, ok, err := store.Value(s.Key)
	if err != nil {
		return err
	}
	s.previous, s.hadPrevious = prev, ok
	s.written = true
	return store.SetValue(s.Key, s.Value)
}

// WriteToUninstaller writes the scope, the key and the value to restore.
func (s *WriteSettings) WriteToUninstaller(w io.Writer) error {
	if err := archive.AppendString(w, s.scope); err != nil {
		return err
	}
	if err := archive.AppendInt(w, boolInt(s.allUsers)); err != nil {
		return err
	}
	if err := archive.AppendString(w, s.Key); err != nil {
		return err
	}
	if err := archive.AppendInt(w, boolInt(s.hadPrevious)); err != nil {
		return err
	}
	return archive.AppendString(w, s.previous)
}

// ReadAndExecuteFromUninstaller restores the setting.
func (s *WriteSettings) ReadAndExecuteFromUninstaller(env Env, r io.Reader) error {
	scope, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("settings scope: %w", err)
	}
	allUsers, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("settings location: %w", err)
	}
	key, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("settings key: %w", err)
	}
	hadPrevious, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("settings previous flag: %w", err)
	}
	previous, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("settings previous value: %w", err)
	}
	s.scope, s.allUsers, s.Key = scope, allUsers != 0, key
	s.hadPrevious, s.previous = hadPrevious != 0, previous
	s.written = true
	env.SetProgressText("Restoring setting " + key)
	return s.Undo()
}

// Undo puts back the previous value or deletes the key.
func (s *WriteSettings) Undo() error {
	if !s.written {
		return nil
	}
	store, err := platform.OpenSettings(s.scope, s.allUsers)
	if err != nil {
		return err
	}
	defer store.Close()

	if s.hadPrevious {
		return store.SetValue(s.Key, s.previous)
	}
	return store.Delete(s.Key)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
