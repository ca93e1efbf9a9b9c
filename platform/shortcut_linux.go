//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShortcutExt is the file extension of shortcuts on this platform.
const ShortcutExt = ".desktop"

// CreateShortcut writes a freedesktop.org desktop entry at path.
func CreateShortcut(path string, s Shortcut) error {
	if _, err := os.Stat(s.Target); err != nil {
		return fmt.Errorf("target not found: %s", s.Target)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(path), err)
	}

	name := strings.TrimSuffix(filepath.Base(path), ShortcutExt)
	workingDir := s.WorkingDir
	if workingDir == "" {
		workingDir = filepath.Dir(s.Target)
	}
	exec := desktopQuote(s.Target)
	if s.Arguments != "" {
		exec += " " + s.Arguments
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", name)
	fmt.Fprintf(&b, "Exec=%s\n", exec)
	fmt.Fprintf(&b, "Path=%s\n", workingDir)
	if s.Description != "" {
		fmt.Fprintf(&b, "Comment=%s\n", s.Description)
	}
	if s.IconPath != "" {
		fmt.Fprintf(&b, "Icon=%s\n", s.IconPath)
	}
	b.WriteString("Terminal=false\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

// desktopQuote quotes an Exec argument per the desktop entry rules.
func desktopQuote(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\$`") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}
