//go:build darwin

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShortcutExt is the file extension of shortcuts on this platform.
const ShortcutExt = ".command"

// CreateShortcut writes an executable shell launcher at path.
func CreateShortcut(path string, s Shortcut) error {
	if _, err := os.Stat(s.Target); err != nil {
		return fmt.Errorf("target not found: %s", s.Target)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(path), err)
	}
	workingDir := s.WorkingDir
	if workingDir == "" {
		workingDir = filepath.Dir(s.Target)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if s.Description != "" {
		fmt.Fprintf(&b, "# %s\n", s.Description)
	}
	fmt.Fprintf(&b, "cd %s || exit 1\n", shellQuote(workingDir))
	fmt.Fprintf(&b, "exec %s", shellQuote(s.Target))
	if s.Arguments != "" {
		b.WriteString(" " + s.Arguments)
	}
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		return fmt.Errorf("write launcher: %w", err)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
