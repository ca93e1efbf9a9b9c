//go:build linux

package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMenuShortcutRoundTrip(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	target := t.TempDir()
	exe := filepath.Join(target, "widget")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	env := newFakeEnv(map[string]string{"TargetDir": target, "ProductName": "Widget"})
	installed, payload := install(t, env,
		NewMenuShortcut("Acme/@ProductName@", `"@TargetDir@/widget" --start`, "Start Widget"))

	entry := filepath.Join(data, "applications", "Acme", "Widget.desktop")
	require.Equal(t, entry, installed.(*MenuShortcut).Path())
	content, err := os.ReadFile(entry)
	require.NoError(t, err)
	require.Contains(t, string(content), "Exec="+exe+" --start\n")

	uninstall(t, env, KindMenuShortcut, payload)
	_, err = os.Stat(entry)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(data, "applications", "Acme"))
	require.True(t, os.IsNotExist(err), "empty menu folder is pruned")
	_, err = os.Stat(filepath.Join(data, "applications"))
	require.NoError(t, err, "menu root is kept")

	require.NoError(t, installed.Undo())
	require.NoError(t, installed.Undo())
}
