//go:build linux || darwin

package platform

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapFileWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello NEEDLE world"), 0o644))

	m, err := MapFile(path)
	require.NoError(t, err)
	i := bytes.Index(m.Bytes(), []byte("NEEDLE"))
	require.Equal(t, 6, i)
	copy(m.Bytes()[i:], "patch!")
	require.NoError(t, m.Unmap())
	require.NoError(t, m.Unmap())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello patch! world", string(data))
}

func TestMapEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := MapFile(path)
	require.NoError(t, err)
	require.Empty(t, m.Bytes())
	require.NoError(t, m.Unmap())
}

func TestMapMissingFile(t *testing.T) {
	_, err := MapFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
