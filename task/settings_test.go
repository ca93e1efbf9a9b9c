package task

import (
	"testing"

	"github.com/crafted-tech/selfinstall/platform"
	"github.com/stretchr/testify/require"
)

func requireSetting(t *testing.T, scope, key, want string, exists bool) {
	t.Helper()
	s, err := platform.OpenSettings(scope, false)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Value(key)
	require.NoError(t, err)
	require.Equal(t, exists, ok)
	require.Equal(t, want, got)
}
