package installer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandVariables(t *testing.T) {
	vars := map[string]string{"A": "x", "B": "y", "TargetDir": "/opt/demo"}
	lookup := func(name string) string { return vars[name] }

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two variables", "@A@/@B@", "x/y"},
		{"no placeholders", "plain text", "plain text"},
		{"unterminated", "@UNCLOSED", "@UNCLOSED"},
		{"unterminated after expansion", "@A@ and @B", "x and @B"},
		{"unknown name", "<@Missing@>", "<>"},
		{"empty name", "a@@b", "ab"},
		{"path", "@TargetDir@/bin/tool", "/opt/demo/bin/tool"},
		{"adjacent", "@A@@B@", "xy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, expandVariables(tc.in, lookup))
			require.Equal(t, tc.want, string(expandVariablesInBytes([]byte(tc.in), lookup)))
		})
	}
}

func TestReplaceVariablesUsesGlobals(t *testing.T) {
	in := &Installer{vars: map[string]string{"ProductName": "Demo"}}
	require.Equal(t, "Demo settings", in.ReplaceVariables("@ProductName@ settings"))
	require.Equal(t, []byte("[Demo]"), in.ReplaceVariablesInBytes([]byte("[@ProductName@]")))
}
