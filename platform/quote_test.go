package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteArg(t *testing.T) {
	require.Equal(t, "plain", QuoteArg("plain"))
	require.Equal(t, `"with space"`, QuoteArg("with space"))
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in, program, args string
	}{
		{"/opt/app/run", "/opt/app/run", ""},
		{"/opt/app/run --fast now", "/opt/app/run", "--fast now"},
		{`"/opt/my app/run" -v`, "/opt/my app/run", "-v"},
		{`"/opt/my app/run"`, "/opt/my app/run", ""},
		{`  "/unterminated`, "/unterminated", ""},
	}
	for _, tt := range tests {
		program, args := SplitCommand(tt.in)
		require.Equal(t, tt.program, program, tt.in)
		require.Equal(t, tt.args, args, tt.in)
	}
}
