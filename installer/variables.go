package installer

import (
	"bytes"
	"strings"
)

// expandVariables replaces every @name@ span in s with lookup(name). An
// unterminated @ leaves the rest of s untouched.
func expandVariables(s string, lookup func(string) string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	var b strings.Builder
	for {
		start := strings.IndexByte(s, '@')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], '@')
		if end < 0 {
			break
		}
		end += start + 1
		b.WriteString(s[:start])
		b.WriteString(lookup(s[start+1 : end]))
		s = s[end+1:]
	}
	b.WriteString(s)
	return b.String()
}

// expandVariablesInBytes is expandVariables over raw bytes. Names and
// values are treated as narrow text.
func expandVariablesInBytes(data []byte, lookup func(string) string) []byte {
	if bytes.IndexByte(data, '@') < 0 {
		return data
	}
	out := make([]byte, 0, len(data))
	for {
		start := bytes.IndexByte(data, '@')
		if start < 0 {
			break
		}
		end := bytes.IndexByte(data[start+1:], '@')
		if end < 0 {
			break
		}
		end += start + 1
		out = append(out, data[:start]...)
		out = append(out, lookup(string(data[start+1:end]))...)
		data = data[end+1:]
	}
	return append(out, data...)
}

// ReplaceVariables expands @Name@ placeholders from the variable table.
// Unknown names expand to the empty string.
func (in *Installer) ReplaceVariables(s string) string {
	return expandVariables(s, in.Value)
}

// ReplaceVariablesInBytes expands @Name@ placeholders in raw bytes.
func (in *Installer) ReplaceVariablesInBytes(b []byte) []byte {
	return expandVariablesInBytes(b, in.Value)
}
