package platform

import "strings"

// QuoteArg wraps s in double quotes if it contains spaces.
func QuoteArg(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

// SplitCommand splits a command line into the program and the remaining
// arguments. A program path containing spaces must be quoted.
func SplitCommand(cmdline string) (program, args string) {
	cmdline = strings.TrimSpace(cmdline)
	if strings.HasPrefix(cmdline, `"`) {
		if end := strings.Index(cmdline[1:], `"`); end >= 0 {
			return cmdline[1 : end+1], strings.TrimSpace(cmdline[end+2:])
		}
		return strings.Trim(cmdline, `"`), ""
	}
	if i := strings.IndexAny(cmdline, " \t"); i >= 0 {
		return cmdline[:i], strings.TrimSpace(cmdline[i+1:])
	}
	return cmdline, ""
}
