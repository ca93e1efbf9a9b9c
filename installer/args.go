package installer

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Args is the parsed command line.
type Args struct {
	Help    bool
	NoGUI   bool
	Verbose bool
	LogFile string

	// Variables holds the name=value tokens. Later tokens win.
	Variables map[string]string

	// Raw is the command line as given, for relaunching.
	Raw []string
}

func newFlagSet(a *Args) *pflag.FlagSet {
	fs := pflag.NewFlagSet("installer", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.BoolVarP(&a.Help, "help", "h", false, "show this help and exit")
	fs.BoolVar(&a.NoGUI, "no-gui", false, "run without the interactive interface")
	fs.BoolVarP(&a.Verbose, "verbose", "v", false, "log diagnostics and print the variable table")
	fs.StringVar(&a.LogFile, "log-file", "", "append the log to this file")
	return fs
}

// ParseArgs parses argv (without the program name). Besides the flags it
// accepts name=value tokens and the bare words NoGui and Verbose.
func ParseArgs(argv []string) (*Args, error) {
	a := &Args{Variables: map[string]string{}, Raw: append([]string(nil), argv...)}
	fs := newFlagSet(a)
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	for _, tok := range fs.Args() {
		switch {
		case tok == "NoGui":
			a.NoGUI = true
		case tok == "Verbose":
			a.Verbose = true
		case strings.Contains(tok, "="):
			name, value, _ := strings.Cut(tok, "=")
			if name == "" {
				return nil, fmt.Errorf("argument %q has no variable name", tok)
			}
			a.Variables[name] = value
		default:
			return nil, fmt.Errorf("unexpected argument %q (expected name=value)", tok)
		}
	}
	return a, nil
}

// Options returns the installer options the command line implies. The
// variables override the values archived in the image.
func (a *Args) Options() []Option {
	return []Option{
		WithVariables(a.Variables),
		WithForwardedArgs(a.Raw),
	}
}

// Usage writes the help text for program to w.
func Usage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s [flags] [name=value ...]\n\n", program)
	fmt.Fprintf(w, "Flags:\n%s\n", newFlagSet(&Args{}).FlagUsages())
	fmt.Fprintln(w, "Variables:")
	fmt.Fprintln(w, "  TargetDir=DIR      installation directory")
	fmt.Fprintln(w, "  SourceDir=DIR      files to package (creator only)")
	fmt.Fprintln(w, "  OutputFile=FILE    installer to write (creator only)")
	fmt.Fprintln(w, "  AllUsers=true      install for all users")
	fmt.Fprintln(w, "\nNoGui and Verbose may be given as bare words.")
}
