package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type logLevel string

const (
	levelDebug logLevel = "DEBUG"
	levelInfo  logLevel = "INFO"
	levelWarn  logLevel = "WARN"
	levelError logLevel = "ERROR"
	levelStep  logLevel = "STEP"
)

// Logger records timestamped lines in memory and, optionally, in a log file
// and on a console. A nil *Logger discards everything. It is safe for
// concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	console io.Writer
	verbose bool
	lines   []string
}

// NewLogger creates a Logger writing to {prefix}-{timestamp}.log in the temp
// directory.
//
//	log, err := installer.NewLogger("demo-setup")
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
func NewLogger(prefix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("20060102-150405"))
	l, err := openLogFile(filepath.Join(os.TempDir(), name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
	if err != nil {
		return nil, err
	}
	l.Info("%s log started %s", prefix, time.Now().Format(time.RFC3339))
	return l, nil
}

// NewLoggerToFile appends to path. The relocated uninstaller uses it to
// continue the log of the process that started it.
func NewLoggerToFile(path string) (*Logger, error) {
	return openLogFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func openLogFile(path string, flags int) (*Logger, error) {
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{file: f, path: path}, nil
}

// NewMemoryLogger creates a Logger without a file.
func NewMemoryLogger() *Logger {
	return &Logger{}
}

// SetConsole echoes every line to w; nil stops echoing.
func (l *Logger) SetConsole(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
}

// SetVerbose turns Debug lines on or off.
func (l *Logger) SetVerbose(v bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// Close closes the log file. Later lines are kept in memory only.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// Path returns the log file, or "" for a memory logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Content returns every line logged so far.
func (l *Logger) Content() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

func (l *Logger) Debug(format string, args ...any) { l.write(levelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.write(levelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.write(levelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.write(levelError, format, args...) }

// Step logs a milestone of the run.
func (l *Logger) Step(format string, args ...any) { l.write(levelStep, format, args...) }

func (l *Logger) write(level logLevel, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level == levelDebug && !l.verbose {
		return
	}

	line := fmt.Sprintf("[%s] %-5s %s", time.Now().Format("15:04:05.000"), level, fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
	if l.console != nil {
		fmt.Fprintln(l.console, line)
	}
}
