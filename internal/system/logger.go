package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger for CLI output.
// It prints to stderr with timestamps enabled for better UX.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
})

// LogToFile points Logger at path for as long as the TUI owns the terminal.
// The returned func closes the file and restores stderr.
func LogToFile(path string, debug bool) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Configure(f, debug)
	return func() error {
		Configure(os.Stderr, debug)
		return f.Close()
	}, nil
}

// Configure sets Logger's output and level.
func Configure(w io.Writer, debug bool) {
	Logger.SetOutput(w)
	if debug {
		Logger.SetLevel(clog.DebugLevel)
	} else {
		Logger.SetLevel(clog.InfoLevel)
	}
}
