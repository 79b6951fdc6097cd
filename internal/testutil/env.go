package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/x/xpty"
)

// WithEnv sets env var to val for the duration of the test scope.
// Returns a cleanup func to restore previous value.
func WithEnv(t *testing.T, key, val string) func() {
	t.Helper()
	old, had := os.LookupEnv(key)
	if val == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, val)
	}
	return func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	}
}

// FakeCommand writes an executable shell script named name into a temp dir
// and returns its path. Skips the test without a POSIX shell.
func FakeCommand(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

// RequirePty skips the test when no pseudo-terminal can be allocated.
func RequirePty(t *testing.T) {
	t.Helper()
	p, err := xpty.NewPty(10, 10)
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	_ = p.Close()
}
