package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogToFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "manimwatch.log")
	restore, err := LogToFile(p, true)
	if err != nil {
		t.Fatalf("LogToFile: %v", err)
	}
	Logger.Debug("render started", "source", "scene.py")
	Logger.Info("watching", "dir", "/tmp")
	if err := restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "render started") || !strings.Contains(s, "source=scene.py") {
		t.Fatalf("debug line missing: %q", s)
	}
	if !strings.Contains(s, "watching") {
		t.Fatalf("info line missing: %q", s)
	}
}

func TestLogToFile_InfoLevelDropsDebug(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.log")
	restore, err := LogToFile(p, false)
	if err != nil {
		t.Fatalf("LogToFile: %v", err)
	}
	Logger.Debug("hidden")
	_ = restore()
	b, _ := os.ReadFile(p)
	if strings.Contains(string(b), "hidden") {
		t.Fatalf("debug logged at info level: %q", b)
	}
}
