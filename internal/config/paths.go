package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appName = "manimwatch"

// Dir returns the manimwatch config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/manimwatch; on macOS
// to ~/Library/Application Support/manimwatch; and on Windows to
// %AppData%/manimwatch. Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, appName), nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LogPath returns the default log file location.
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}
