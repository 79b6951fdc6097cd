package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrNoHome is returned when no videos directory is configured and the home
// directory cannot be resolved.
var ErrNoHome = errors.New("cannot determine home directory")

// VideosDir returns configured when set, else $HOME/Videos.
func VideosDir(configured string) (string, error) {
	if strings.TrimSpace(configured) != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, "Videos"), nil
}

// Relocate moves the last recorded artifact into videosDir and returns the
// new path. With nothing recorded it does nothing and returns "", nil.
// Relative artifact paths are resolved against the directory the render ran
// in. On failure the artifact is put back so the move can be retried.
func Relocate(store *Store, videosDir string) (string, error) {
	a, ok := store.Take()
	if !ok {
		return "", nil
	}
	dest, err := relocate(a, videosDir)
	if err != nil {
		store.Restore(a)
		return "", err
	}
	return dest, nil
}

func relocate(a Artifact, videosDir string) (string, error) {
	dir, err := VideosDir(videosDir)
	if err != nil {
		return "", err
	}
	a.Path = strings.TrimSpace(a.Path)
	src := a.Abs()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(src))
	if err := move(src, dest); err != nil {
		return "", fmt.Errorf("move %s: %w", src, err)
	}
	return dest, nil
}

// move renames src to dest, copying across filesystems when rename cannot.
func move(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
