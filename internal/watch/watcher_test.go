package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher, timeout time.Duration) (Change, bool) {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c, true
	case <-time.After(timeout):
		return Change{}, false
	}
}

func TestWatcher_TriggersOnMatchingWrite(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "scenes")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	src := filepath.Join(sub, "scene.py")
	require.NoError(t, os.WriteFile(src, []byte("# v1\n"), 0o644))

	w, err := New("")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(src, []byte("# v2\n"), 0o644))

	c, ok := waitChange(t, w, 3*time.Second)
	require.True(t, ok, "expected a change for the .py file")
	assert.Equal(t, src, c.Path)
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := New("*.py")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.mp4"), []byte("x"), 0o644))
	_, ok := waitChange(t, w, 300*time.Millisecond)
	assert.False(t, ok)
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New("*.py")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(dir))

	sub := filepath.Join(dir, "later")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool {
		for _, p := range w.WatchedPaths() {
			if p == sub {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_Rewatch(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	w, err := New("*.py")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Rewatch(b))
	assert.Equal(t, b, w.Root())
	assert.Equal(t, []string{b}, w.WatchedPaths())

	require.NoError(t, os.WriteFile(filepath.Join(b, "s.py"), []byte("x"), 0o644))
	c, ok := waitChange(t, w, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(b, "s.py"), c.Path)
}

func TestWatcher_RewatchFailureKeepsOldRoot(t *testing.T) {
	a := t.TempDir()
	w, err := New("*.py")
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(a))

	err = w.Rewatch(filepath.Join(a, "missing"))
	require.Error(t, err)
	assert.Equal(t, a, w.Root())
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New("[")
	require.Error(t, err)
}
