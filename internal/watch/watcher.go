// Package watch delivers change notifications for source files under a
// directory tree and filters repeated triggers.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultPattern selects the files whose modification triggers a render.
const DefaultPattern = "*.py"

// ErrClosed is returned by operations on a closed Watcher.
var ErrClosed = errors.New("watcher closed")

// Change is a data write to a file matching the trigger pattern.
type Change struct {
	Path string
	At   time.Time
}

// Watcher watches a directory tree recursively. fsnotify only watches single
// directories, so every subdirectory is added, and directories created later
// are added as they appear.
type Watcher struct {
	mu     sync.RWMutex
	fs     *fsnotify.Watcher
	match  glob.Glob
	root   string
	paths  map[string]bool
	closed bool

	changes chan Change
	errs    chan error
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Watcher for file names matching pattern (a glob applied to
// the base name). No directory is watched until Watch is called.
func New(pattern string) (*Watcher, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fs:      fsw,
		match:   g,
		paths:   make(map[string]bool),
		changes: make(chan Change, 16),
		errs:    make(chan error, 16),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes delivers accepted change notifications.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Errors delivers watch errors. They are informational; the watcher keeps
// running.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Root returns the directory currently watched, or "" when none.
func (w *Watcher) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}

// WatchedPaths returns all watched directories, sorted.
func (w *Watcher) WatchedPaths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Watch starts watching dir and everything below it.
func (w *Watcher) Watch(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.addTreeLocked(abs); err != nil {
		return err
	}
	w.root = abs
	return nil
}

// Unwatch stops watching the current tree.
func (w *Watcher) Unwatch() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	var errs []error
	for p := range w.paths {
		if err := w.fs.Remove(p); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			errs = append(errs, err)
		}
		delete(w.paths, p)
	}
	w.root = ""
	return errors.Join(errs...)
}

// Rewatch moves the watch from the current tree to dir. On failure the
// previous tree is watched again, so the watched root never goes stale.
func (w *Watcher) Rewatch(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(abs); err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}
	old := w.Root()
	if err := w.Unwatch(); err != nil {
		return fmt.Errorf("unwatch %s: %w", old, err)
	}
	if err := w.Watch(abs); err != nil {
		if old != "" {
			_ = w.Unwatch()
			_ = w.Watch(old)
		}
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	return nil
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.changes)
	close(w.errs)
	return w.fs.Close()
}

// addTreeLocked walks root and watches every directory except hidden ones
// below the root.
func (w *Watcher) addTreeLocked(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if w.paths[p] {
			return nil
		}
		if err := w.fs.Add(p); err != nil {
			if p == root {
				return fmt.Errorf("failed to add directory %s to watcher: %w", p, err)
			}
			w.sendError(err)
			return nil
		}
		w.paths[p] = true
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return
			}
			w.mu.Lock()
			if !w.closed && w.root != "" && within(w.root, ev.Name) {
				_ = w.addTreeLocked(ev.Name)
			}
			w.mu.Unlock()
			return
		}
	}
	if !ev.Has(fsnotify.Write) || !w.match.Match(filepath.Base(ev.Name)) {
		return
	}
	select {
	case w.changes <- Change{Path: ev.Name, At: time.Now()}:
	default:
		// full: the UI is behind, and a later write will trigger again
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
