package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	clog "github.com/charmbracelet/log"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manimwatch/internal/artifact"
	"manimwatch/internal/chord"
	"manimwatch/internal/render"
	"manimwatch/internal/screen"
	tu "manimwatch/internal/testutil"
	"manimwatch/internal/watch"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type fakeWatcher struct {
	changes   chan watch.Change
	errs      chan error
	rewatched []string
	err       error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{changes: make(chan watch.Change), errs: make(chan error)}
}

func (f *fakeWatcher) Changes() <-chan watch.Change { return f.changes }
func (f *fakeWatcher) Errors() <-chan error         { return f.errs }
func (f *fakeWatcher) Rewatch(dir string) error {
	if f.err != nil {
		return f.err
	}
	f.rewatched = append(f.rewatched, dir)
	return nil
}

type fakeRenderer struct {
	mu   sync.Mutex
	reqs []render.Request
	err  error
}

func (f *fakeRenderer) Start(_ context.Context, req render.Request) (*render.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return nil, f.err
}

func (f *fakeRenderer) requests() []render.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]render.Request(nil), f.reqs...)
}

type harness struct {
	m  model
	w  *fakeWatcher
	r  *fakeRenderer
	st *artifact.Store
}

func newHarness(t *testing.T, dir string) *harness {
	t.Helper()
	h := &harness{w: newFakeWatcher(), r: &fakeRenderer{}, st: &artifact.Store{}}
	buf := screen.New(10, 5)
	t.Cleanup(func() { _ = buf.Close() })
	h.m = newModel(Options{
		Dir:       dir,
		Watcher:   h.w,
		Renderer:  h.r,
		Buffer:    buf,
		Artifacts: h.st,
		Quality:   render.Low,
		VideosDir: filepath.Join(t.TempDir(), "Videos"),
		Logger:    clog.New(io.Discard),
	})
	return h
}

// send feeds msg to the model and runs the resulting commands, feeding
// every message they produce back in. Commands still blocked after a short
// wait (watch subscriptions, ticks) are abandoned.
func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(model)
	for _, out := range collect(cmd) {
		if _, ok := out.(frameTickMsg); ok {
			continue
		}
		h.send(t, out)
	}
}

func (h *harness) keys(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		h.send(t, k)
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestChangeStartsRender(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir)
	h.send(t, tea.WindowSizeMsg{Width: 100, Height: 40})

	cols, rows := h.m.buf.Size()
	assert.Equal(t, 96, cols)
	assert.Equal(t, 34, rows)

	src := filepath.Join(dir, "scene.py")
	h.send(t, changeMsg{Path: src, At: time.Now()})

	reqs := h.r.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, src, reqs[0].Source)
	assert.Equal(t, render.Low, reqs[0].Quality)
	assert.Equal(t, dir, reqs[0].Dir)
	assert.Equal(t, render.Size{Cols: 96, Rows: 34}, reqs[0].Size)
	assert.Contains(t, h.m.notice, "scene.py")
}

func TestChangeIsDebounced(t *testing.T) {
	h := newHarness(t, t.TempDir())
	at := time.Now()
	h.send(t, changeMsg{Path: "a.py", At: at})
	h.send(t, changeMsg{Path: "a.py", At: at.Add(200 * time.Millisecond)})
	assert.Len(t, h.r.requests(), 1)

	h.send(t, changeMsg{Path: "b.py", At: at.Add(210 * time.Millisecond)})
	h.send(t, changeMsg{Path: "a.py", At: at.Add(time.Second)})
	assert.Len(t, h.r.requests(), 3)
}

func TestQualityChordAppliesToNextRender(t *testing.T) {
	h := newHarness(t, t.TempDir())
	h.keys(t, space, runes("q"), runes("h"))
	assert.Equal(t, render.High, h.m.engine.Quality())

	h.send(t, changeMsg{Path: "a.py", At: time.Now()})
	reqs := h.r.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, render.High, reqs[0].Quality)
	assert.Contains(t, h.m.View(), "1080p quality")
}

func TestReRender(t *testing.T) {
	h := newHarness(t, t.TempDir())
	h.keys(t, space, runes("r"))
	assert.Empty(t, h.r.requests())
	assert.Equal(t, "nothing rendered yet", h.m.notice)

	h.send(t, changeMsg{Path: "a.py", At: time.Now()})
	h.keys(t, space, runes("r"))
	reqs := h.r.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "a.py", reqs[1].Source)
}

func TestRenderErrorIsNotice(t *testing.T) {
	h := newHarness(t, t.TempDir())
	h.r.err = errors.New("allocate pty: boom")
	h.send(t, changeMsg{Path: "a.py", At: time.Now()})
	assert.Contains(t, h.m.notice, "render failed")
	assert.Contains(t, h.m.noticeLine(80), "boom")
}

func TestPickerChangesDirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "scenes")
	require.NoError(t, os.Mkdir(sub, 0o755))

	h := newHarness(t, root)
	h.send(t, tea.WindowSizeMsg{Width: 80, Height: 30})
	h.keys(t, space, runes("f"))
	require.Equal(t, chord.ModeFilePicker, h.m.engine.Mode())
	assert.Contains(t, h.m.View(), pickerHeader)

	h.keys(t, runes("l"))
	require.Equal(t, sub, h.m.picker.CurrentDirectory)

	h.keys(t, space)
	assert.Equal(t, chord.ModeIdle, h.m.engine.Mode())
	assert.Equal(t, []string{sub}, h.w.rewatched)
	assert.Equal(t, sub, h.m.dir)

	h.send(t, changeMsg{Path: filepath.Join(sub, "a.py"), At: time.Now()})
	reqs := h.r.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sub, reqs[0].Dir)
}

func TestPickerCancelAndRewatchFailure(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t, root)

	h.keys(t, space, runes("f"), esc)
	assert.Equal(t, chord.ModeIdle, h.m.engine.Mode())
	assert.Empty(t, h.w.rewatched)

	h.w.err = errors.New("permission denied")
	h.keys(t, space, runes("f"), space)
	assert.Equal(t, root, h.m.dir)
	assert.Contains(t, h.m.notice, "permission denied")
}

func TestRelocate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "x.mp4"), []byte("v"), 0o644))

	h := newHarness(t, dir)
	h.keys(t, space, runes("m"))
	assert.Equal(t, "no video to move", h.m.notice)

	h.st.Set(artifact.Artifact{Path: "media/x.mp4", Dir: dir})
	h.keys(t, space, runes("m"))
	dest := filepath.Join(h.m.videosDir, "x.mp4")
	assert.Equal(t, "moved to "+dest, h.m.notice)
	_, err := os.Stat(dest)
	assert.NoError(t, err)
}

func TestRelocateAfterDirectoryChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "x.mp4"), []byte("v"), 0o644))

	h := newHarness(t, dir)
	h.send(t, tea.WindowSizeMsg{Width: 80, Height: 30})
	h.st.Set(artifact.Artifact{Path: "media/x.mp4", Dir: dir})

	// watch media/ instead; the recorded path is still relative to dir
	h.keys(t, space, runes("f"), runes("l"), space)
	require.Equal(t, filepath.Join(dir, "media"), h.m.dir)

	h.keys(t, space, runes("m"))
	dest := filepath.Join(h.m.videosDir, "x.mp4")
	assert.Equal(t, "moved to "+dest, h.m.notice)
	_, err := os.Stat(dest)
	assert.NoError(t, err)
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		h := newHarness(t, t.TempDir())
		_, cmd := h.m.Update(k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "key %q", k.String())
	}
}

func TestWatchErrorResubscribes(t *testing.T) {
	h := newHarness(t, t.TempDir())
	_, cmd := h.m.Update(watchErrMsg{err: errors.New("overflow")})
	require.NotNil(t, cmd)

	go func() { h.w.changes <- watch.Change{Path: "a.py", At: time.Now()} }()
	msg := cmd()
	c, ok := msg.(changeMsg)
	require.True(t, ok)
	assert.Equal(t, "a.py", c.Path)
}

func TestView(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir)
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 20})
	_, _ = h.m.buf.Write([]byte("hello from manim"))

	v := h.m.View()
	assert.Contains(t, v, "Rendering files in "+dir+" at 480p quality")
	assert.Contains(t, v, "hello from manim")
	assert.Contains(t, v, "begin chord")
	assert.Equal(t, 20, strings.Count(v, "\n")+1)

	h.keys(t, space)
	assert.Contains(t, h.m.View(), "move last video")
}

func TestKeyFor(t *testing.T) {
	km := chord.DefaultKeyMap()
	k, ok := keyFor(km.BeginChord)
	require.True(t, ok)
	assert.Equal(t, tea.KeySpace, k.Type)

	k, ok = keyFor(km.PickerCancel)
	require.True(t, ok)
	assert.Equal(t, tea.KeyEsc, k.Type)

	k, ok = keyFor(km.Quit)
	require.True(t, ok)
	assert.Equal(t, "q", k.String())

	_, ok = keyFor(km.PickerNav)
	assert.False(t, ok)
}

func TestTruncateMiddle(t *testing.T) {
	cases := []struct {
		in   string
		w    int
		want string
	}{
		{"/home/user/scenes", 40, "/home/user/scenes"},
		{"/home/user/scenes", 12, "/hom[...]nes"},
		{"/home/user/scenes", 3, "/ho"},
		{"/home/user/scenes", 0, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, truncateMiddle(c.in, c.w), "w=%d", c.w)
	}
}

func TestEndToEnd_ChangeRendersIntoBuffer(t *testing.T) {
	tu.RequirePty(t)
	bin := tu.FakeCommand(t, "manim", "echo \"quality $6\"\necho \"File ready at media/x.mp4\"\n")

	dir := t.TempDir()
	buf := screen.New(80, 24)
	defer buf.Close()
	store := &artifact.Store{}
	runner := &render.Runner{Command: bin, Sink: buf, Artifacts: store, Logger: clog.New(io.Discard)}

	h := &harness{w: newFakeWatcher(), st: store}
	h.m = newModel(Options{
		Dir: dir, Watcher: h.w, Renderer: runner, Buffer: buf, Artifacts: store,
		Logger: clog.New(io.Discard),
	})
	h.send(t, tea.WindowSizeMsg{Width: 84, Height: 30})
	h.send(t, changeMsg{Path: filepath.Join(dir, "scene.py"), At: time.Now()})

	require.Eventually(t, func() bool {
		return strings.Contains(xansi.Strip(buf.Render()), "manim exited with code: 0")
	}, 10*time.Second, 20*time.Millisecond)
	assert.Contains(t, xansi.Strip(buf.Render()), "quality l")
	assert.Equal(t, "media/x.mp4", store.Get())
}
