package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	clog "github.com/charmbracelet/log"

	"manimwatch/internal/artifact"
	"manimwatch/internal/chord"
	"manimwatch/internal/render"
	"manimwatch/internal/screen"
	"manimwatch/internal/system"
	"manimwatch/internal/watch"
)

const noticeTTL = 5 * time.Second

// Watcher is the part of watch.Watcher the UI drives.
type Watcher interface {
	Changes() <-chan watch.Change
	Errors() <-chan error
	Rewatch(dir string) error
}

// Renderer starts render sessions. *render.Runner implements it.
type Renderer interface {
	Start(ctx context.Context, req render.Request) (*render.Session, error)
}

// Options wires the UI to the rest of the app.
type Options struct {
	Dir       string
	Watcher   Watcher
	Renderer  Renderer
	Buffer    *screen.Buffer
	Artifacts *artifact.Store
	Quality   render.Quality
	Debounce  time.Duration
	Tick      time.Duration
	VideosDir string
	Logger    *clog.Logger
}

// Model for TUI
type model struct {
	dir       string
	watcher   Watcher
	renderer  Renderer
	buf       *screen.Buffer
	store     *artifact.Store
	debounce  *watch.Debouncer
	engine    *chord.Engine
	picker    filepicker.Model
	tick      time.Duration
	videosDir string
	log       *clog.Logger

	width  int
	height int

	// transient status notice
	notice      string
	noticeUntil time.Time
	now         time.Time

	quitting bool
}

func newModel(o Options) model {
	if o.Tick <= 0 {
		o.Tick = 33 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = system.Logger
	}
	if o.Buffer == nil {
		o.Buffer = screen.New(1, 1)
	}
	if o.Artifacts == nil {
		o.Artifacts = &artifact.Store{}
	}
	return model{
		dir:       o.Dir,
		watcher:   o.Watcher,
		renderer:  o.Renderer,
		buf:       o.Buffer,
		store:     o.Artifacts,
		debounce:  watch.NewDebouncer(o.Debounce),
		engine:    chord.NewEngine(chord.DefaultKeyMap(), o.Quality),
		picker:    newPicker(o.Dir, 1),
		tick:      o.Tick,
		videosDir: o.VideosDir,
		log:       o.Logger,
		now:       time.Now(),
	}
}

// New is the public constructor for app.
func New(o Options) tea.Model { return newModel(o) }

func (m model) Init() tea.Cmd {
	return tea.Batch(frameTickCmd(m.tick), watchSubscribeCmd(m.watcher))
}

func (m model) viewport() render.Size {
	return render.Size{Cols: m.width, Rows: m.height}
}

func (m model) withNotice(s string) model {
	m.now = time.Now()
	m.notice = s
	m.noticeUntil = m.now.Add(noticeTTL)
	return m
}

// request builds a render request for src from the current state.
func (m model) request(src string) render.Request {
	return render.Request{
		Source:  src,
		Quality: m.engine.Quality(),
		Dir:     m.dir,
		Size:    render.PtySize(m.viewport()),
	}
}
