package app

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"manimwatch/internal/artifact"
	"manimwatch/internal/config"
	"manimwatch/internal/render"
	"manimwatch/internal/screen"
	"manimwatch/internal/system"
	"manimwatch/internal/ui"
	"manimwatch/internal/watch"
)

// Options are the resolved startup settings.
type Options struct {
	// Dir is the directory to watch; empty means the current directory.
	Dir     string
	Config  config.Config
	LogFile string
	Debug   bool
}

// Start sets up the watcher, renderer and screen buffer, then runs the TUI
// until the user quits. Errors returned here are setup failures.
func Start(opts Options) error {
	cfg := opts.Config
	dir, err := workingDir(opts.Dir)
	if err != nil {
		return err
	}

	if opts.LogFile != "" {
		restore, err := system.LogToFile(opts.LogFile, opts.Debug)
		if err != nil {
			return err
		}
		defer func() { _ = restore() }()
	}
	log := system.Logger

	w, err := watch.New(cfg.Watch.Pattern)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Watch(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info("watching", "dir", dir, "pattern", cfg.Watch.Pattern)

	buf := screen.New(1, 1)
	// Render sessions are not joined on exit; their late writes are dropped.
	defer func() { _ = buf.Close() }()
	store := &artifact.Store{}
	runner := &render.Runner{
		Command:        cfg.Renderer.Command,
		PreviewCommand: cfg.Renderer.PreviewCommand,
		Sink:           buf,
		Artifacts:      store,
		Logger:         log,
	}

	m := ui.New(ui.Options{
		Dir:       dir,
		Watcher:   w,
		Renderer:  runner,
		Buffer:    buf,
		Artifacts: store,
		Quality:   cfg.Quality(),
		Debounce:  cfg.Watch.Debounce.Std(),
		Tick:      cfg.UI.Tick.Std(),
		VideosDir: cfg.Artifacts.VideosDir,
		Logger:    log,
	})

	// Initialize global bubblezone manager for mouse-aware zones.
	zone.NewGlobal()
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return err
	}
	log.Info("bye")
	return nil
}

func workingDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}
