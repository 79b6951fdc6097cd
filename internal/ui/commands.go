package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"manimwatch/internal/artifact"
	"manimwatch/internal/render"
)

// frameTickCmd schedules the next redraw.
func frameTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameTickMsg(t) })
}

// watchSubscribeCmd blocks until the watcher delivers a change or an error.
// Update re-subscribes after handling either.
func watchSubscribeCmd(w Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case c, ok := <-w.Changes():
			if !ok {
				return nil
			}
			return changeMsg(c)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// renderCmd spawns a render session. Start returns once the process is
// running; output keeps flowing into the screen buffer afterwards.
func renderCmd(r Renderer, req render.Request) tea.Cmd {
	return func() tea.Msg {
		s, err := r.Start(context.Background(), req)
		if err != nil {
			return renderErrMsg{source: req.Source, err: err}
		}
		msg := renderStartedMsg{source: req.Source}
		if s != nil {
			msg.pid = s.Pid()
		}
		return msg
	}
}

func relocateCmd(store *artifact.Store, videosDir string) tea.Cmd {
	return func() tea.Msg {
		dest, err := artifact.Relocate(store, videosDir)
		return relocatedMsg{dest: dest, err: err}
	}
}
