package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"manimwatch/internal/chord"
	"manimwatch/internal/render"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		pty := render.PtySize(m.viewport())
		m.buf.Resize(pty.Cols, pty.Rows)
		m.picker.SetHeight(pickerRows(pty.Rows))
		return m, nil
	case frameTickMsg:
		m.now = time.Time(msg)
		return m, frameTickCmd(m.tick)
	case changeMsg:
		// resubscribe for more events
		next := watchSubscribeCmd(m.watcher)
		if !m.debounce.Accept(msg.Path, msg.At) {
			m.log.Debug("change debounced", "source", msg.Path)
			return m, next
		}
		return m, tea.Batch(renderCmd(m.renderer, m.request(msg.Path)), next)
	case watchErrMsg:
		m.log.Warn("watch error", "err", msg.err)
		return m, watchSubscribeCmd(m.watcher)
	case renderStartedMsg:
		m.log.Debug("render running", "source", msg.source, "pid", msg.pid)
		return m.withNotice("rendering " + filepath.Base(msg.source)), nil
	case renderErrMsg:
		m.log.Error("render failed", "source", msg.source, "err", msg.err)
		return m.withNotice(fmt.Sprintf("render failed: %v", msg.err)), nil
	case relocatedMsg:
		switch {
		case msg.err != nil:
			m.log.Error("move video failed", "err", msg.err)
			return m.withNotice(fmt.Sprintf("move failed: %v", msg.err)), nil
		case msg.dest == "":
			return m.withNotice("no video to move"), nil
		}
		m.log.Info("video moved", "dest", msg.dest)
		return m.withNotice("moved to " + msg.dest), nil
	case noticeMsg:
		return m.withNotice(string(msg)), nil
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			for i, b := range m.legend() {
				if !zone.Get(legendZone(i)).InBounds(msg) {
					continue
				}
				if k, ok := keyFor(b); ok {
					return m.handleKey(k)
				}
			}
		}
		return m, nil
	case tea.KeyMsg:
		// Always allow Ctrl+C to quit
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	// directory listings and other picker internals
	if m.engine.Mode() == chord.ModeFilePicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res := m.engine.Handle(msg)
	switch res.Action {
	case chord.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case chord.ActionOpenPicker:
		m.picker = newPicker(m.dir, render.PtySize(m.viewport()).Rows)
		return m, m.picker.Init()
	case chord.ActionForward:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case chord.ActionConfirmPicker:
		dir := m.picker.CurrentDirectory
		if err := m.watcher.Rewatch(dir); err != nil {
			m.log.Error("change directory failed", "dir", dir, "err", err)
			return m.withNotice(fmt.Sprintf("cannot watch %s: %v", dir, err)), nil
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		m.dir = dir
		m.log.Info("watching", "dir", dir)
		return m.withNotice("watching " + dir), nil
	case chord.ActionReRender:
		src := m.debounce.Last()
		if src == "" {
			return m.withNotice("nothing rendered yet"), nil
		}
		return m, renderCmd(m.renderer, m.request(src))
	case chord.ActionRelocate:
		return m, relocateCmd(m.store, m.videosDir)
	case chord.ActionSetQuality:
		m.log.Info("quality set", "quality", res.Quality.String())
		return m, nil
	}
	return m, nil
}

// keyFor turns a single-key binding into the key press it stands for.
func keyFor(b key.Binding) (tea.KeyMsg, bool) {
	keys := b.Keys()
	if len(keys) != 1 {
		return tea.KeyMsg{}, false
	}
	switch k := keys[0]; k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, true
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}, true
	default:
		r := []rune(k)
		if len(r) != 1 {
			return tea.KeyMsg{}, false
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: r}, true
	}
}
