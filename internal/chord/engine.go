// Package chord interprets key presses through a two-key chord state machine
// with a file picker overlay.
package chord

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"manimwatch/internal/render"
)

// Mode is the engine state as seen by the UI.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingChord
	ModeQuality
	ModeFilePicker
)

func (m Mode) String() string {
	switch m {
	case ModeAwaitingChord:
		return "chord"
	case ModeQuality:
		return "quality"
	case ModeFilePicker:
		return "file picker"
	default:
		return "idle"
	}
}

// Chord is the action selected by the second key of a chord. The set is
// closed: adding a chord means a value here, a binding in KeyMap and an
// Action.
type Chord int

const (
	ChordNone Chord = iota
	ChordFilePicker
	ChordReRender
	ChordMove
	ChordSetQuality
)

// Action is what the UI must do after a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionOpenPicker
	ActionReRender
	ActionRelocate
	ActionSetQuality
	ActionConfirmPicker
	ActionCancelPicker
	// ActionForward hands the key to the file picker widget.
	ActionForward
)

// Result of handling one key.
type Result struct {
	Action  Action
	Quality render.Quality
}

// Engine is the input state machine. It is used from the UI goroutine only.
type Engine struct {
	keys    KeyMap
	pending bool
	chord   Chord
	picker  bool
	quality render.Quality
}

// NewEngine returns an idle engine with the given bindings and quality.
func NewEngine(keys KeyMap, quality render.Quality) *Engine {
	return &Engine{keys: keys, quality: quality}
}

// Keys returns the engine's bindings.
func (e *Engine) Keys() KeyMap { return e.keys }

// Quality returns the selected render quality.
func (e *Engine) Quality() render.Quality { return e.quality }

// Chord returns the chord resolved by the previous key, if any.
func (e *Engine) Chord() Chord { return e.chord }

// Mode returns the current state. The picker overlay wins over the rest.
func (e *Engine) Mode() Mode {
	switch {
	case e.picker:
		return ModeFilePicker
	case e.pending:
		return ModeAwaitingChord
	case e.chord == ChordSetQuality:
		return ModeQuality
	default:
		return ModeIdle
	}
}

// Handle consumes one key press. A resolved chord is kept for exactly one
// more key, then cleared.
func (e *Engine) Handle(msg tea.KeyMsg) Result {
	prev := e.chord
	e.chord = ChordNone

	if e.picker {
		switch {
		case key.Matches(msg, e.keys.PickerQuit):
			return Result{Action: ActionQuit}
		case key.Matches(msg, e.keys.PickerConfirm):
			e.picker = false
			return Result{Action: ActionConfirmPicker}
		case key.Matches(msg, e.keys.PickerCancel):
			e.picker = false
			return Result{Action: ActionCancelPicker}
		}
		return Result{Action: ActionForward}
	}

	if e.pending {
		e.pending = false
		e.chord = e.resolve(msg)
		switch e.chord {
		case ChordFilePicker:
			e.picker = true
			return Result{Action: ActionOpenPicker}
		case ChordReRender:
			return Result{Action: ActionReRender}
		case ChordMove:
			return Result{Action: ActionRelocate}
		}
		return Result{}
	}

	if prev == ChordSetQuality {
		e.quality = e.qualityFor(msg)
		return Result{Action: ActionSetQuality, Quality: e.quality}
	}

	switch {
	case key.Matches(msg, e.keys.Quit):
		return Result{Action: ActionQuit}
	case key.Matches(msg, e.keys.BeginChord):
		e.pending = true
	}
	return Result{}
}

func (e *Engine) resolve(msg tea.KeyMsg) Chord {
	switch {
	case key.Matches(msg, e.keys.FilePicker):
		return ChordFilePicker
	case key.Matches(msg, e.keys.SetQuality):
		return ChordSetQuality
	case key.Matches(msg, e.keys.ReRender):
		return ChordReRender
	case key.Matches(msg, e.keys.Move):
		return ChordMove
	}
	return ChordNone
}

// qualityFor maps a key to a level; unknown keys select Low.
func (e *Engine) qualityFor(msg tea.KeyMsg) render.Quality {
	for i, b := range e.keys.Quality {
		if key.Matches(msg, b) {
			return render.Qualities[i]
		}
	}
	return render.Low
}
