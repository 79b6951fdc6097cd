package chord

import (
	"github.com/charmbracelet/bubbles/key"

	"manimwatch/internal/render"
)

// KeyMap holds the bindings for every mode. Keys are configuration, not
// protocol; the help text feeds the legend line.
type KeyMap struct {
	Quit       key.Binding
	BeginChord key.Binding

	// Second key of a chord.
	FilePicker key.Binding
	SetQuality key.Binding
	ReRender   key.Binding
	Move       key.Binding

	// Quality submenu, one binding per level in ascending order.
	Quality [5]key.Binding

	// File picker overlay.
	PickerQuit    key.Binding
	PickerConfirm key.Binding
	PickerCancel  key.Binding
	PickerNav     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		BeginChord: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "begin chord")),

		SetQuality: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "set quality")),
		ReRender:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "render last file")),
		FilePicker: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "change working directory")),
		Move:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move last video")),

		PickerQuit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		PickerNav:     key.NewBinding(key.WithKeys("h", "j", "k", "l", "left", "down", "up", "right"), key.WithHelp("hjkl / ←↓↑→", "navigate")),
		PickerConfirm: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "confirm")),
		PickerCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
	for i, q := range render.Qualities {
		km.Quality[i] = key.NewBinding(key.WithKeys(q.Symbol()), key.WithHelp(q.Symbol(), q.String()))
	}
	return km
}

// Legend returns the bindings to show for a mode, in display order.
func (km KeyMap) Legend(m Mode) []key.Binding {
	switch m {
	case ModeAwaitingChord:
		return []key.Binding{km.SetQuality, km.ReRender, km.FilePicker, km.Move}
	case ModeQuality:
		return km.Quality[:]
	case ModeFilePicker:
		return []key.Binding{km.PickerQuit, km.PickerNav, km.PickerConfirm, km.PickerCancel}
	default:
		return []key.Binding{km.Quit, km.BeginChord}
	}
}
