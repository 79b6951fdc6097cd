package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"manimwatch/internal/chord"
	"manimwatch/internal/render"
	appver "manimwatch/internal/version"
)

func (m model) View() string {
	if m.quitting {
		return ""
	}
	w := m.width
	if w <= 0 {
		w = 100
	}
	pty := render.PtySize(m.viewport())

	var body string
	if m.engine.Mode() == chord.ModeFilePicker {
		body = m.pickerView(pty.Cols)
	} else {
		body = m.buf.Render()
	}
	pane := PaneStyle().
		Width(pty.Cols + 2).
		Height(pty.Rows).
		Render(clipBlock(body, pty.Cols, pty.Rows))

	lines := []string{
		renderStatusLine(w, m.dir, m.engine.Quality(), "v"+appver.AppVersion),
		lipgloss.NewStyle().Foreground(Vitesse.Muted).Render(" manim output"),
		pane,
		m.noticeLine(w),
		m.renderLegend(w),
	}
	return zone.Scan(strings.Join(lines, "\n"))
}

func (m model) noticeLine(width int) string {
	if m.notice == "" || !m.now.Before(m.noticeUntil) {
		return ""
	}
	return lipgloss.NewStyle().Foreground(Vitesse.Yellow).MaxWidth(width).Render(" " + m.notice)
}

func (m model) legend() []key.Binding {
	return m.engine.Keys().Legend(m.engine.Mode())
}

func legendZone(i int) string { return "legend." + strconv.Itoa(i) }

// renderLegend draws the bindings of the current mode as centered chips.
// Each chip is a mouse zone; clicking it presses the key.
func (m model) renderLegend(width int) string {
	var b strings.Builder
	for i, k := range m.legend() {
		h := k.Help()
		chip := LegendKeyStyle().Render(h.Key) + LegendDescStyle().Render(h.Desc)
		b.WriteString(zone.Mark(legendZone(i), chip))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
