package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

const pickerHeader = "choose a directory to monitor for file changes"

// newPicker returns a directory-only picker rooted at dir. Header and title
// take two rows of the pane.
func newPicker(dir string, paneRows int) filepicker.Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.SetHeight(pickerRows(paneRows))
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(Vitesse.Primary)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(Vitesse.Blue)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(Vitesse.Primary).Bold(true)
	return fp
}

func pickerRows(paneRows int) int {
	return max(paneRows-2, 1)
}

func (m model) pickerView(cols int) string {
	header := lipgloss.NewStyle().Italic(true).Foreground(Vitesse.Secondary).Render(pickerHeader)
	title := lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Text).Render(truncateMiddle(m.picker.CurrentDirectory, cols))
	return header + "\n" + title + "\n" + m.picker.View()
}
