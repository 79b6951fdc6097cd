package ui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"manimwatch/internal/render"
)

const ellipsis = "[...]"

// renderStatusLine draws "Rendering files in <dir> at <quality> quality"
// with the quality chip on the left and right-aligned version. The directory
// is shortened in the middle when the line would not fit.
func renderStatusLine(width int, dir string, q render.Quality, right string) string {
	bar := StatusBarBase()
	chip := ChipKeyStyle().Render(q.String())
	rightStr := ""
	if right != "" {
		rightStr = ChipStyle(Vitesse.Blue).Render(right)
	}
	fixed := xansi.StringWidth(chip) + xansi.StringWidth(rightStr) +
		runewidth.StringWidth(fmt.Sprintf(" Rendering files in  at %s quality ", q))
	text := fmt.Sprintf(" Rendering files in %s at %s quality ", truncateMiddle(dir, width-fixed), q)
	text = bar.Render(text)

	gap := max(width-xansi.StringWidth(chip)-xansi.StringWidth(text)-xansi.StringWidth(rightStr), 0)
	line := chip + text + bar.Render(strings.Repeat(" ", gap)) + rightStr
	return xansi.Truncate(line, width, "")
}

// truncateMiddle shortens s to at most w cells by replacing its middle.
func truncateMiddle(s string, w int) string {
	if runewidth.StringWidth(s) <= w {
		return s
	}
	if w <= 0 {
		return ""
	}
	mw := runewidth.StringWidth(ellipsis)
	if w <= mw {
		return runewidth.Truncate(s, w, "")
	}
	keep := w - mw
	head := runewidth.Truncate(s, keep-keep/2, "")
	return head + ellipsis + tailCells(s, keep/2)
}

// tailCells returns the longest suffix of s at most w cells wide.
func tailCells(s string, w int) string {
	rs := []rune(s)
	i, width := len(rs), 0
	for i > 0 {
		cw := runewidth.RuneWidth(rs[i-1])
		if width+cw > w {
			break
		}
		width += cw
		i--
	}
	return string(rs[i:])
}

// clipBlock cuts s to at most rows lines of at most cols cells each.
func clipBlock(s string, cols, rows int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i, ln := range lines {
		if xansi.StringWidth(ln) > cols {
			lines[i] = xansi.Truncate(ln, cols, "")
		}
	}
	return strings.Join(lines, "\n")
}
