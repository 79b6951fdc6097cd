package ui

import (
	"time"

	"manimwatch/internal/watch"
)

// Bubble Tea messages

// a watched file was written
type changeMsg watch.Change

// the watcher reported an error
type watchErrMsg struct{ err error }

// periodic redraw while renders write in the background
type frameTickMsg time.Time

// a render was spawned, or failed to spawn
type renderStartedMsg struct {
	source string
	pid    int
}
type renderErrMsg struct {
	source string
	err    error
}

// relocate finished; dest is empty when there was nothing to move
type relocatedMsg struct {
	dest string
	err  error
}

// generic notifications shown in the status line
type noticeMsg string
