package watch

import "time"

// DefaultDebounce is how long a repeat trigger for the same file is ignored.
// Editors often write a file several times per save.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer drops a trigger for the file that was last accepted when it
// arrives within the window. Dropped triggers are not deferred.
// It is not safe for concurrent use.
type Debouncer struct {
	window time.Duration
	last   string
	lastAt time.Time
}

// NewDebouncer returns a Debouncer with the given window; a non-positive
// window uses DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Accept reports whether a trigger for name at time at should run, and
// records it as the last trigger when it does.
func (d *Debouncer) Accept(name string, at time.Time) bool {
	if name == d.last && !d.lastAt.IsZero() && at.Sub(d.lastAt) < d.window {
		return false
	}
	d.last, d.lastAt = name, at
	return true
}

// Last returns the most recently accepted file, or "" when none.
func (d *Debouncer) Last() string { return d.last }
