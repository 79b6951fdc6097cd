// Package screen holds the terminal emulation buffer shared by the UI (which
// draws it) and every render session (which writes renderer output into it).
package screen

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/vt"
)

// Buffer is a VT emulator guarded by a read/write lock. Writers are
// serialised; there is no ordering between two sessions beyond the order in
// which their writes acquire the lock.
type Buffer struct {
	mu     sync.RWMutex
	emu    *vt.Emulator
	cols   int
	rows   int
	closed bool
}

// New returns a buffer of the given size. Size is clamped to at least 1x1.
func New(cols, rows int) *Buffer {
	cols, rows = clamp(cols, rows)
	b := &Buffer{emu: vt.NewEmulator(cols, rows), cols: cols, rows: rows}
	// The emulator answers terminal queries on its input side; nothing
	// consumes those answers, so drain them or Write would block.
	go func() { _, _ = io.Copy(io.Discard, b.emu) }()
	return b
}

func clamp(cols, rows int) (int, int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// Write feeds raw terminal output to the emulator. Once the buffer is
// closed, writes are accepted and dropped.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return len(p), nil
	}
	return b.emu.Write(p)
}

// Render returns the current screen with styling, minus OSC sequences which
// would otherwise leak into the host terminal.
func (b *Buffer) Render() string {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ""
	}
	out := b.emu.Render()
	b.mu.RUnlock()
	return stripOSC(out)
}

// Resize changes the emulated screen size. It is a no-op when unchanged.
func (b *Buffer) Resize(cols, rows int) {
	cols, rows = clamp(cols, rows)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || (cols == b.cols && rows == b.rows) {
		return
	}
	b.emu.Resize(cols, rows)
	b.cols, b.rows = cols, rows
}

// Size reports the emulated screen size.
func (b *Buffer) Size() (cols, rows int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cols, b.rows
}

// Close releases the emulator. It is safe to call more than once.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.emu.Close()
}

// stripOSC removes OSC sequences (ESC ] ... BEL or ESC ] ... ESC \).
func stripOSC(s string) string {
	if !strings.Contains(s, "\x1b]") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == ']' {
			j := i + 2
			for j < len(s) {
				if s[j] == 0x07 {
					break
				}
				if s[j] == 0x1b && j+1 < len(s) && s[j+1] == '\\' {
					j++
					break
				}
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
