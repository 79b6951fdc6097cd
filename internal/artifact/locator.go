// Package artifact finds the file the renderer produced by scanning its
// terminal output, and moves that file to the user's videos directory.
package artifact

import (
	"bytes"
	"strings"
)

// Marker is the renderer's output directory name. A path is only recognised
// when it starts with it.
const Marker = "media"

// Extensions are tried in this order; the first one present after the marker
// wins, even if another appears earlier in the chunk.
var Extensions = []string{".mp4", ".mov", ".png"}

// maxCarry bounds the bytes held back between chunks while a marker waits for
// its extension.
const maxCarry = 1024

var marker = []byte(Marker)

// Scan looks for an artifact path in a single chunk of output. Nothing is
// remembered between calls.
func Scan(chunk []byte) (string, bool) {
	start, end, ok := find(chunk)
	if !ok {
		return "", false
	}
	return decode(chunk[start:end]), true
}

// find returns the byte range of the path in b: from the first marker through
// the end of the extension.
func find(b []byte) (start, end int, ok bool) {
	i := bytes.Index(b, marker)
	if i < 0 {
		return 0, 0, false
	}
	rest := b[i:]
	for _, ext := range Extensions {
		if j := bytes.Index(rest, []byte(ext)); j >= 0 {
			return i, i + j + len(ext), true
		}
	}
	return 0, 0, false
}

// decode replaces invalid UTF-8 instead of failing. The markers are ASCII, so
// searching the raw bytes and decoding only the match is equivalent to
// decoding first.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// Locator is the per-session streaming scanner. It carries a small tail
// between chunks so a marker or path split across two reads is still found.
// The carry never crosses a line break. A Locator is used by one goroutine
// only; results go to the shared Store.
type Locator struct {
	store *Store
	dir   string
	carry []byte
}

// NewLocator returns a Locator that records hits into store, tagged with the
// directory the renderer runs in.
func NewLocator(store *Store, dir string) *Locator {
	return &Locator{store: store, dir: dir}
}

// Feed scans the next chunk. It reports the path it stored, if any. A chunk
// that holds a complete path on its own is matched like Scan; the carry is
// only joined when it does not.
func (l *Locator) Feed(chunk []byte) (string, bool) {
	if start, end, ok := find(chunk); ok {
		return l.record(chunk[start:end], chunk[end:])
	}

	// Only the first line of chunk can continue the carried text.
	head := chunk
	if i := bytes.IndexAny(chunk, "\r\n"); i >= 0 {
		head = chunk[:i]
	}
	if len(l.carry) > 0 {
		joined := append(bytes.Clone(l.carry), head...)
		if start, end, ok := find(joined); ok {
			return l.record(joined[start:end], chunk[len(head):])
		}
	}

	if len(head) == len(chunk) {
		l.carry = pending(append(l.carry, chunk...))
	} else {
		l.carry = pending(chunk)
	}
	return "", false
}

func (l *Locator) record(match, rest []byte) (string, bool) {
	path := decode(match)
	if l.store != nil {
		l.store.Set(Artifact{Path: path, Dir: l.dir})
	}
	l.carry = partialMarker(rest)
	return path, true
}

// pending keeps the last unmatched marker and what follows it, or just
// enough trailing bytes to complete a marker split across reads. A marker
// whose line has already ended is dropped.
func pending(b []byte) []byte {
	if i := bytes.LastIndex(b, marker); i >= 0 && len(b)-i <= maxCarry && !bytes.ContainsAny(b[i:], "\r\n") {
		return bytes.Clone(b[i:])
	}
	return partialMarker(b)
}

func partialMarker(b []byte) []byte {
	n := len(marker) - 1
	if len(b) < n {
		n = len(b)
	}
	return bytes.Clone(b[len(b)-n:])
}
