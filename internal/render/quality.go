package render

import (
	"fmt"
	"strings"
)

// Quality is the renderer output quality. The zero value is Low.
type Quality int

const (
	Low Quality = iota
	Medium
	High
	PlusHigh
	UltraHigh
)

// Qualities lists every level in ascending order.
var Qualities = []Quality{Low, Medium, High, PlusHigh, UltraHigh}

var qualityInfo = [...]struct {
	symbol string
	label  string
}{
	Low:       {"l", "480p"},
	Medium:    {"m", "720p"},
	High:      {"h", "1080p"},
	PlusHigh:  {"p", "1440p"},
	UltraHigh: {"k", "4K"},
}

func (q Quality) valid() bool { return q >= Low && q <= UltraHigh }

// Symbol is the value passed to the renderer's --quality flag.
func (q Quality) Symbol() string {
	if !q.valid() {
		return qualityInfo[Low].symbol
	}
	return qualityInfo[q].symbol
}

// String returns the human label, e.g. "1080p".
func (q Quality) String() string {
	if !q.valid() {
		return qualityInfo[Low].label
	}
	return qualityInfo[q].label
}

// QualityFromSymbol maps a quality symbol to its level. Unknown symbols map
// to Low.
func QualityFromSymbol(s string) Quality {
	q, _ := ParseQuality(s)
	return q
}

// ParseQuality accepts a symbol ("h") or a label ("1080p"), case-insensitive.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, q := range Qualities {
		if s == qualityInfo[q].symbol || s == strings.ToLower(qualityInfo[q].label) {
			return q, nil
		}
	}
	return Low, fmt.Errorf("unknown quality %q", s)
}
