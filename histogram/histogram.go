// Package histogram deduplicates pixels into (color, count) pairs.
package histogram

import (
	"iter"

	"github.com/hupe1980/palq/colorspace"
)

// Entry is a distinct color and the number of pixels carrying it.
type Entry struct {
	Color colorspace.Color
	Count uint64
}

// Histogram maps distinct colors to occurrence counts.
//
// Entries are kept in first-occurrence order, so building the same image twice
// yields the same entry order. A Histogram is not safe for concurrent writes;
// once built it is read-only and may be shared.
type Histogram struct {
	entries []Entry
	index   map[colorspace.Color]int
	total   uint64
}

// New returns an empty histogram.
func New() *Histogram {
	return &Histogram{index: make(map[colorspace.Color]int)}
}

// FromPixels builds a histogram from a flat RGBA buffer.
// Trailing bytes that do not form a whole pixel are ignored.
func FromPixels(pix []byte) *Histogram {
	h := New()
	for i := 0; i+3 < len(pix); i += 4 {
		h.Add(colorspace.RGBA(pix[i], pix[i+1], pix[i+2], pix[i+3]), 1)
	}
	return h
}

// FromColors builds a histogram from a sequence of colors.
func FromColors(colors iter.Seq[colorspace.Color]) *Histogram {
	h := New()
	for c := range colors {
		h.Add(c, 1)
	}
	return h
}

// Add records n occurrences of c.
func (h *Histogram) Add(c colorspace.Color, n uint64) {
	if n == 0 {
		return
	}
	if i, ok := h.index[c]; ok {
		h.entries[i].Count += n
	} else {
		h.index[c] = len(h.entries)
		h.entries = append(h.entries, Entry{Color: c, Count: n})
	}
	h.total += n
}

// Len returns the number of distinct colors.
func (h *Histogram) Len() int {
	return len(h.entries)
}

// Total returns the number of pixels recorded.
func (h *Histogram) Total() uint64 {
	return h.total
}

// Count returns how often c occurred.
func (h *Histogram) Count(c colorspace.Color) uint64 {
	if i, ok := h.index[c]; ok {
		return h.entries[i].Count
	}
	return 0
}

// Entries returns the distinct colors. The slice must not be modified.
func (h *Histogram) Entries() []Entry {
	return h.entries
}

// Colors returns the distinct colors as a palette, in entry order.
func (h *Histogram) Colors() colorspace.Palette {
	p := make(colorspace.Palette, len(h.entries))
	for i, e := range h.entries {
		p[i] = e.Color
	}
	return p
}
