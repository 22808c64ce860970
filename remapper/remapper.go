// Package remapper maps true-color pixels onto a frozen palette.
package remapper

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/ditherer"
)

// MaxColors is the largest palette an index byte can address.
const MaxColors = 256

var (
	// ErrEmptyPalette is returned when there is nothing to map onto.
	ErrEmptyPalette = errors.New("remapper: empty palette")
	// ErrInvalidGeometry is returned when a pixel buffer does not match its width.
	ErrInvalidGeometry = errors.New("remapper: invalid geometry")
)

// Remapper drives a ditherer over an image. It holds its own copy of the
// palette, so the caller may keep mutating the one it passed in.
// A Remapper is safe for concurrent use; every remap owns a private state.
type Remapper struct {
	palette  colorspace.Palette
	points   []colorspace.Point
	cs       colorspace.ColorSpace
	ditherer ditherer.Ditherer
}

// New returns a Remapper for palette.
func New(palette colorspace.Palette, cs colorspace.ColorSpace, d ditherer.Ditherer) (*Remapper, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	if len(palette) > MaxColors {
		return nil, fmt.Errorf("remapper: palette has %d colors, at most %d supported", len(palette), MaxColors)
	}
	p := palette.Clone()
	return &Remapper{
		palette:  p,
		points:   p.Points(cs),
		cs:       cs,
		ditherer: d,
	}, nil
}

// Palette returns a copy of the palette indices refer to.
func (r *Remapper) Palette() colorspace.Palette {
	return r.palette.Clone()
}

// Lookup implements ditherer.Lookup.
func (r *Remapper) Lookup(p colorspace.Point) (int, colorspace.Point) {
	i, _ := colorspace.Nearest(r.cs, r.points, p)
	return i, r.points[i]
}

// Nearest returns the index of the entry closest to c, without dithering.
func (r *Remapper) Nearest(c colorspace.Color) int {
	i, _ := r.Lookup(r.cs.ToPoint(c))
	return i
}

// Seq transforms colors, given in raster order for rows of width pixels, into
// palette indices in the same order.
//
// The returned sequence is lazy and single-use: each pull advances the
// ditherer. Rows the ditherer walks right to left are buffered for one
// scanline and then emitted in raster order. A non-positive width yields
// nothing.
func (r *Remapper) Seq(colors iter.Seq[colorspace.Color], width int) iter.Seq[uint8] {
	return func(yield func(uint8) bool) {
		if width <= 0 {
			return
		}

		state := r.ditherer.NewState(r.cs, width)
		row := make([]colorspace.Color, 0, width)
		out := make([]uint8, width)
		x, y := 0, 0

		flush := func() bool {
			for i := len(row) - 1; i >= 0; i-- {
				out[i] = uint8(state.Dither(r, i, y, r.cs.ToPoint(row[i])))
			}
			for _, v := range out[:len(row)] {
				if !yield(v) {
					return false
				}
			}
			row = row[:0]
			return true
		}

		for c := range colors {
			if state.Reverse(y) {
				row = append(row, c)
				if len(row) < width {
					continue
				}
				if !flush() {
					return
				}
			} else {
				if !yield(uint8(state.Dither(r, x, y, r.cs.ToPoint(c)))) {
					return
				}
				x++
				if x < width {
					continue
				}
			}
			state.EndRow(y)
			x = 0
			y++
		}

		// input ended inside a reversed row
		if len(row) > 0 {
			flush()
		}
	}
}

// Remap maps a flat RGBA buffer with rows of width pixels to palette indices.
func (r *Remapper) Remap(pix []byte, width int) ([]uint8, error) {
	if width <= 0 || len(pix)%4 != 0 || (len(pix)/4)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes for width %d", ErrInvalidGeometry, len(pix), width)
	}

	out := make([]uint8, 0, len(pix)/4)
	for idx := range r.Seq(Pixels(pix), width) {
		out = append(out, idx)
	}
	return out, nil
}

// Pixels yields the colors of a flat RGBA buffer.
func Pixels(pix []byte) iter.Seq[colorspace.Color] {
	return func(yield func(colorspace.Color) bool) {
		for i := 0; i+3 < len(pix); i += 4 {
			if !yield(colorspace.RGBA(pix[i], pix[i+1], pix[i+2], pix[i+3])) {
				return
			}
		}
	}
}

// MeanSquaredError returns the mean distance in cs between each pixel of pix
// and the palette entry it was mapped to.
func MeanSquaredError(cs colorspace.ColorSpace, pix []byte, palette colorspace.Palette, indices []uint8) float64 {
	n := min(len(pix)/4, len(indices))
	if n == 0 {
		return 0
	}
	points := palette.Points(cs)
	var sum float64
	for i := range n {
		c := colorspace.RGBA(pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3])
		sum += cs.Distance(cs.ToPoint(c), points[indices[i]])
	}
	return sum / float64(n)
}
