package colorspace

import (
	"fmt"
	"image/color"
)

// Color is a non-premultiplied 8-bit RGBA value.
type Color struct {
	R, G, B, A uint8
}

// RGBA returns a Color from its channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts any image/color value to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// NRGBA returns c as a color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Palette is an ordered list of output colors. The index of a color is the
// value stored per pixel.
type Palette []Color

// Clone returns an independent copy of p.
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

// Points maps every palette entry into cs.
func (p Palette) Points(cs ColorSpace) []Point {
	pts := make([]Point, len(p))
	for i, c := range p {
		pts[i] = cs.ToPoint(c)
	}
	return pts
}

// Index returns the position of c in p, or -1.
func (p Palette) Index(c Color) int {
	for i, e := range p {
		if e == c {
			return i
		}
	}
	return -1
}

// ColorPalette converts p for use with image.Paletted.
func (p Palette) ColorPalette() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c.NRGBA()
	}
	return out
}
