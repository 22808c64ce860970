package ditherer

import (
	"cmp"
	"slices"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/hupe1980/palq/colorspace"
)

// bayer4 holds the 4x4 Bayer thresholds in (-1, 1), row-major.
var bayer4 = bayerThresholds(dither.Bayer(4, 4, 1))

// bayerThresholds reads the cell order of a 4x4 ordered mapper and spreads
// it evenly over (-1, 1), so the pattern is symmetric around zero.
func bayerThresholds(m dither.PixelMapper) [16]float64 {
	const mid = 1 << 15

	var shifted [16]int
	for i := range shifted {
		v, _, _ := m(i&3, i>>2, mid, mid, mid)
		shifted[i] = int(v)
	}

	order := make([]int, 16)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(shifted[a], shifted[b])
	})

	var out [16]float64
	for rank, cell := range order {
		out[cell] = (float64(rank)+0.5)/8 - 1
	}
	return out
}

// threshold returns the pattern value at (x, y).
func threshold(x, y int) float64 {
	return bayer4[(y&3)*4+(x&3)]
}

// ordered pushes each pixel along its own quantization residual by a
// position-dependent amount. A pixel whose color is in the palette has no
// residual and is never moved.
type ordered struct {
	strength float64
}

func (ordered) Kind() Kind { return Ordered }

func (o ordered) NewState(cs colorspace.ColorSpace, _ int) State {
	return orderedState{cs: cs, strength: o.strength}
}

type orderedState struct {
	cs       colorspace.ColorSpace
	strength float64
}

func (orderedState) Reverse(int) bool { return false }

func (s orderedState) Dither(l Lookup, x, y int, p colorspace.Point) int {
	i, q := l.Lookup(p)
	residual := p.Sub(q)
	if residual == (colorspace.Point{}) {
		return i
	}
	j, _ := l.Lookup(s.cs.Clamp(p.Add(residual.Scale(s.strength * threshold(x, y)))))
	return j
}

func (orderedState) EndRow(int) {}
