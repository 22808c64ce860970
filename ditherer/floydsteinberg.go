package ditherer

import (
	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/hupe1980/palq/colorspace"
)

// tap is one non-zero cell of an error diffusion matrix, relative to the
// pixel being quantized.
type tap struct {
	dx, dy int
	weight float64
}

// kernel is an error diffusion matrix flattened into taps.
type kernel struct {
	taps []tap
	rows int
	pad  int
}

// newKernel flattens m. The current pixel is the right-most zero of the top
// row, as in the dither package.
func newKernel(m dither.ErrorDiffusionMatrix) kernel {
	cur := 0
	for i, w := range m[0] {
		if w == 0 {
			cur = i
		}
	}

	k := kernel{rows: len(m)}
	for y, row := range m {
		for x, w := range row {
			if w == 0 {
				continue
			}
			dx := x - cur
			k.taps = append(k.taps, tap{dx: dx, dy: y, weight: float64(w)})
			k.pad = max(k.pad, dx, -dx)
		}
	}
	return k
}

var floydSteinbergKernel = newKernel(dither.FloydSteinberg)

type floydSteinberg struct {
	checkered bool
}

func (f *floydSteinberg) Kind() Kind {
	if f.checkered {
		return FloydSteinbergCheckered
	}
	return FloydSteinberg
}

func (f *floydSteinberg) NewState(cs colorspace.ColorSpace, width int) State {
	return newDiffusionState(cs, floydSteinbergKernel, max(width, 0), f.checkered)
}

// diffusionState holds the error owed to the rest of the current row
// (rows[0]) and to the rows below. Every row carries kernel.pad padding cells
// per side; error pushed there falls off the image.
type diffusionState struct {
	cs        colorspace.ColorSpace
	kernel    kernel
	checkered bool
	rows      [][]colorspace.Point
}

func newDiffusionState(cs colorspace.ColorSpace, k kernel, width int, checkered bool) *diffusionState {
	rows := make([][]colorspace.Point, k.rows)
	for i := range rows {
		rows[i] = make([]colorspace.Point, width+2*k.pad)
	}
	return &diffusionState{cs: cs, kernel: k, checkered: checkered, rows: rows}
}

func (s *diffusionState) Reverse(y int) bool {
	return s.checkered && y&1 == 1
}

func (s *diffusionState) Dither(l Lookup, x, y int, p colorspace.Point) int {
	c := x + s.kernel.pad
	target := s.cs.Clamp(p.Add(s.rows[0][c]))
	i, q := l.Lookup(target)

	e := target.Sub(q)
	if e == (colorspace.Point{}) {
		return i
	}

	dir := 1
	if s.Reverse(y) {
		dir = -1
	}
	for _, t := range s.kernel.taps {
		row := s.rows[t.dy]
		at := c + dir*t.dx
		row[at] = row[at].Add(e.Scale(t.weight))
	}
	return i
}

func (s *diffusionState) EndRow(int) {
	done := s.rows[0]
	copy(s.rows, s.rows[1:])
	clear(done)
	s.rows[len(s.rows)-1] = done
}
