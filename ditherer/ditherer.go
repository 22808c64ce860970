// Package ditherer decides which palette entry each pixel is mapped to.
//
// A Ditherer is a factory for per-image State. The state is created fresh for
// every image, fed pixels in raster order, and discarded afterwards; nothing is
// shared between images, so independent images can be remapped concurrently.
package ditherer

import (
	"fmt"
	"strings"

	"github.com/hupe1980/palq/colorspace"
)

// Kind identifies a dithering strategy.
type Kind int

const (
	None Kind = iota
	Ordered
	FloydSteinberg
	FloydSteinbergCheckered
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Ordered:
		return "ordered"
	case FloydSteinberg:
		return "fs"
	case FloydSteinbergCheckered:
		return "fs-checkered"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Parse maps a selector to a Kind. Long names such as "floyd-steinberg" are
// accepted next to the short ones.
func Parse(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "ordered":
		return Ordered, nil
	case "fs", "floyd-steinberg":
		return FloydSteinberg, nil
	case "fs-checkered", "floyd-steinberg-checkered":
		return FloydSteinbergCheckered, nil
	default:
		return None, fmt.Errorf("ditherer: unknown ditherer %q", s)
	}
}

// Lookup finds the palette entry nearest to a point.
type Lookup interface {
	Lookup(p colorspace.Point) (int, colorspace.Point)
}

// Ditherer creates the per-image state of a strategy.
type Ditherer interface {
	Kind() Kind
	NewState(cs colorspace.ColorSpace, width int) State
}

// State carries everything a strategy remembers while walking one image.
type State interface {
	// Reverse reports whether row y is walked right to left.
	Reverse(y int) bool

	// Dither returns the palette index for the pixel at (x, y) whose color
	// maps to p, and records the error it leaves behind.
	Dither(l Lookup, x, y int, p colorspace.Point) int

	// EndRow is called after the last pixel of row y.
	EndRow(y int)
}

// New returns the Ditherer for kind.
func New(kind Kind) (Ditherer, error) {
	switch kind {
	case None:
		return nearest{}, nil
	case Ordered:
		return ordered{strength: 2}, nil
	case FloydSteinberg:
		return &floydSteinberg{}, nil
	case FloydSteinbergCheckered:
		return &floydSteinberg{checkered: true}, nil
	default:
		return nil, fmt.Errorf("ditherer: unknown kind %v", kind)
	}
}

type nearest struct{}

func (nearest) Kind() Kind { return None }

func (nearest) NewState(colorspace.ColorSpace, int) State { return nearestState{} }

type nearestState struct{}

func (nearestState) Reverse(int) bool { return false }

func (nearestState) Dither(l Lookup, _, _ int, p colorspace.Point) int {
	i, _ := l.Lookup(p)
	return i
}

func (nearestState) EndRow(int) {}
