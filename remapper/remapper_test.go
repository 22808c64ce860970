package remapper

import (
	"slices"
	"testing"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/ditherer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []ditherer.Kind{
	ditherer.None,
	ditherer.Ordered,
	ditherer.FloydSteinberg,
	ditherer.FloydSteinbergCheckered,
}

func newRemapper(t *testing.T, palette colorspace.Palette, kind ditherer.Kind) *Remapper {
	t.Helper()
	d, err := ditherer.New(kind)
	require.NoError(t, err)
	r, err := New(palette, colorspace.Default(), d)
	require.NoError(t, err)
	return r
}

func grayImage(width, height int, value func(x, y int) uint8) []byte {
	pix := make([]byte, 0, width*height*4)
	for y := range height {
		for x := range width {
			v := value(x, y)
			pix = append(pix, v, v, v, 255)
		}
	}
	return pix
}

func grays(levels ...uint8) colorspace.Palette {
	p := make(colorspace.Palette, len(levels))
	for i, v := range levels {
		p[i] = colorspace.RGBA(v, v, v, 255)
	}
	return p
}

// boxError compares k×k block averages of the original and the remapped
// image, which is closer to what the eye sees than a per-pixel error.
func boxError(cs colorspace.ColorSpace, pix []byte, width, height, k int, palette colorspace.Palette, indices []uint8) float64 {
	points := palette.Points(cs)
	var total float64
	var blocks int
	for by := 0; by+k <= height; by += k {
		for bx := 0; bx+k <= width; bx += k {
			var orig, got colorspace.Point
			for y := by; y < by+k; y++ {
				for x := bx; x < bx+k; x++ {
					i := y*width + x
					c := colorspace.RGBA(pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3])
					orig = orig.Add(cs.ToPoint(c))
					got = got.Add(points[indices[i]])
				}
			}
			n := float64(k * k)
			total += cs.Distance(orig.Scale(1/n), got.Scale(1/n))
			blocks++
		}
	}
	return total / float64(blocks)
}

func TestNew(t *testing.T) {
	d, err := ditherer.New(ditherer.None)
	require.NoError(t, err)

	_, err = New(nil, colorspace.Default(), d)
	assert.ErrorIs(t, err, ErrEmptyPalette)

	_, err = New(make(colorspace.Palette, 257), colorspace.Default(), d)
	assert.Error(t, err)
}

func TestPaletteIsSnapshot(t *testing.T) {
	palette := grays(0, 255)
	r := newRemapper(t, palette, ditherer.None)

	palette[0] = colorspace.RGBA(255, 0, 0, 255)
	assert.Equal(t, grays(0, 255), r.Palette())
	assert.Equal(t, 0, r.Nearest(colorspace.RGBA(10, 10, 10, 255)))
}

func TestRepresentableColorsAreExact(t *testing.T) {
	palette := colorspace.Palette{
		colorspace.RGBA(255, 0, 0, 255),
		colorspace.RGBA(0, 255, 0, 255),
		colorspace.RGBA(0, 0, 255, 255),
		colorspace.RGBA(0, 0, 0, 0),
	}
	pix := make([]byte, 0, 64*4)
	want := make([]uint8, 0, 64)
	for i := range 64 {
		c := palette[(i*7)%4]
		pix = append(pix, c.R, c.G, c.B, c.A)
		want = append(want, uint8((i*7)%4))
	}

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			r := newRemapper(t, palette, kind)
			got, err := r.Remap(pix, 8)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRemapGeometry(t *testing.T) {
	r := newRemapper(t, grays(0, 255), ditherer.None)

	_, err := r.Remap(make([]byte, 12), 2)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = r.Remap(make([]byte, 7), 1)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = r.Remap(make([]byte, 8), 0)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	got, err := r.Remap(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGradientDithering(t *testing.T) {
	const width, height = 100, 16
	cs := colorspace.Default()
	pix := grayImage(width, height, func(x, _ int) uint8 {
		return uint8((x*255 + 49) / 99)
	})
	palette := grays(0, 36, 73, 109, 146, 182, 219, 255)

	remap := func(kind ditherer.Kind) []uint8 {
		idx, err := newRemapper(t, palette, kind).Remap(pix, width)
		require.NoError(t, err)
		require.Len(t, idx, width*height)
		return idx
	}

	plain := boxError(cs, pix, width, height, 4, palette, remap(ditherer.None))
	for _, kind := range []ditherer.Kind{ditherer.Ordered, ditherer.FloydSteinberg, ditherer.FloydSteinbergCheckered} {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Less(t, boxError(cs, pix, width, height, 4, palette, remap(kind)), plain/4)
		})
	}
}

func TestErrorDiffusionPreservesMean(t *testing.T) {
	const size = 32
	cs := colorspace.Default()
	pix := grayImage(size, size, func(int, int) uint8 { return 100 })
	palette := grays(0, 255)
	target := cs.ToPoint(colorspace.RGBA(100, 100, 100, 255))

	for _, kind := range []ditherer.Kind{ditherer.FloydSteinberg, ditherer.FloydSteinbergCheckered} {
		t.Run(kind.String(), func(t *testing.T) {
			idx, err := newRemapper(t, palette, kind).Remap(pix, size)
			require.NoError(t, err)

			var mean colorspace.Point
			for _, i := range idx {
				mean = mean.Add(cs.ToPoint(palette[i]))
			}
			mean = mean.Scale(1.0 / float64(len(idx)))

			// only the error pushed off the right and bottom edges is lost
			assert.InDelta(t, target[1], mean[1], 0.01)
			assert.Contains(t, idx, uint8(0))
			assert.Contains(t, idx, uint8(1))
		})
	}
}

func TestCheckeredAlternatesDirection(t *testing.T) {
	const size = 4
	cs := colorspace.Default()
	pix := grayImage(size, size, func(x, y int) uint8 { return uint8((x + y) * 255 / 6) })
	palette := grays(0, 255)

	fs, err := newRemapper(t, palette, ditherer.FloydSteinberg).Remap(pix, size)
	require.NoError(t, err)
	checkered, err := newRemapper(t, palette, ditherer.FloydSteinbergCheckered).Remap(pix, size)
	require.NoError(t, err)
	plain, err := newRemapper(t, palette, ditherer.None).Remap(pix, size)
	require.NoError(t, err)

	assert.NotEqual(t, fs, checkered)
	// the first row runs left to right in both
	assert.Equal(t, fs[:size], checkered[:size])

	bound := 2 * MeanSquaredError(cs, pix, palette, plain)
	assert.Less(t, MeanSquaredError(cs, pix, palette, fs), bound)
	assert.Less(t, MeanSquaredError(cs, pix, palette, checkered), bound)
}

func TestSeqIsLazy(t *testing.T) {
	const width = 4
	pix := grayImage(width, 3, func(x, y int) uint8 { return uint8(x*60 + y*10) })
	palette := grays(0, 128, 255)

	counting := func(pulled *int) func(yield func(colorspace.Color) bool) {
		return func(yield func(colorspace.Color) bool) {
			for c := range Pixels(pix) {
				*pulled++
				if !yield(c) {
					return
				}
			}
		}
	}

	t.Run("PixelAtATime", func(t *testing.T) {
		r := newRemapper(t, palette, ditherer.FloydSteinberg)
		pulled, emitted := 0, 0
		for range r.Seq(counting(&pulled), width) {
			emitted++
			assert.Equal(t, emitted, pulled)
			if emitted == 5 {
				break
			}
		}
		assert.Equal(t, 5, pulled)
	})

	t.Run("ReversedRowBuffered", func(t *testing.T) {
		r := newRemapper(t, palette, ditherer.FloydSteinbergCheckered)
		pulled, emitted := 0, 0
		for range r.Seq(counting(&pulled), width) {
			emitted++
			if emitted == width+1 {
				break
			}
		}
		assert.Equal(t, 2*width, pulled)
	})

	t.Run("MatchesRemap", func(t *testing.T) {
		r := newRemapper(t, palette, ditherer.FloydSteinbergCheckered)
		want, err := r.Remap(pix, width)
		require.NoError(t, err)
		assert.Equal(t, want, slices.Collect(r.Seq(Pixels(pix), width)))
	})

	t.Run("PartialLastRow", func(t *testing.T) {
		r := newRemapper(t, palette, ditherer.FloydSteinbergCheckered)
		got := slices.Collect(r.Seq(Pixels(pix[:4*(width+2)]), width))
		assert.Len(t, got, width+2)
	})

	t.Run("ZeroWidth", func(t *testing.T) {
		r := newRemapper(t, palette, ditherer.None)
		assert.Empty(t, slices.Collect(r.Seq(Pixels(pix), 0)))
	})
}

func TestMeanSquaredError(t *testing.T) {
	cs := colorspace.Default()
	palette := grays(0, 255)
	pix := grayImage(2, 1, func(x, _ int) uint8 { return uint8(x * 255) })

	assert.Equal(t, 0.0, MeanSquaredError(cs, pix, palette, []uint8{0, 1}))
	assert.Greater(t, MeanSquaredError(cs, pix, palette, []uint8{1, 0}), 0.0)
	assert.Equal(t, 0.0, MeanSquaredError(cs, nil, palette, nil))
}
