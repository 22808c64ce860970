package histogram

import (
	"slices"
	"testing"

	"github.com/hupe1980/palq/colorspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPixels(t *testing.T) {
	pix := []byte{
		255, 0, 0, 255,
		0, 255, 0, 255,
		255, 0, 0, 255,
		255, 0, 0, 255,
		0, 0, 0, 0,
		7, // partial pixel
	}

	h := FromPixels(pix)

	require.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(5), h.Total())
	assert.Equal(t, uint64(3), h.Count(colorspace.RGBA(255, 0, 0, 255)))
	assert.Equal(t, uint64(1), h.Count(colorspace.RGBA(0, 0, 0, 0)))
	assert.Equal(t, uint64(0), h.Count(colorspace.RGBA(1, 1, 1, 1)))

	// first-occurrence order
	assert.Equal(t, colorspace.Palette{
		colorspace.RGBA(255, 0, 0, 255),
		colorspace.RGBA(0, 255, 0, 255),
		colorspace.RGBA(0, 0, 0, 0),
	}, h.Colors())
}

func TestCountsSumToTotal(t *testing.T) {
	pix := make([]byte, 0, 4*1000)
	for i := range 1000 {
		pix = append(pix, byte(i%7), byte(i%13), byte(i%3), 255)
	}

	h := FromPixels(pix)

	var sum uint64
	for _, e := range h.Entries() {
		sum += e.Count
	}
	assert.Equal(t, h.Total(), sum)
	assert.Equal(t, uint64(1000), sum)
}

func TestFromColors(t *testing.T) {
	colors := []colorspace.Color{
		colorspace.RGBA(1, 2, 3, 4),
		colorspace.RGBA(1, 2, 3, 4),
	}

	h := FromColors(slices.Values(colors))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, uint64(2), h.Total())
}

func TestAddZeroIgnored(t *testing.T) {
	h := New()
	h.Add(colorspace.RGBA(1, 1, 1, 1), 0)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, uint64(0), h.Total())
}
