package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/palq/colorspace"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a random int in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Color returns a random opaque color.
func (r *RNG) Color() colorspace.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.colorLocked()
}

func (r *RNG) colorLocked() colorspace.Color {
	v := r.rand.Uint32()
	return colorspace.RGBA(uint8(v), uint8(v>>8), uint8(v>>16), 255)
}

// Colors returns n distinct random opaque colors.
func (r *RNG) Colors(n int) colorspace.Palette {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[colorspace.Color]struct{}, n)
	out := make(colorspace.Palette, 0, n)
	for len(out) < n {
		c := r.colorLocked()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// RandomPixels returns a width x height buffer of random opaque colors.
func (r *RNG) RandomPixels(width, height int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	pix := make([]byte, 4*width*height)
	for i := 0; i < len(pix); i += 4 {
		c := r.colorLocked()
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	return pix
}

// PalettePixels returns a width x height buffer whose pixels are drawn
// uniformly from colors. Every color appears at least once when the image
// has room for it.
func (r *RNG) PalettePixels(width, height int, colors colorspace.Palette) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := width * height
	pix := make([]byte, 4*n)
	for i := range n {
		var c colorspace.Color
		if i < len(colors) {
			c = colors[i]
		} else {
			c = colors[r.rand.Intn(len(colors))]
		}
		pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3] = c.R, c.G, c.B, c.A
	}
	return pix
}

// Solid returns a width x height buffer filled with c.
func Solid(width, height int, c colorspace.Color) []byte {
	pix := make([]byte, 4*width*height)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	return pix
}

// Gradient returns an opaque horizontal gray ramp from black to white.
func Gradient(width, height int) []byte {
	pix := make([]byte, 4*width*height)
	for y := range height {
		for x := range width {
			v := uint8(0)
			if width > 1 {
				v = uint8(x * 255 / (width - 1))
			}
			i := 4 * (y*width + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
		}
	}
	return pix
}

// Distinct returns the number of distinct colors in pix.
func Distinct(pix []byte) int {
	seen := make(map[[4]byte]struct{})
	for i := 0; i+3 < len(pix); i += 4 {
		seen[[4]byte(pix[i:i+4])] = struct{}{}
	}
	return len(seen)
}
