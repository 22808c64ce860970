package palq

import (
	"image"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/remapper"
)

// Result is an indexed image: one palette index per pixel in raster order.
type Result struct {
	Palette colorspace.Palette
	Indices []uint8
	Width   int
	Height  int

	// colorSpace is the space the result was remapped in.
	colorSpace colorspace.ColorSpace
}

// Paletted returns the result as an *image.Paletted sharing Indices.
func (r *Result) Paletted() *image.Paletted {
	return &image.Paletted{
		Pix:     r.Indices,
		Stride:  r.Width,
		Rect:    image.Rect(0, 0, r.Width, r.Height),
		Palette: r.Palette.ColorPalette(),
	}
}

// UsedIndices returns the set of palette indices referenced by at least one
// pixel.
func (r *Result) UsedIndices() *roaring.Bitmap {
	used := roaring.New()
	var seen [remapper.MaxColors]bool
	for _, idx := range r.Indices {
		if !seen[idx] {
			seen[idx] = true
			used.Add(uint32(idx))
		}
	}
	return used
}

// Compact returns a copy without unused palette entries. The remaining
// entries keep their relative order and indices are renumbered.
func (r *Result) Compact() *Result {
	used := r.UsedIndices()
	if used.GetCardinality() == uint64(len(r.Palette)) {
		return r.clone()
	}

	var table [remapper.MaxColors]uint8
	palette := make(colorspace.Palette, 0, used.GetCardinality())
	it := used.Iterator()
	for it.HasNext() {
		old := it.Next()
		table[old] = uint8(len(palette))
		palette = append(palette, r.Palette[old])
	}

	indices := make([]uint8, len(r.Indices))
	for i, idx := range r.Indices {
		indices[i] = table[idx]
	}

	return &Result{Palette: palette, Indices: indices, Width: r.Width, Height: r.Height, colorSpace: r.colorSpace}
}

func (r *Result) clone() *Result {
	return &Result{
		Palette: r.Palette.Clone(),
		Indices: append([]uint8(nil), r.Indices...),
		Width:   r.Width,
		Height:  r.Height,

		colorSpace: r.colorSpace,
	}
}

// Stats summarizes a result against its source image.
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	PaletteSize      int     `json:"palette_size"`
	UsedColors       int     `json:"used_colors"`
	MeanSquaredError float64 `json:"mean_squared_error"`
}

// Stats measures r against the image it was produced from using cs.
// If cs is nil, the color space r was remapped in is used, or
// colorspace.Default() for a Result built by hand.
func (r *Result) Stats(img Image, cs colorspace.ColorSpace) Stats {
	if cs == nil {
		cs = r.colorSpace
	}
	if cs == nil {
		cs = colorspace.Default()
	}
	return Stats{
		Width:            r.Width,
		Height:           r.Height,
		PaletteSize:      len(r.Palette),
		UsedColors:       int(r.UsedIndices().GetCardinality()),
		MeanSquaredError: remapper.MeanSquaredError(cs, img.Pix, r.Palette, r.Indices),
	}
}
