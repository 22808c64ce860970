package palq

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/ditherer"
	"github.com/hupe1980/palq/histogram"
	"github.com/hupe1980/palq/optimizer"
	"github.com/hupe1980/palq/quantizer"
	"github.com/hupe1980/palq/remapper"
)

const (
	// growthIterations is the k-means iteration count of each refinement
	// pass while the palette grows.
	growthIterations = 4
	// paletteIterations is the iteration count of the final palette pass.
	paletteIterations = 8
)

// Image is a flat, non-premultiplied RGBA buffer in row-major order.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// ImageFrom converts src to an Image. *image.NRGBA values without an
// offset share their pixel buffer; all others are copied.
func ImageFrom(src image.Image) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	dst, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || dst.Stride != 4*w {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}

	return Image{Pix: dst.Pix[:4*w*h], Width: w, Height: h}
}

// NRGBA returns img as an *image.NRGBA sharing its buffer.
func (img Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// Pixels returns the number of pixels.
func (img Image) Pixels() int { return img.Width * img.Height }

func (img Image) validate() error {
	if img.Width < 0 || img.Height < 0 || len(img.Pix) != 4*img.Width*img.Height {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, &ImageError{Width: img.Width, Height: img.Height, Bytes: len(img.Pix)})
	}
	if img.Pixels() == 0 {
		return ErrEmptyInput
	}
	return nil
}

// Quantize builds a palette for img and maps every pixel to it.
//
// The configuration is validated before any work is done. An image with
// fewer distinct colors than requested yields a smaller, lossless palette.
func Quantize(ctx context.Context, img Image, opts ...Option) (*Result, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := img.validate(); err != nil {
		return nil, err
	}

	logger := o.logger.WithImage(img.Width, img.Height).WithColors(o.colors)
	start := time.Now()

	res, err := quantize(ctx, img, o, logger)

	size := 0
	if res != nil {
		size = len(res.Palette)
	}
	o.metricsCollector.RecordQuantize(img.Pixels(), size, time.Since(start), err)
	logger.LogQuantize(ctx, *o.level, size, time.Since(start), err)

	return res, err
}

func quantize(ctx context.Context, img Image, o *options, logger *Logger) (*Result, error) {
	h := histogram.FromPixels(img.Pix)

	palette, err := buildPalette(ctx, h, o, logger)
	if err != nil {
		return nil, err
	}

	return remap(ctx, img, palette, o, logger)
}

// BuildPalette grows a palette for the colors of h.
//
// Growth stops early, without error, when every cluster holds a single
// color.
func BuildPalette(ctx context.Context, h *histogram.Histogram, opts ...Option) (colorspace.Palette, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return buildPalette(ctx, h, o, o.logger.WithColors(o.colors))
}

func buildPalette(ctx context.Context, h *histogram.Histogram, o *options, logger *Logger) (colorspace.Palette, error) {
	opt, err := optimizer.New(o.level.Optimizer, func(oo *optimizer.Options) {
		oo.Parallelism = o.parallelism
	})
	if err != nil {
		return nil, &ConfigError{Field: "level", Value: *o.level, cause: err}
	}

	if h == nil {
		return nil, translateError(quantizer.ErrEmptyHistogram)
	}
	q, err := quantizer.New(h, o.colorSpace)
	if err != nil {
		return nil, translateError(err)
	}

	refine := func() {
		start := time.Now()
		q = q.Optimize(opt, growthIterations)
		o.metricsCollector.RecordOptimize(q.NumColors(), time.Since(start))
		logger.LogGrowth(ctx, q.NumColors(), q.TotalError())
	}

	step := o.level.KMeansStep(o.colors)
	refines := opt.Kind() != optimizer.None
	refined := false
	for q.NumColors() < o.colors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.Step() {
			break
		}
		refined = false
		if refines && q.NumColors()%step == 0 {
			refine()
			refined = true
		}
	}

	// growth ended between two refinement points
	if refines && !refined && q.NumColors() > 1 {
		refine()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	palette := optimizer.OptimizePalette(opt, o.colorSpace, q.Colors(), h, paletteIterations)
	if opt.Kind() != optimizer.None {
		o.metricsCollector.RecordOptimize(len(palette), time.Since(start))
	}
	return palette, nil
}

// Remap maps every pixel of img to palette using the configured ditherer.
// WithColors and WithLevel are ignored. The palette must hold 1 to 256
// colors.
func Remap(ctx context.Context, img Image, palette colorspace.Palette, opts ...Option) (*Result, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(palette) == 0 || len(palette) > remapper.MaxColors {
		return nil, &ConfigError{Field: "palette size", Value: len(palette)}
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return remap(ctx, img, palette, o, o.logger.WithImage(img.Width, img.Height))
}

func remap(ctx context.Context, img Image, palette colorspace.Palette, o *options, logger *Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := ditherer.New(o.ditherer)
	if err != nil {
		return nil, &ConfigError{Field: "ditherer", Value: o.ditherer, cause: err}
	}
	r, err := remapper.New(palette, o.colorSpace, d)
	if err != nil {
		return nil, translateError(err)
	}

	start := time.Now()
	indices, err := r.Remap(img.Pix, img.Width)
	logger.LogRemap(ctx, o.ditherer.String(), len(indices), err)
	if err != nil {
		return nil, translateError(err)
	}
	o.metricsCollector.RecordRemap(len(indices), time.Since(start))

	return &Result{
		Palette: r.Palette(),
		Indices: indices,
		Width:   img.Width,
		Height:  img.Height,

		colorSpace: o.colorSpace,
	}, nil
}
