// Package palq reduces true-color RGBA images to an indexed palette of at
// most 256 colors.
//
// A palette is grown by recursive splitting of color clusters, optionally
// refined with k-means, and every pixel is then remapped to a palette index
// with an optional ditherer.
//
// # Quick Start
//
//	img, _ := imageio.Decode(f)
//	res, err := palq.Quantize(ctx, img,
//	    palq.WithColors(64),
//	    palq.WithDitherer(ditherer.FloydSteinbergCheckered),
//	)
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, res.Paletted())
//
// # Optimization Levels
//
// Levels follow the pngeq naming:
//
//	0        no k-means refinement
//	s1..s3   k-means, optimizes for smooth gradients
//	c1..c3   occurrence-weighted k-means, optimizes for distinct colors
//
// The digit controls how often refinement runs while the palette grows:
// once at the end (1), every round(sqrt(colors)) colors (2), or after every
// split (3). Use [DefaultLevel] to pick a level from the palette size.
//
// # Pipeline
//
// The stages are exposed as separate packages and can be used directly:
//
//	colorspace  perceptual color space and nearest lookup
//	histogram   distinct colors with occurrence counts
//	quantizer   palette growth by cluster splitting
//	optimizer   k-means refinement
//	ditherer    nearest, ordered and Floyd-Steinberg error diffusion
//	remapper    lazy pixel to index mapping
//
// [Quantize] wires them together with the options in this package.
package palq
