// Package testutil provides testing utilities for palq.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for RGBA pixel buffers.
//
//	rng := testutil.NewRNG(seed)
//	pix := rng.RandomPixels(64, 64)          // uniform opaque colors
//	pix = rng.PalettePixels(64, 64, colors) // random picks from colors
//	pix = testutil.Gradient(100, 1)         // horizontal gray ramp
package testutil
