// Package colorspace defines the color value type and the metric space colors
// are compared in.
//
// Quantization never measures raw channel differences. Every Color is first
// mapped to a Point by a ColorSpace, and clustering, nearest-neighbor search and
// dithering all operate on points:
//
//	cs := colorspace.Default()
//	p := cs.ToPoint(colorspace.RGBA(255, 128, 0, 255))
//	c := cs.FromPoint(p) // == the original color
//
// # Simple
//
// Simple is the default space. It applies a mild gamma per channel, weights the
// channels to approximate perceived difference (green counts most, blue least)
// and scales the color channels by opacity, so alpha takes part in the metric
// instead of being ignored: two fully transparent pixels are close but never
// identical.
package colorspace
