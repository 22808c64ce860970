package colorspace

import "math"

// Simple is a gamma-adjusted, channel-weighted RGBA space.
type Simple struct {
	// Gamma is applied to each color channel before weighting.
	Gamma float64
	// TransparencyFloor is the share of color weight kept by a fully
	// transparent pixel. Must be > 0 for FromPoint to stay invertible.
	TransparencyFloor float64
	// Weights scale the r, g, b and a coordinates.
	Weights Point
}

// Default returns the Simple space used when none is configured.
func Default() *Simple {
	return &Simple{
		Gamma:             1.2,
		TransparencyFloor: 0.01,
		Weights:           Point{1.0, 1.2, 0.8, 0.75},
	}
}

func (s *Simple) opacity(a float64) float64 {
	return s.TransparencyFloor + (1-s.TransparencyFloor)*a
}

// ToPoint implements ColorSpace.
func (s *Simple) ToPoint(c Color) Point {
	a := float64(c.A) / 255
	f := s.opacity(a)
	return Point{
		math.Pow(float64(c.R)/255, s.Gamma) * f * s.Weights[0],
		math.Pow(float64(c.G)/255, s.Gamma) * f * s.Weights[1],
		math.Pow(float64(c.B)/255, s.Gamma) * f * s.Weights[2],
		a * s.Weights[3],
	}
}

// FromPoint implements ColorSpace.
func (s *Simple) FromPoint(p Point) Color {
	a := clamp01(p[3] / s.Weights[3])
	f := s.opacity(a)
	inv := 1 / s.Gamma
	channel := func(v, w float64) uint8 {
		return toByte(math.Pow(clamp01(v/(w*f)), inv))
	}
	return Color{
		R: channel(p[0], s.Weights[0]),
		G: channel(p[1], s.Weights[1]),
		B: channel(p[2], s.Weights[2]),
		A: toByte(a),
	}
}

// Distance implements ColorSpace.
func (s *Simple) Distance(a, b Point) float64 {
	return SquaredL2(a, b)
}

// Clamp implements ColorSpace.
func (s *Simple) Clamp(p Point) Point {
	p[3] = math.Min(math.Max(p[3], 0), s.Weights[3])
	f := s.opacity(p[3] / s.Weights[3])
	for i := 0; i < 3; i++ {
		p[i] = math.Min(math.Max(p[i], 0), s.Weights[i]*f)
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toByte(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
