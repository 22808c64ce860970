package colorspace

import "math"

// Dimensions is the number of coordinates of a Point.
const Dimensions = 4

// Point is a color mapped into a ColorSpace.
type Point [Dimensions]float64

// Add returns p + q.
func (p Point) Add(q Point) Point {
	for i := range p {
		p[i] += q[i]
	}
	return p
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	for i := range p {
		p[i] -= q[i]
	}
	return p
}

// Scale returns p * s.
func (p Point) Scale(s float64) Point {
	for i := range p {
		p[i] *= s
	}
	return p
}

// ColorSpace maps colors into a measurable space.
//
// Implementations must be pure: the same color always maps to the same point,
// and FromPoint(ToPoint(c)) == c for every color.
type ColorSpace interface {
	// ToPoint maps c into the space.
	ToPoint(c Color) Point

	// FromPoint maps p back to the nearest representable color.
	FromPoint(p Point) Color

	// Distance returns the symmetric, non-negative distance between a and b.
	Distance(a, b Point) float64

	// Clamp projects p into the set of points reachable from a color.
	Clamp(p Point) Point
}

// Nearest returns the index of the point closest to p and its distance.
// Ties resolve to the lowest index. It returns -1 when points is empty.
func Nearest(cs ColorSpace, points []Point, p Point) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, q := range points {
		d := cs.Distance(p, q)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// SquaredL2 is the squared euclidean distance between a and b.
func SquaredL2(a, b Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
