package optimizer

import (
	"fmt"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/histogram"
)

// Kind identifies an optimization strategy.
type Kind int

const (
	None Kind = iota
	KMeans
	WeightedKMeans
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case KMeans:
		return "kmeans"
	case WeightedKMeans:
		return "weighted-kmeans"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Sample is a distinct color in quantization space with its occurrence count.
type Sample struct {
	Point  colorspace.Point
	Weight float64
}

// Samples maps every histogram entry into cs.
func Samples(cs colorspace.ColorSpace, h *histogram.Histogram) []Sample {
	entries := h.Entries()
	out := make([]Sample, len(entries))
	for i, e := range entries {
		out[i] = Sample{Point: cs.ToPoint(e.Color), Weight: float64(e.Count)}
	}
	return out
}

// Result is the outcome of an optimization pass.
type Result struct {
	// Centroids has the same length as the input centroids.
	Centroids []colorspace.Point
	// Assignments maps each sample to a centroid. Nil means the caller's
	// assignment is unchanged.
	Assignments []int
	// Iterations is the number of accepted passes.
	Iterations int
}

// Optimizer refines a set of centroids against weighted samples.
type Optimizer interface {
	// Kind reports the strategy.
	Kind() Kind

	// Optimize runs up to iterations passes. It never mutates its inputs.
	Optimize(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point, iterations int) Result
}

// Options configures the k-means strategies.
type Options struct {
	// Parallelism is the number of goroutines used for reassignment.
	// Values <= 1 run sequentially. Results do not depend on it.
	Parallelism int

	// Bias is the preference WeightedKMeans gives to heavily populated
	// centroids, in [0, 1). Ignored by KMeans.
	Bias float64
}

// DefaultOptions are used by New.
var DefaultOptions = Options{
	Parallelism: 1,
	Bias:        0.5,
}

// New returns the optimizer for kind.
func New(kind Kind, optFns ...func(o *Options)) (Optimizer, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	switch kind {
	case None:
		return Noop{}, nil
	case KMeans:
		return &lloyd{kind: KMeans, parallelism: opts.Parallelism}, nil
	case WeightedKMeans:
		if opts.Bias < 0 || opts.Bias >= 1 {
			return nil, fmt.Errorf("optimizer: bias %v out of range [0, 1)", opts.Bias)
		}
		return &lloyd{kind: WeightedKMeans, parallelism: opts.Parallelism, bias: opts.Bias}, nil
	default:
		return nil, fmt.Errorf("optimizer: unknown kind %v", kind)
	}
}

// Noop is the pass-through strategy.
type Noop struct{}

// Kind implements Optimizer.
func (Noop) Kind() Kind { return None }

// Optimize implements Optimizer.
func (Noop) Optimize(_ colorspace.ColorSpace, _ []Sample, centroids []colorspace.Point, _ int) Result {
	return Result{Centroids: clonePoints(centroids)}
}

// Error returns the total weighted distance from each sample to its nearest
// centroid.
func Error(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point) float64 {
	var total float64
	for _, s := range samples {
		_, d := colorspace.Nearest(cs, centroids, s.Point)
		total += s.Weight * d
	}
	return total
}

// OptimizePalette polishes a finished palette against the full histogram
// without changing its size. The result is never worse than the input.
func OptimizePalette(o Optimizer, cs colorspace.ColorSpace, palette colorspace.Palette, h *histogram.Histogram, iterations int) colorspace.Palette {
	if iterations <= 0 || len(palette) == 0 || h.Len() == 0 {
		return palette.Clone()
	}

	samples := Samples(cs, h)
	before := palette.Points(cs)
	res := o.Optimize(cs, samples, before, iterations)

	out := make(colorspace.Palette, len(res.Centroids))
	for i, p := range res.Centroids {
		out[i] = cs.FromPoint(p)
	}

	// Rounding to 8-bit channels can undo a marginal gain.
	if Error(cs, samples, out.Points(cs)) > Error(cs, samples, before) {
		return palette.Clone()
	}
	return out
}

func clonePoints(p []colorspace.Point) []colorspace.Point {
	if p == nil {
		return nil
	}
	out := make([]colorspace.Point, len(p))
	copy(out, p)
	return out
}
