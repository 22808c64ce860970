package optimizer

import (
	"math"

	"github.com/hupe1980/palq/colorspace"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of samples reassigned per goroutine.
const chunkSize = 4096

type lloyd struct {
	kind        Kind
	parallelism int
	bias        float64
}

func (l *lloyd) Kind() Kind { return l.kind }

// Optimize runs Lloyd's algorithm for a fixed number of iterations.
func (l *lloyd) Optimize(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point, iterations int) Result {
	current := clonePoints(centroids)
	if iterations <= 0 || len(centroids) == 0 || len(samples) == 0 {
		return Result{Centroids: current}
	}

	assign := make([]int, len(samples))
	bestErr := l.assignNearest(cs, samples, current, assign)

	accepted := 0
	for range iterations {
		next := clonePoints(current)
		nextAssign := make([]int, len(samples))

		if l.bias > 0 {
			l.assignBiased(cs, samples, next, clusterWeights(samples, assign, len(next)), nextAssign)
		} else {
			copy(nextAssign, assign)
		}

		reseed(cs, samples, next, nextAssign)
		update(samples, nextAssign, next)

		err := l.assignNearest(cs, samples, next, nextAssign)
		if err > bestErr {
			break
		}

		current, assign, bestErr = next, nextAssign, err
		accepted++
	}

	reseed(cs, samples, current, assign)

	return Result{
		Centroids:   current,
		Assignments: assign,
		Iterations:  accepted,
	}
}

// assignNearest moves every sample to its nearest centroid and returns the
// total weighted error.
func (l *lloyd) assignNearest(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point, assign []int) float64 {
	errs := make([]float64, len(samples))
	l.forEachChunk(len(samples), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			j, d := colorspace.Nearest(cs, centroids, samples[i].Point)
			assign[i] = j
			errs[i] = samples[i].Weight * d
		}
	})

	var total float64
	for _, e := range errs {
		total += e
	}
	return total
}

// assignBiased shrinks the distance to centroids holding a large share of the
// total weight, so frequent colors pull border samples into their cluster.
func (l *lloyd) assignBiased(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point, weights []float64, assign []int) {
	var total float64
	for _, w := range weights {
		total += w
	}
	factor := make([]float64, len(weights))
	for j, w := range weights {
		factor[j] = 1
		if total > 0 {
			factor[j] = 1 - l.bias*w/total
		}
	}

	l.forEachChunk(len(samples), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			best := -1
			bestCost := math.Inf(1)
			for j, c := range centroids {
				cost := cs.Distance(samples[i].Point, c) * factor[j]
				if cost < bestCost {
					best = j
					bestCost = cost
				}
			}
			assign[i] = best
		}
	})
}

func (l *lloyd) forEachChunk(n int, fn func(lo, hi int)) {
	if l.parallelism <= 1 || n <= chunkSize {
		fn(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(l.parallelism)
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

func clusterWeights(samples []Sample, assign []int, k int) []float64 {
	w := make([]float64, k)
	for i, s := range samples {
		w[assign[i]] += s.Weight
	}
	return w
}

// update moves every populated centroid to the weighted mean of its samples.
func update(samples []Sample, assign []int, centroids []colorspace.Point) {
	sums := make([]colorspace.Point, len(centroids))
	weights := make([]float64, len(centroids))
	for i, s := range samples {
		j := assign[i]
		sums[j] = sums[j].Add(s.Point.Scale(s.Weight))
		weights[j] += s.Weight
	}
	for j := range centroids {
		if weights[j] > 0 {
			centroids[j] = sums[j].Scale(1 / weights[j])
		}
	}
}

// reseed gives every empty centroid the sample with the largest weighted
// residual among clusters that can spare one.
func reseed(cs colorspace.ColorSpace, samples []Sample, centroids []colorspace.Point, assign []int) {
	counts := make([]int, len(centroids))
	for _, j := range assign {
		counts[j]++
	}

	for j := range centroids {
		if counts[j] > 0 {
			continue
		}

		donor := -1
		var worst float64
		for i, s := range samples {
			if counts[assign[i]] < 2 {
				continue
			}
			cost := s.Weight * cs.Distance(s.Point, centroids[assign[i]])
			if cost > worst {
				donor, worst = i, cost
			}
		}
		if donor < 0 {
			continue
		}

		counts[assign[donor]]--
		assign[donor] = j
		counts[j] = 1
		centroids[j] = samples[donor].Point
	}
}
