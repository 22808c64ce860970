package quantizer

import (
	"cmp"
	"errors"
	"slices"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/histogram"
	"github.com/hupe1980/palq/optimizer"
)

// ErrEmptyHistogram is returned when there is no pixel to seed a cluster with.
var ErrEmptyHistogram = errors.New("quantizer: empty histogram")

type cluster struct {
	members  []int // indices into Quantizer.samples
	centroid colorspace.Point
	weight   float64
	err      float64
}

// Quantizer is an incremental palette builder.
type Quantizer struct {
	cs       colorspace.ColorSpace
	samples  []optimizer.Sample
	clusters []cluster
}

// New seeds a Quantizer with a single cluster covering all of h.
func New(h *histogram.Histogram, cs colorspace.ColorSpace) (*Quantizer, error) {
	if h == nil || h.Total() == 0 {
		return nil, ErrEmptyHistogram
	}

	samples := optimizer.Samples(cs, h)
	members := make([]int, len(samples))
	for i := range members {
		members[i] = i
	}

	q := &Quantizer{cs: cs, samples: samples}
	root := cluster{members: members}
	q.refresh(&root)
	q.clusters = append(q.clusters, root)
	return q, nil
}

// NumColors returns the current number of clusters.
func (q *Quantizer) NumColors() int {
	return len(q.clusters)
}

// TotalError returns the summed weighted error of all clusters.
func (q *Quantizer) TotalError() float64 {
	var total float64
	for i := range q.clusters {
		total += q.clusters[i].err
	}
	return total
}

// Step splits the cluster with the largest error. It reports false, leaving
// the Quantizer unchanged, when no cluster holds two distinct colors.
func (q *Quantizer) Step() bool {
	idx := -1
	worst := -1.0
	for i := range q.clusters {
		c := &q.clusters[i]
		if len(c.members) < 2 {
			continue
		}
		if c.err > worst {
			idx, worst = i, c.err
		}
	}
	if idx < 0 {
		return false
	}

	left, right, ok := q.split(q.clusters[idx].members)
	if !ok {
		return false
	}

	q.clusters[idx] = cluster{members: left}
	q.refresh(&q.clusters[idx])

	child := cluster{members: right}
	q.refresh(&child)
	q.clusters = append(q.clusters, child)
	return true
}

// split partitions members at the weighted median of the axis with the
// greatest weighted variance.
func (q *Quantizer) split(members []int) ([]int, []int, bool) {
	var mean colorspace.Point
	var weight float64
	for _, m := range members {
		s := q.samples[m]
		mean = mean.Add(s.Point.Scale(s.Weight))
		weight += s.Weight
	}
	mean = mean.Scale(1 / weight)

	var variance colorspace.Point
	for _, m := range members {
		s := q.samples[m]
		for d := range variance {
			diff := s.Point[d] - mean[d]
			variance[d] += s.Weight * diff * diff
		}
	}
	axis := 0
	for d := 1; d < colorspace.Dimensions; d++ {
		if variance[d] > variance[axis] {
			axis = d
		}
	}
	if variance[axis] == 0 {
		return nil, nil, false
	}

	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b int) int {
		return cmp.Compare(q.samples[a].Point[axis], q.samples[b].Point[axis])
	})

	half := weight / 2
	cut := 0
	var acc float64
	for i, m := range sorted {
		acc += q.samples[m].Weight
		if acc >= half {
			cut = i
			break
		}
	}
	cut = min(cut, len(sorted)-2)

	// Colors sharing the coordinate must stay together.
	value := func(i int) float64 { return q.samples[sorted[i]].Point[axis] }
	hi := cut
	for hi < len(sorted)-1 && value(hi) == value(hi+1) {
		hi++
	}
	if hi == len(sorted)-1 {
		for hi = cut; hi >= 0 && value(hi) == value(hi+1); hi-- {
		}
		if hi < 0 {
			return nil, nil, false
		}
	}

	left := sorted[: hi+1 : hi+1]
	right := slices.Clone(sorted[hi+1:])
	return left, right, true
}

// refresh recomputes the centroid, weight and error of c from its members.
func (q *Quantizer) refresh(c *cluster) {
	var sum colorspace.Point
	c.weight = 0
	for _, m := range c.members {
		s := q.samples[m]
		sum = sum.Add(s.Point.Scale(s.Weight))
		c.weight += s.Weight
	}
	if c.weight == 0 {
		c.err = 0
		return
	}
	c.centroid = sum.Scale(1 / c.weight)

	c.err = 0
	for _, m := range c.members {
		s := q.samples[m]
		c.err += s.Weight * q.cs.Distance(s.Point, c.centroid)
	}
}

// Optimize returns a new Quantizer whose clusters were refined by o. The
// cluster count is unchanged and the receiver is not modified.
func (q *Quantizer) Optimize(o optimizer.Optimizer, iterations int) *Quantizer {
	out := &Quantizer{
		cs:       q.cs,
		samples:  q.samples,
		clusters: make([]cluster, len(q.clusters)),
	}

	res := o.Optimize(q.cs, q.samples, q.centroids(), iterations)
	if res.Assignments == nil {
		for i, c := range q.clusters {
			c.members = slices.Clone(c.members)
			out.clusters[i] = c
		}
		return out
	}

	for i, j := range res.Assignments {
		out.clusters[j].members = append(out.clusters[j].members, i)
	}
	for j := range out.clusters {
		c := &out.clusters[j]
		if len(c.members) == 0 {
			c.centroid = res.Centroids[j]
			continue
		}
		out.refresh(c)
	}
	return out
}

func (q *Quantizer) centroids() []colorspace.Point {
	out := make([]colorspace.Point, len(q.clusters))
	for i := range q.clusters {
		out[i] = q.clusters[i].centroid
	}
	return out
}

// Colors returns the palette in cluster order. The result is a copy.
func (q *Quantizer) Colors() colorspace.Palette {
	out := make(colorspace.Palette, len(q.clusters))
	for i := range q.clusters {
		out[i] = q.cs.FromPoint(q.clusters[i].centroid)
	}
	return out
}
