package quantizer

import (
	"math/rand"
	"testing"

	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/histogram"
	"github.com/hupe1980/palq/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomHistogram(seed int64, distinct int) *histogram.Histogram {
	rng := rand.New(rand.NewSource(seed))
	h := histogram.New()
	for h.Len() < distinct {
		c := colorspace.RGBA(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
		h.Add(c, uint64(1+rng.Intn(20)))
	}
	return h
}

func grow(q *Quantizer, n int) {
	for q.NumColors() < n && q.Step() {
	}
}

func requirePartition(t *testing.T, q *Quantizer) {
	t.Helper()
	seen := make([]int, len(q.samples))
	for _, c := range q.clusters {
		require.NotEmpty(t, c.members)
		for _, m := range c.members {
			seen[m]++
		}
	}
	for i, n := range seen {
		require.Equal(t, 1, n, "sample %d owned by %d clusters", i, n)
	}
}

func TestNewEmpty(t *testing.T) {
	_, err := New(histogram.New(), colorspace.Default())
	assert.ErrorIs(t, err, ErrEmptyHistogram)

	_, err = New(nil, colorspace.Default())
	assert.ErrorIs(t, err, ErrEmptyHistogram)
}

func TestGrowth(t *testing.T) {
	cs := colorspace.Default()
	h := randomHistogram(1, 50)

	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"Fewer", 16, 16},
		{"Equal", 50, 50},
		{"More", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(h, cs)
			require.NoError(t, err)
			assert.Equal(t, 1, q.NumColors())

			prev := q.NumColors()
			for q.NumColors() < tt.requested && q.Step() {
				assert.Equal(t, prev+1, q.NumColors())
				prev = q.NumColors()
			}

			assert.Equal(t, tt.want, q.NumColors())
			requirePartition(t, q)
		})
	}
}

func TestStepExhausted(t *testing.T) {
	h := randomHistogram(2, 5)
	q, err := New(h, colorspace.Default())
	require.NoError(t, err)

	grow(q, 5)
	require.Equal(t, 5, q.NumColors())
	assert.False(t, q.Step())
	assert.Equal(t, 5, q.NumColors())
}

func TestSingleColor(t *testing.T) {
	h := histogram.New()
	h.Add(colorspace.RGBA(0, 0, 0, 255), 100)

	q, err := New(h, colorspace.Default())
	require.NoError(t, err)

	assert.False(t, q.Step())
	assert.Equal(t, 1, q.NumColors())
	assert.Equal(t, colorspace.Palette{colorspace.RGBA(0, 0, 0, 255)}, q.Colors())
	assert.Equal(t, 0.0, q.TotalError())
}

func TestLossless(t *testing.T) {
	h := histogram.New()
	want := colorspace.Palette{
		colorspace.RGBA(255, 0, 0, 255),
		colorspace.RGBA(0, 255, 0, 255),
		colorspace.RGBA(0, 0, 255, 255),
		colorspace.RGBA(255, 255, 255, 0),
	}
	for i, c := range want {
		h.Add(c, uint64(i+1))
	}

	q, err := New(h, colorspace.Default())
	require.NoError(t, err)
	grow(q, 4)

	assert.ElementsMatch(t, want, q.Colors())
	assert.InDelta(t, 0.0, q.TotalError(), 1e-12)
}

func TestWeightedMedianSplit(t *testing.T) {
	black := colorspace.RGBA(0, 0, 0, 255)
	gray := colorspace.RGBA(128, 128, 128, 255)
	white := colorspace.RGBA(255, 255, 255, 255)

	h := histogram.New()
	h.Add(black, 1)
	h.Add(gray, 1)
	h.Add(white, 100)

	q, err := New(h, colorspace.Default())
	require.NoError(t, err)
	require.True(t, q.Step())

	colors := q.Colors()
	require.Len(t, colors, 2)
	assert.Equal(t, white, colors[1])
	assert.Greater(t, colors[0].G, black.G)
	assert.Less(t, colors[0].G, gray.G)
}

func TestSplitPicksLargestError(t *testing.T) {
	cs := colorspace.Default()
	h := histogram.New()
	// a tight pair of dark grays and a wide pair of bright ones
	h.Add(colorspace.RGBA(0, 0, 0, 255), 1)
	h.Add(colorspace.RGBA(2, 2, 2, 255), 1)
	h.Add(colorspace.RGBA(200, 200, 200, 255), 1)
	h.Add(colorspace.RGBA(255, 255, 255, 255), 1)

	q, err := New(h, cs)
	require.NoError(t, err)
	grow(q, 3)

	assert.Contains(t, q.Colors(), colorspace.RGBA(200, 200, 200, 255))
	assert.Contains(t, q.Colors(), colorspace.RGBA(255, 255, 255, 255))
}

func TestDeterministic(t *testing.T) {
	cs := colorspace.Default()
	h := randomHistogram(3, 300)

	build := func() colorspace.Palette {
		q, err := New(h, cs)
		require.NoError(t, err)
		grow(q, 32)
		return q.Colors()
	}

	assert.Equal(t, build(), build())
}

func TestOptimize(t *testing.T) {
	cs := colorspace.Default()
	h := randomHistogram(4, 400)

	for _, kind := range []optimizer.Kind{optimizer.None, optimizer.KMeans, optimizer.WeightedKMeans} {
		t.Run(kind.String(), func(t *testing.T) {
			o, err := optimizer.New(kind)
			require.NoError(t, err)

			q, err := New(h, cs)
			require.NoError(t, err)
			grow(q, 24)

			before := q.Colors()
			beforeErr := q.TotalError()

			next := q.Optimize(o, 4)
			assert.Equal(t, 24, next.NumColors())
			assert.LessOrEqual(t, next.TotalError(), beforeErr+1e-9)
			requirePartition(t, next)

			// receiver untouched
			assert.Equal(t, before, q.Colors())
			assert.Equal(t, beforeErr, q.TotalError())

			// growth continues from the optimized state
			require.True(t, next.Step())
			assert.Equal(t, 25, next.NumColors())
		})
	}
}

func TestOptimizeZeroIterations(t *testing.T) {
	cs := colorspace.Default()
	h := randomHistogram(5, 100)

	o, err := optimizer.New(optimizer.KMeans)
	require.NoError(t, err)

	q, err := New(h, cs)
	require.NoError(t, err)
	grow(q, 10)

	assert.Equal(t, q.centroids(), q.Optimize(o, 0).centroids())
}
