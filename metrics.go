package palq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordQuantize is called after each Quantize call.
	// pixels is the image size, colors the final palette size.
	RecordQuantize(pixels, colors int, duration time.Duration, err error)

	// RecordOptimize is called after each k-means refinement pass.
	RecordOptimize(colors int, duration time.Duration)

	// RecordRemap is called after the pixels were mapped to palette indices.
	RecordRemap(pixels int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuantize(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordOptimize(int, time.Duration)             {}
func (NoopMetricsCollector) RecordRemap(int, time.Duration)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	QuantizeCount      atomic.Int64
	QuantizeErrors     atomic.Int64
	QuantizeTotalNanos atomic.Int64
	QuantizePixels     atomic.Int64
	PaletteColors      atomic.Int64
	OptimizeCount      atomic.Int64
	OptimizeTotalNanos atomic.Int64
	RemapCount         atomic.Int64
	RemapPixels        atomic.Int64
	RemapTotalNanos    atomic.Int64
}

// RecordQuantize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuantize(pixels, colors int, duration time.Duration, err error) {
	b.QuantizeCount.Add(1)
	b.QuantizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QuantizeErrors.Add(1)
		return
	}
	b.QuantizePixels.Add(int64(pixels))
	b.PaletteColors.Add(int64(colors))
}

// RecordOptimize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOptimize(_ int, duration time.Duration) {
	b.OptimizeCount.Add(1)
	b.OptimizeTotalNanos.Add(duration.Nanoseconds())
}

// RecordRemap implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemap(pixels int, duration time.Duration) {
	b.RemapCount.Add(1)
	b.RemapPixels.Add(int64(pixels))
	b.RemapTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		QuantizeCount:    b.QuantizeCount.Load(),
		QuantizeErrors:   b.QuantizeErrors.Load(),
		QuantizeAvgNanos: avg(b.QuantizeTotalNanos.Load(), b.QuantizeCount.Load()),
		QuantizePixels:   b.QuantizePixels.Load(),
		PaletteColors:    b.PaletteColors.Load(),
		OptimizeCount:    b.OptimizeCount.Load(),
		OptimizeAvgNanos: avg(b.OptimizeTotalNanos.Load(), b.OptimizeCount.Load()),
		RemapCount:       b.RemapCount.Load(),
		RemapPixels:      b.RemapPixels.Load(),
		RemapAvgNanos:    avg(b.RemapTotalNanos.Load(), b.RemapCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QuantizeCount    int64
	QuantizeErrors   int64
	QuantizeAvgNanos int64
	QuantizePixels   int64
	PaletteColors    int64
	OptimizeCount    int64
	OptimizeAvgNanos int64
	RemapCount       int64
	RemapPixels      int64
	RemapAvgNanos    int64
}
