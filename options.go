package palq

import (
	"github.com/hupe1980/palq/colorspace"
	"github.com/hupe1980/palq/ditherer"
	"github.com/hupe1980/palq/remapper"
)

// DefaultColors is the palette size used when WithColors is not given.
const DefaultColors = 256

type options struct {
	colors           int
	level            *Level
	ditherer         ditherer.Kind
	colorSpace       colorspace.ColorSpace
	logger           *Logger
	metricsCollector MetricsCollector
	parallelism      int
}

// Option configures Quantize and BuildPalette.
type Option func(*options)

// WithColors sets the target palette size. It must be in [1, 256].
//
// The resulting palette may be smaller when the image has fewer distinct
// colors.
func WithColors(n int) Option {
	return func(o *options) {
		o.colors = n
	}
}

// WithLevel sets the optimization level.
//
// If not set, DefaultLevel(colors) is used.
func WithLevel(l Level) Option {
	return func(o *options) {
		o.level = &l
	}
}

// WithDitherer selects the ditherer used during remapping.
// The default is ditherer.FloydSteinbergCheckered.
func WithDitherer(k ditherer.Kind) Option {
	return func(o *options) {
		o.ditherer = k
	}
}

// WithColorSpace replaces the color space used for all distance
// computations.
//
// If nil is passed, colorspace.Default() is used.
func WithColorSpace(cs colorspace.ColorSpace) Option {
	return func(o *options) {
		if cs == nil {
			cs = colorspace.Default()
		}
		o.colorSpace = cs
	}
}

// WithLogger configures a structured logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithParallelism sets the number of goroutines used for k-means
// reassignment. Results do not depend on the value.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{
		colors:           DefaultColors,
		ditherer:         ditherer.FloydSteinbergCheckered,
		colorSpace:       colorspace.Default(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		parallelism:      1,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.colors < 1 || o.colors > remapper.MaxColors {
		return nil, &ConfigError{Field: "colors", Value: o.colors}
	}
	if o.level == nil {
		l := DefaultLevel(o.colors)
		o.level = &l
	}
	if err := o.level.validate(); err != nil {
		return nil, err
	}
	if _, err := ditherer.New(o.ditherer); err != nil {
		return nil, &ConfigError{Field: "ditherer", Value: o.ditherer, cause: err}
	}
	if o.parallelism < 1 {
		return nil, &ConfigError{Field: "parallelism", Value: o.parallelism}
	}
	return o, nil
}
