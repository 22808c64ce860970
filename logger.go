package palq

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with quantizer specific helpers.
// Field names are consistent across all operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000),
		})),
	}
}

// WithImage adds the image geometry to the logger.
func (l *Logger) WithImage(width, height int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width, "height", height),
	}
}

// WithColors adds the target palette size to the logger.
func (l *Logger) WithColors(colors int) *Logger {
	return &Logger{
		Logger: l.Logger.With("colors", colors),
	}
}

// WithName adds an image name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogGrowth logs a refinement pass during palette growth.
func (l *Logger) LogGrowth(ctx context.Context, colors int, totalError float64) {
	l.DebugContext(ctx, "palette refined",
		"palette_size", colors,
		"total_error", totalError,
	)
}

// LogQuantize logs a completed or failed quantization.
func (l *Logger) LogQuantize(ctx context.Context, level Level, paletteSize int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "quantize failed",
			"level", level.String(),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "quantize completed",
			"level", level.String(),
			"palette_size", paletteSize,
			"duration", duration,
		)
	}
}

// LogRemap logs a remap pass.
func (l *Logger) LogRemap(ctx context.Context, ditherer string, pixels int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remap failed",
			"ditherer", ditherer,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remap completed",
			"ditherer", ditherer,
			"pixels", pixels,
		)
	}
}
