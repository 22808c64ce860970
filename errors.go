package palq

import (
	"errors"
	"fmt"

	"github.com/hupe1980/palq/quantizer"
	"github.com/hupe1980/palq/remapper"
)

var (
	// ErrInvalidConfiguration is returned when an option is out of range or
	// names an unknown optimizer or ditherer.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyInput is returned when the image has no pixels.
	ErrEmptyInput = errors.New("empty input")
)

// ConfigError describes a rejected configuration value.
//
// errors.Is(err, ErrInvalidConfiguration) reports true for every ConfigError.
type ConfigError struct {
	Field string
	Value any
	cause error
}

func (e *ConfigError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.cause)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// Is reports whether target is ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

func (e *ConfigError) Unwrap() error { return e.cause }

// ImageError describes an image whose buffer does not match its geometry.
type ImageError struct {
	Width  int
	Height int
	Bytes  int
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("invalid image: %dx%d needs %d bytes, got %d", e.Width, e.Height, e.Width*e.Height*4, e.Bytes)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, quantizer.ErrEmptyHistogram) {
		return fmt.Errorf("%w: %w", ErrEmptyInput, err)
	}
	if errors.Is(err, remapper.ErrEmptyPalette) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if errors.Is(err, remapper.ErrInvalidGeometry) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return err
}
