package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	// decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hupe1980/palq"
	"github.com/hupe1980/palq/pqx"
)

func init() {
	image.RegisterFormat("pqx", pqx.Magic, decodePQX, decodePQXConfig)
}

// Decode reads an image in any supported format and returns its pixels as
// non-premultiplied RGBA, together with the detected format name.
func Decode(r io.Reader) (palq.Image, string, error) {
	src, name, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return palq.Image{}, "", fmt.Errorf("imageio: decode: %w", err)
	}
	return palq.ImageFrom(src), name, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (palq.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// Config is the geometry of an encoded image.
type Config struct {
	Width  int
	Height int
	Format string
}

// Pixels returns the number of pixels.
func (c Config) Pixels() int { return c.Width * c.Height }

// DecodeConfig reads only the image header.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg, name, err := image.DecodeConfig(bufio.NewReader(r))
	if err != nil {
		return Config{}, fmt.Errorf("imageio: decode config: %w", err)
	}
	return Config{Width: cfg.Width, Height: cfg.Height, Format: name}, nil
}

// Options tune the encoders.
type Options struct {
	// PQXCompression selects the index block codec of PQX output.
	PQXCompression pqx.Compression
}

// Encode writes res to w in format f.
func Encode(w io.Writer, res *palq.Result, f Format, optFns ...func(o *Options)) error {
	opts := Options{PQXCompression: pqx.CompressionZSTD}
	for _, fn := range optFns {
		fn(&opts)
	}

	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, res.Paletted())
	case BMP:
		return bmp.Encode(w, res.Paletted())
	case TIFF:
		return tiff.Encode(w, res.Paletted(), &tiff.Options{Compression: tiff.Deflate})
	case PQX:
		return pqx.Encode(w, &pqx.Image{
			Width:   res.Width,
			Height:  res.Height,
			Palette: res.Palette,
			Indices: res.Indices,
		}, opts.PQXCompression)
	default:
		return fmt.Errorf("imageio: unknown format %v", f)
	}
}

// EncodeBytes is Encode into a new buffer.
func EncodeBytes(res *palq.Result, f Format, optFns ...func(o *Options)) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, res, f, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePQX(r io.Reader) (image.Image, error) {
	img, err := pqx.Decode(r)
	if err != nil {
		return nil, err
	}
	return &image.Paletted{
		Pix:     img.Indices,
		Stride:  img.Width,
		Rect:    image.Rect(0, 0, img.Width, img.Height),
		Palette: img.Palette.ColorPalette(),
	}, nil
}

func decodePQXConfig(r io.Reader) (image.Config, error) {
	cfg, err := pqx.DecodeConfig(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: cfg.Palette.ColorPalette(),
		Width:      cfg.Width,
		Height:     cfg.Height,
	}, nil
}
