package pqx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/palq/colorspace"
)

// Magic identifies a PQX stream.
const Magic = "PQX1"

const headerSize = 16

var (
	// ErrFormat is returned when the input is not a PQX stream.
	ErrFormat = errors.New("pqx: not a PQX stream")
	// ErrCorrupt is returned when a PQX stream is internally inconsistent.
	ErrCorrupt = errors.New("pqx: corrupt stream")
)

// Image is an indexed image.
type Image struct {
	Width   int
	Height  int
	Palette colorspace.Palette
	Indices []uint8
}

func (img *Image) validate() error {
	if img.Width < 0 || img.Height < 0 || img.Width > 1<<31-1 || img.Height > 1<<31-1 {
		return fmt.Errorf("pqx: invalid geometry %dx%d", img.Width, img.Height)
	}
	if len(img.Palette) == 0 || len(img.Palette) > 256 {
		return fmt.Errorf("pqx: palette has %d colors", len(img.Palette))
	}
	if len(img.Indices) != img.Width*img.Height {
		return fmt.Errorf("pqx: %d indices for %dx%d", len(img.Indices), img.Width, img.Height)
	}
	for i, idx := range img.Indices {
		if int(idx) >= len(img.Palette) {
			return fmt.Errorf("pqx: index %d at pixel %d out of range", idx, i)
		}
	}
	return nil
}

// Encode writes img to w.
func Encode(w io.Writer, img *Image, c Compression) error {
	if err := img.validate(); err != nil {
		return err
	}

	block, err := compressBlock(img.Indices, c)
	if err != nil {
		return err
	}

	buf := make([]byte, headerSize, headerSize+4*len(img.Palette)+len(block))
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(img.Width))
	binary.LittleEndian.PutUint32(buf[8:], uint32(img.Height))
	binary.LittleEndian.PutUint16(buf[12:], uint16(len(img.Palette)))
	buf[14] = byte(c)

	for _, col := range img.Palette {
		buf = append(buf, col.R, col.G, col.B, col.A)
	}
	buf = append(buf, block...)

	_, err = w.Write(buf)
	return err
}

// Marshal returns the encoding of img.
func Marshal(img *Image, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Config is the part of a PQX stream that precedes the index block.
type Config struct {
	Width       int
	Height      int
	Palette     colorspace.Palette
	Compression Compression
}

// pixels returns Width*Height, or an error if it cannot match a block size.
func (cfg Config) pixels() (int, error) {
	n := uint64(cfg.Width) * uint64(cfg.Height)
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %dx%d exceeds the block size limit", ErrCorrupt, cfg.Width, cfg.Height)
	}
	return int(n), nil
}

// parseHeader reads the fixed header and returns the palette size.
func parseHeader(head []byte) (Config, int, error) {
	if len(head) < headerSize || string(head[:4]) != Magic {
		return Config{}, 0, ErrFormat
	}

	cfg := Config{
		Width:       int(binary.LittleEndian.Uint32(head[4:])),
		Height:      int(binary.LittleEndian.Uint32(head[8:])),
		Compression: Compression(head[14]),
	}
	colors := int(binary.LittleEndian.Uint16(head[12:]))
	if colors == 0 || colors > 256 {
		return Config{}, 0, fmt.Errorf("%w: %d palette colors", ErrCorrupt, colors)
	}
	return cfg, colors, nil
}

func parsePalette(data []byte, colors int) (colorspace.Palette, error) {
	if len(data) < 4*colors {
		return nil, fmt.Errorf("%w: truncated palette", ErrCorrupt)
	}
	palette := make(colorspace.Palette, colors)
	for i := range palette {
		p := data[4*i:]
		palette[i] = colorspace.RGBA(p[0], p[1], p[2], p[3])
	}
	return palette, nil
}

// DecodeConfig reads the header and palette of a PQX stream without
// touching the index block.
func DecodeConfig(r io.Reader) (Config, error) {
	head := make([]byte, headerSize)
	if _, err := io.ReadFull(r, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Config{}, ErrFormat
		}
		return Config{}, err
	}

	cfg, colors, err := parseHeader(head)
	if err != nil {
		return Config{}, err
	}

	raw := make([]byte, 4*colors)
	if _, err := io.ReadFull(r, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Config{}, fmt.Errorf("%w: truncated palette", ErrCorrupt)
		}
		return Config{}, err
	}
	if cfg.Palette, err = parsePalette(raw, colors); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads a PQX stream.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal parses a PQX stream held in memory.
func Unmarshal(data []byte) (*Image, error) {
	cfg, colors, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if cfg.Palette, err = parsePalette(data[headerSize:], colors); err != nil {
		return nil, err
	}
	pixels, err := cfg.pixels()
	if err != nil {
		return nil, err
	}

	indices, _, err := decompressBlock(data[headerSize+4*colors:], cfg.Compression, pixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	img := &Image{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Palette: cfg.Palette,
		Indices: bytes.Clone(indices),
	}
	if err := img.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return img, nil
}
