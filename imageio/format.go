package imageio

import (
	"fmt"
	"path"
	"strings"
)

// Format is an output container.
type Format int

const (
	// PNG writes an 8-bit paletted PNG.
	PNG Format = iota
	// BMP writes an 8-bit paletted BMP. Alpha is dropped.
	BMP
	// TIFF writes a deflate-compressed paletted TIFF.
	TIFF
	// PQX writes the palette and raw indices, see package pqx.
	PQX
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	case PQX:
		return "pqx"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Ext returns the canonical file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat parses a format name as printed by Format.String. "tif" is
// accepted as an alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "pqx":
		return PQX, nil
	default:
		return 0, fmt.Errorf("imageio: unknown format %q", s)
	}
}

// FormatFromPath picks the output format from the file extension. Paths
// without an extension, including "-", map to PNG.
func FormatFromPath(p string) (Format, error) {
	ext := path.Ext(strings.ReplaceAll(p, "\\", "/"))
	if ext == "" {
		return PNG, nil
	}
	return ParseFormat(ext[1:])
}
