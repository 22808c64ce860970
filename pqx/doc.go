// Package pqx implements PQX, a minimal container for indexed images.
//
// A PQX file stores the palette and the raw index plane, optionally
// compressed. It is meant for pipelines that consume palette indices
// directly (texture atlases, embedded displays) and would otherwise have
// to re-decode a PNG.
//
// # Layout
//
// All integers are little endian.
//
//	magic        [4]byte  "PQX1"
//	width        uint32
//	height       uint32
//	colors       uint16   palette entries, 1..256
//	compression  uint8    0 none, 1 lz4, 2 zstd
//	reserved     uint8
//	palette      [colors][4]byte RGBA
//	block        [uncompressed uint32][compressed uint32][data]
//
// A block whose compressed size is 0 holds the index plane verbatim. The
// encoder falls back to that form when compression saves less than 10%.
package pqx
