package pqx

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/palq/colorspace"
)

func testImage(width, height int) *Image {
	palette := colorspace.Palette{
		colorspace.RGBA(0, 0, 0, 255),
		colorspace.RGBA(255, 255, 255, 255),
		colorspace.RGBA(200, 10, 10, 128),
	}
	indices := make([]uint8, width*height)
	for i := range indices {
		// long runs compress well
		indices[i] = uint8((i / 64) % len(palette))
	}
	return &Image{Width: width, Height: height, Palette: palette, Indices: indices}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			img := testImage(64, 48)

			data, err := Marshal(img, c)
			require.NoError(t, err)

			got, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, img, got)
		})
	}
}

func TestCompressionShrinksRuns(t *testing.T) {
	img := testImage(256, 256)

	plain, err := Marshal(img, CompressionNone)
	require.NoError(t, err)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		packed, err := Marshal(img, c)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(plain)/4, c.String())
	}
}

func TestIncompressibleStoredVerbatim(t *testing.T) {
	palette := make(colorspace.Palette, 256)
	for i := range palette {
		palette[i] = colorspace.RGBA(uint8(i), 0, 0, 255)
	}
	// xorshift noise
	indices := make([]uint8, 4096)
	x := uint32(2463534242)
	for i := range indices {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		indices[i] = uint8(x)
	}
	img := &Image{Width: 64, Height: 64, Palette: palette, Indices: indices}

	data, err := Marshal(img, CompressionLZ4)
	require.NoError(t, err)

	assert.Len(t, data, headerSize+4*256+blockHeaderSize+4096)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, indices, got.Indices)
}

func TestHeader(t *testing.T) {
	data, err := Marshal(testImage(3, 2), CompressionNone)
	require.NoError(t, err)

	assert.Equal(t, []byte("PQX1"), data[:4])
	assert.Equal(t, []byte{3, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}, data[4:16])
	assert.Equal(t, []byte{0, 0, 0, 255}, data[16:20])
}

func TestEncodeValidates(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"empty palette", &Image{Width: 1, Height: 1, Indices: []uint8{0}}},
		{"geometry", &Image{Width: 2, Height: 2, Palette: colorspace.Palette{{}}, Indices: []uint8{0}}},
		{"index out of range", &Image{Width: 1, Height: 1, Palette: colorspace.Palette{{}}, Indices: []uint8{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Encode(&bytes.Buffer{}, tt.img, CompressionNone))
		})
	}

	assert.Error(t, Encode(&bytes.Buffer{}, testImage(1, 1), Compression(9)))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("PNG\x00 not pqx at all"))
	assert.ErrorIs(t, err, ErrFormat)

	data, err := Marshal(testImage(16, 16), CompressionZSTD)
	require.NoError(t, err)

	_, err = Unmarshal(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := bytes.Clone(data)
	bad[12] = 0
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrCorrupt)

	// geometry no longer matches the index count
	bad = bytes.Clone(data)
	bad[4] = 17
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, "Unknown(7)", Compression(7).String())
}

// stream builds a 1x1 PQX stream whose block header claims size bytes.
func stream(c Compression, size uint32, payload []byte) []byte {
	data := []byte(Magic)
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = binary.LittleEndian.AppendUint16(data, 1)
	data = append(data, byte(c), 0)
	data = append(data, 10, 20, 30, 255)
	data = binary.LittleEndian.AppendUint32(data, size)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(payload)))
	return append(data, payload...)
}

func TestUnmarshalRejectsOversizedBlock(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data := stream(c, 1<<30, []byte{1, 2, 3, 4})

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := Unmarshal(data)
			runtime.ReadMemStats(&after)

			require.ErrorIs(t, err, ErrCorrupt)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
		})
	}
}

func TestUnmarshalRejectsOversizedGeometry(t *testing.T) {
	data := stream(CompressionNone, 1, []byte{0})
	binary.LittleEndian.PutUint32(data[4:], 1<<31)
	binary.LittleEndian.PutUint32(data[8:], 1<<31)

	_, err := Unmarshal(data)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeConfig(t *testing.T) {
	img := testImage(20, 10)
	data, err := Marshal(img, CompressionLZ4)
	require.NoError(t, err)

	// the index block is never read
	cfg, err := DecodeConfig(bytes.NewReader(data[:headerSize+4*len(img.Palette)]))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Width:       20,
		Height:      10,
		Palette:     img.Palette,
		Compression: CompressionLZ4,
	}, cfg)

	_, err = DecodeConfig(bytes.NewReader(data[:headerSize+2]))
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = DecodeConfig(bytes.NewReader([]byte("PQ")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = DecodeConfig(bytes.NewReader([]byte("GIF89a-and-more-bytes")))
	assert.ErrorIs(t, err, ErrFormat)
}
