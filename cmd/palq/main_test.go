package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/palq"
	"github.com/hupe1980/palq/codec"
	"github.com/hupe1980/palq/imageio"
	"github.com/hupe1980/palq/testutil"
)

func testPNG(t *testing.T, seed int64) (palq.Image, []byte) {
	t.Helper()

	rng := testutil.NewRNG(seed)
	img := palq.Image{Pix: rng.PalettePixels(6, 5, rng.Colors(3)), Width: 6, Height: 5}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img.NRGBA()))
	return img, buf.Bytes()
}

func runArgs(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, bytes.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestQuantizeFile(t *testing.T) {
	dir := t.TempDir()
	img, data := testPNG(t, 1)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	report := filepath.Join(dir, "stats.json")
	require.NoError(t, os.WriteFile(in, data, 0o644))

	_, _, err := runArgs(t, nil, "-O", "c3", "-d", "fs", "-report", report, "8", in, out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	paletted, ok := decoded.(*image.Paletted)
	require.True(t, ok)
	assert.Len(t, paletted.Palette, 3)
	assert.Equal(t, img.Pix, palq.ImageFrom(decoded).Pix)

	raw, err := os.ReadFile(report)
	require.NoError(t, err)

	var stats quantizeReport
	require.NoError(t, codec.Default.Unmarshal(raw, &stats))
	assert.Equal(t, "png", stats.Format)
	assert.Equal(t, 3, stats.Stats.PaletteSize)
	assert.Equal(t, 6, stats.Stats.Width)
	assert.Zero(t, stats.Stats.MeanSquaredError)
}

func TestQuantizeStdio(t *testing.T) {
	img, data := testPNG(t, 2)

	stdout, _, err := runArgs(t, data, "4", "-", "-")
	require.NoError(t, err)

	got, format, err := imageio.DecodeBytes([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestQuantizeFormatFlag(t *testing.T) {
	img, data := testPNG(t, 3)

	stdout, _, err := runArgs(t, data, "-f", "pqx", "-compression", "lz4", "-compact", "16", "-", "-")
	require.NoError(t, err)

	got, format, err := imageio.DecodeBytes([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, "pqx", format)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestQuantizeVerbose(t *testing.T) {
	_, data := testPNG(t, 4)

	_, stderr, err := runArgs(t, data, "-v", "2", "-", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "quantize completed")
}

func TestQuantizeUsageErrors(t *testing.T) {
	_, data := testPNG(t, 5)

	tests := []struct {
		name string
		args []string
	}{
		{"missing args", []string{"4", "-"}},
		{"zero colors", []string{"0", "-", "-"}},
		{"too many colors", []string{"257", "-", "-"}},
		{"not a number", []string{"many", "-", "-"}},
		{"bad level", []string{"-O", "s4", "4", "-", "-"}},
		{"bad ditherer", []string{"-d", "atkinson", "4", "-", "-"}},
		{"bad format", []string{"-f", "jpeg", "4", "-", "-"}},
		{"bad compression", []string{"-compression", "gzip", "4", "-", "-"}},
		{"unknown flag", []string{"-x", "4", "-", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runArgs(t, data, tt.args...)
			require.ErrorIs(t, err, errUsage)
			assert.Empty(t, stdout)
		})
	}
}

func TestQuantizeHelp(t *testing.T) {
	_, stderr, err := runArgs(t, nil, "-h")
	require.NoError(t, err)
	assert.Contains(t, stderr, "NUM_COLORS INPUT OUTPUT")
}

func TestQuantizeBadInput(t *testing.T) {
	_, _, err := runArgs(t, []byte("garbage"), "4", "-", "-")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)

	_, _, err = runArgs(t, nil, "4", filepath.Join(t.TempDir(), "missing.png"), "-")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBatchLocal(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	imgA, dataA := testPNG(t, 6)
	_, dataB := testPNG(t, 7)
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), dataA, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.png"), dataB, 0o644))

	_, stderr, err := runArgs(t, nil, "batch", "-f", "tiff", "-workers", "2", "-report", "report.json", "4", src, dst)
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 succeeded, 0 failed")

	raw, err := os.ReadFile(filepath.Join(dst, "a.tiff"))
	require.NoError(t, err)
	got, format, err := imageio.DecodeBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "tiff", format)
	assert.Equal(t, imgA.Pix, got.Pix)

	assert.FileExists(t, filepath.Join(dst, "sub", "b.tiff"))
	assert.FileExists(t, filepath.Join(dst, "report.json"))
}

func TestBatchFailure(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("nope"), 0o644))

	_, stderr, err := runArgs(t, nil, "batch", "4", src, t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken.png")
	assert.Contains(t, stderr, "0 succeeded, 1 failed")
}

func TestBatchUnknownStore(t *testing.T) {
	_, _, err := runArgs(t, nil, "batch", "-store", "ftp", "4", "a", "b")
	assert.ErrorIs(t, err, errUsage)
}
