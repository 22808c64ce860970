// Command palq reduces images to an indexed palette of at most 256 colors.
//
// Usage:
//
//	palq [options] NUM_COLORS INPUT OUTPUT        quantize one image ("-" for stdin/stdout)
//	palq batch [options] NUM_COLORS SRC DST       quantize every image under SRC into DST
//
// The output format follows the OUTPUT extension (png, bmp, tif/tiff, pqx)
// unless -f is given. Standard output is written as PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/palq"
	"github.com/hupe1980/palq/batch"
	"github.com/hupe1980/palq/blobstore"
	miniostore "github.com/hupe1980/palq/blobstore/minio"
	"github.com/hupe1980/palq/codec"
	"github.com/hupe1980/palq/ditherer"
	"github.com/hupe1980/palq/imageio"
	"github.com/hupe1980/palq/pqx"
)

// errUsage marks argument errors; main exits with status 2 for them.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "palq: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "palq: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "batch" {
		return runBatch(ctx, args[1:], stderr)
	}
	return runQuantize(ctx, args, stdin, stdout, stderr)
}

func printUsage(fs *flag.FlagSet, usage string) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
}

// common holds the flags shared by both commands.
type common struct {
	level       string
	dither      string
	format      string
	compression string
	compact     bool
	verbose     bool
	parallelism int
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.level, "O", "", "optimization level: 0, s1-s3 or c1-c3 (default depends on NUM_COLORS)")
	fs.StringVar(&c.dither, "d", ditherer.FloydSteinbergCheckered.String(), "ditherer: none, ordered, fs or fs-checkered")
	fs.StringVar(&c.format, "f", "", "output format: png, bmp, tiff or pqx")
	fs.StringVar(&c.compression, "compression", pqx.CompressionZSTD.String(), "pqx index compression: none, lz4 or zstd")
	fs.BoolVar(&c.compact, "compact", false, "drop unused palette entries")
	fs.BoolVar(&c.verbose, "v", false, "log progress to stderr")
	fs.IntVar(&c.parallelism, "j", runtime.GOMAXPROCS(0), "goroutines used for k-means refinement")
}

func (c *common) logger(stderr io.Writer) *palq.Logger {
	if !c.verbose {
		return palq.NoopLogger()
	}
	return palq.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (c *common) options(colors int, logger *palq.Logger) ([]palq.Option, error) {
	opts := []palq.Option{
		palq.WithColors(colors),
		palq.WithParallelism(c.parallelism),
		palq.WithLogger(logger),
	}

	if c.level != "" {
		l, err := palq.ParseLevel(c.level)
		if err != nil {
			return nil, fmt.Errorf("%w: -O: %w", errUsage, err)
		}
		opts = append(opts, palq.WithLevel(l))
	}

	d, err := ditherer.Parse(c.dither)
	if err != nil {
		return nil, fmt.Errorf("%w: -d: %w", errUsage, err)
	}
	return append(opts, palq.WithDitherer(d)), nil
}

func (c *common) pqxCompression() (pqx.Compression, error) {
	comp, err := pqx.ParseCompression(c.compression)
	if err != nil {
		return 0, fmt.Errorf("%w: -compression: %w", errUsage, err)
	}
	return comp, nil
}

func parseColors(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 256 {
		return 0, fmt.Errorf("%w: NUM_COLORS must be an integer in [1, 256], got %q", errUsage, s)
	}
	return n, nil
}

// --- quantize ---

func runQuantize(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	const usage = "palq [options] NUM_COLORS INPUT OUTPUT"

	fs := flag.NewFlagSet("palq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = printUsage(fs, usage)

	var c common
	c.register(fs)
	report := fs.String("report", "", "write JSON statistics to this file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	input, output := fs.Arg(1), fs.Arg(2)

	colors, err := parseColors(fs.Arg(0))
	if err != nil {
		return err
	}
	logger := c.logger(stderr)
	opts, err := c.options(colors, logger)
	if err != nil {
		return err
	}
	comp, err := c.pqxCompression()
	if err != nil {
		return err
	}

	format, err := imageio.FormatFromPath(output)
	if c.format != "" {
		format, err = imageio.ParseFormat(c.format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	start := time.Now()

	img, err := readImage(input, stdin)
	if err != nil {
		return err
	}

	res, err := palq.Quantize(ctx, img, opts...)
	if err != nil {
		return err
	}
	if c.compact {
		res = res.Compact()
	}

	data, err := imageio.EncodeBytes(res, format, func(o *imageio.Options) {
		o.PQXCompression = comp
	})
	if err != nil {
		return err
	}
	if err := writeOutput(output, data, stdout); err != nil {
		return err
	}

	if *report != "" {
		return writeReport(*report, quantizeReport{
			Input:    input,
			Output:   output,
			Format:   format.String(),
			Stats:    res.Stats(img, nil),
			Duration: time.Since(start).String(),
		})
	}
	return nil
}

type quantizeReport struct {
	Input    string     `json:"input"`
	Output   string     `json:"output"`
	Format   string     `json:"format"`
	Stats    palq.Stats `json:"stats"`
	Duration string     `json:"duration"`
}

func readImage(name string, stdin io.Reader) (palq.Image, error) {
	if name == "-" {
		img, _, err := imageio.Decode(stdin)
		return img, err
	}

	f, err := os.Open(name)
	if err != nil {
		return palq.Image{}, err
	}
	defer f.Close()

	img, _, err := imageio.Decode(f)
	if err != nil {
		return palq.Image{}, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

func writeOutput(name string, data []byte, stdout io.Writer) error {
	if name == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func writeReport(name string, v any) error {
	data, err := codec.MarshalReport(v)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

// --- batch ---

func runBatch(ctx context.Context, args []string, stderr io.Writer) error {
	const usage = "palq batch [options] NUM_COLORS SRC DST"

	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = printUsage(fs, usage)

	var c common
	c.register(fs)
	prefix := fs.String("prefix", "", "only process source names with this prefix")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "images processed at once")
	memory := fs.Int64("mem", 0, "max decoded pixel bytes in flight (0 = unlimited)")
	ioLimit := fs.Int64("io", 0, "max read/write bytes per second (0 = unlimited)")
	report := fs.String("report", "", "write the JSON report under this name in DST")
	store := fs.String("store", "local", "blob store for SRC and DST: local or minio")
	endpoint := fs.String("endpoint", os.Getenv("PALQ_MINIO_ENDPOINT"), "minio endpoint (host:port)")
	accessKey := fs.String("access-key", os.Getenv("PALQ_MINIO_ACCESS_KEY"), "minio access key")
	secretKey := fs.String("secret-key", os.Getenv("PALQ_MINIO_SECRET_KEY"), "minio secret key")
	secure := fs.Bool("secure", true, "use TLS for minio")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	if c.format == "" {
		c.format = imageio.PNG.String()
	}

	colors, err := parseColors(fs.Arg(0))
	if err != nil {
		return err
	}
	logger := c.logger(stderr)
	// images already run concurrently
	c.parallelism = 1
	opts, err := c.options(colors, logger)
	if err != nil {
		return err
	}
	comp, err := c.pqxCompression()
	if err != nil {
		return err
	}
	format, err := imageio.ParseFormat(c.format)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	var src, dst blobstore.BlobStore
	switch *store {
	case "local":
		src = blobstore.NewLocalStore(fs.Arg(1))
		dst = blobstore.NewLocalStore(fs.Arg(2))
	case "minio":
		client, err := minio.New(*endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(*accessKey, *secretKey, ""),
			Secure: *secure,
		})
		if err != nil {
			return err
		}
		src = newMinioStore(client, fs.Arg(1))
		dst = newMinioStore(client, fs.Arg(2))
	default:
		return fmt.Errorf("%w: unknown store %q", errUsage, *store)
	}

	res, err := batch.Run(ctx, src, dst, batch.Job{
		Prefix:             *prefix,
		Options:            opts,
		Format:             format,
		PQXCompression:     comp,
		Compact:            c.compact,
		Workers:            *workers,
		MemoryLimitBytes:   *memory,
		IOLimitBytesPerSec: *ioLimit,
		ReportName:         *report,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "%d succeeded, %d failed\n", res.Succeeded, res.Failed)
	return res.Err()
}

// newMinioStore maps "bucket/root/prefix" to a store.
func newMinioStore(client *minio.Client, location string) *miniostore.Store {
	bucket, root, _ := strings.Cut(location, "/")
	return miniostore.NewStore(client, bucket, root)
}
