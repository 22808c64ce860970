package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/palq"
	"github.com/hupe1980/palq/blobstore"
	"github.com/hupe1980/palq/codec"
	"github.com/hupe1980/palq/imageio"
	"github.com/hupe1980/palq/internal/resource"
	"github.com/hupe1980/palq/pqx"
)

// Job describes a batch run.
type Job struct {
	// Prefix selects the source blobs. Output names keep the part after it.
	Prefix string

	// Options are passed to every palq.Quantize call.
	Options []palq.Option

	// Format of the written images.
	Format imageio.Format

	// PQXCompression is used when Format is imageio.PQX. The zero value
	// stores indices uncompressed.
	PQXCompression pqx.Compression

	// Compact drops unused palette entries before encoding.
	Compact bool

	// Workers is the number of images processed at once. Defaults to 1.
	Workers int

	// MemoryLimitBytes caps the decoded pixel bytes in flight. 0 is unlimited.
	MemoryLimitBytes int64

	// IOLimitBytesPerSec throttles blob reads and writes. 0 is unlimited.
	IOLimitBytesPerSec int64

	// ReportName, if set, is the name the JSON report is written to in dst.
	ReportName string

	// Logger receives one line per image. Defaults to palq.NoopLogger().
	Logger *palq.Logger
}

// Item is the outcome for one source image.
type Item struct {
	Source   string      `json:"source"`
	Output   string      `json:"output,omitempty"`
	Format   string      `json:"format,omitempty"`
	Stats    *palq.Stats `json:"stats,omitempty"`
	Duration string      `json:"duration"`
	Error    string      `json:"error,omitempty"`

	err error
}

// Report summarizes a batch run. Items are in source name order.
type Report struct {
	Items     []Item `json:"items"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Err returns an error listing the failed sources, or nil.
func (r *Report) Err() error {
	var errs []error
	for _, it := range r.Items {
		if it.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Source, it.err))
		}
	}
	return errors.Join(errs...)
}

var extensions = map[string]bool{
	".png": true, ".gif": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".pqx": true,
}

// IsImage reports whether name has an extension Run picks up.
func IsImage(name string) bool {
	return extensions[strings.ToLower(path.Ext(name))]
}

// OutputName maps a source name to its output name for format f.
func OutputName(name, prefix string, f imageio.Format) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")
	return strings.TrimSuffix(rel, path.Ext(rel)) + f.Ext()
}

// Run quantizes every image in src whose name starts with job.Prefix.
//
// It returns an error only when the run itself fails: listing src,
// cancellation or writing the report.
func Run(ctx context.Context, src, dst blobstore.BlobStore, job Job) (*Report, error) {
	if job.Workers <= 0 {
		job.Workers = 1
	}
	if job.Logger == nil {
		job.Logger = palq.NoopLogger()
	}

	names, err := src.List(ctx, job.Prefix)
	if err != nil {
		return nil, fmt.Errorf("batch: list %q: %w", job.Prefix, err)
	}
	var sources []string
	for _, name := range names {
		if IsImage(name) {
			sources = append(sources, name)
		}
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers:         int64(job.Workers),
		MemoryLimitBytes:   job.MemoryLimitBytes,
		IOLimitBytesPerSec: job.IOLimitBytesPerSec,
	})

	p := &processor{src: src, dst: dst, job: job, rc: rc}
	items := make([]Item, len(sources))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(job.Workers)
	for i, name := range sources {
		g.Go(func() error {
			start := time.Now()
			items[i] = p.process(gctx, name)
			items[i].Duration = time.Since(start).String()

			logger := job.Logger.WithName(name)
			if items[i].Error != "" {
				failed.Add(1)
				logger.WarnContext(gctx, "image failed", "error", items[i].Error)
			} else {
				logger.InfoContext(gctx, "image quantized",
					"output", items[i].Output,
					"palette_size", items[i].Stats.PaletteSize,
					"memory_in_flight", rc.MemoryUsage(),
				)
			}

			// cancellation aborts the run; per-image errors do not
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Items:     items,
		Failed:    int(failed.Load()),
		Succeeded: len(items) - int(failed.Load()),
	}

	if job.ReportName != "" {
		data, err := codec.MarshalReport(report)
		if err != nil {
			return nil, err
		}
		if err := dst.Put(ctx, job.ReportName, data); err != nil {
			return nil, fmt.Errorf("batch: write report: %w", err)
		}
	}

	job.Logger.InfoContext(ctx, "batch completed",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)
	return report, nil
}

type processor struct {
	src blobstore.BlobStore
	dst blobstore.BlobStore
	job Job
	rc  *resource.Controller
}

func (p *processor) process(ctx context.Context, name string) Item {
	item := Item{Source: name}

	out, stats, err := p.quantize(ctx, name)
	if err != nil {
		item.Error = err.Error()
		item.err = err
		return item
	}

	item.Output = out
	item.Format = p.job.Format.String()
	item.Stats = stats
	return item
}

func (p *processor) quantize(ctx context.Context, name string) (string, *palq.Stats, error) {
	data, err := p.read(ctx, name)
	if err != nil {
		return "", nil, err
	}

	cfg, err := imageio.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	// pixels plus one index byte per pixel
	release, err := p.rc.Admit(ctx, int64(cfg.Pixels())*5)
	if err != nil {
		return "", nil, err
	}
	defer release()

	img, _, err := imageio.DecodeBytes(data)
	if err != nil {
		return "", nil, err
	}

	res, err := palq.Quantize(ctx, img, p.job.Options...)
	if err != nil {
		return "", nil, err
	}
	if p.job.Compact {
		res = res.Compact()
	}
	stats := res.Stats(img, nil)

	var encoded bytes.Buffer
	w := resource.NewRateLimitedWriter(ctx, &encoded, p.rc)
	if err := imageio.Encode(w, res, p.job.Format, func(o *imageio.Options) {
		o.PQXCompression = p.job.PQXCompression
	}); err != nil {
		return "", nil, err
	}

	out := OutputName(name, p.job.Prefix, p.job.Format)
	if err := p.dst.Put(ctx, out, encoded.Bytes()); err != nil {
		return "", nil, err
	}

	return out, &stats, nil
}

func (p *processor) read(ctx context.Context, name string) ([]byte, error) {
	b, err := p.src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	r, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(resource.NewRateLimitedReader(ctx, r, p.rc))
}
