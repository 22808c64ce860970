// Package batch quantizes every image under a prefix of one blob store and
// writes the results to another.
//
//	src := blobstore.NewLocalStore("./photos")
//	dst := blobstore.NewLocalStore("./indexed")
//
//	report, err := batch.Run(ctx, src, dst, batch.Job{
//	    Options: []palq.Option{palq.WithColors(64)},
//	    Format:  imageio.PNG,
//	    Workers: 4,
//	})
//
// Images are processed concurrently, each with its own ditherer state.
// MemoryLimitBytes bounds the decoded pixels held at once and
// IOLimitBytesPerSec throttles reads and writes. A failing image is
// recorded in the report and does not stop the run.
package batch
