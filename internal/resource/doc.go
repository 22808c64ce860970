// Package resource bounds the work a batch run keeps in flight.
//
// A Controller limits three things:
//
//   - Workers: images quantized at the same time (weighted semaphore)
//   - Memory: resident pixel bytes of admitted images (weighted semaphore)
//   - IO: bytes per second read from and written to blob stores (token bucket)
//
// Admit combines the first two:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:       4,
//	    MemoryLimitBytes: 512 << 20,
//	})
//
//	release, err := rc.Admit(ctx, int64(w*h*4))
//	if err != nil {
//	    return err
//	}
//	defer release()
//
// An image larger than the whole memory budget is admitted alone once every
// other image has released its share.
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
