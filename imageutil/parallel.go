package imageutil

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelPixels is the buffer area below which passes stay on the
// calling goroutine.
const minParallelPixels = 128 * 128

// forEachRowBand calls fn over contiguous [y0, y1) row bands covering
// [0, height). Bands run concurrently when the image is large enough; fn
// must only write rows inside its band.
func forEachRowBand(width, height int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 || width*height < minParallelPixels || height < 2 {
		fn(0, height)
		return
	}
	if workers > height {
		workers = height
	}

	band := (height + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	// Bands never fail; Wait only joins them.
	_ = g.Wait()
}
