package imageutil

import "fmt"

// remap builds a width x height buffer where each destination (row, col)
// copies the source pixel returned by src.
func remap(img *Buffer, width, height int, src func(row, col int) (int, int)) *Buffer {
	dst := newBuffer(width, height)
	for y := 0; y < height; y++ {
		out := dst.rowPix(y)
		for x := 0; x < width; x++ {
			sy, sx := src(y, x)
			i := sy*img.Stride + sx*4
			copy(out[x*4:x*4+4], img.Pix[i:i+4])
		}
	}
	return dst
}

// FlipH mirrors the image left to right.
func FlipH(img *Buffer) *Buffer {
	w := img.Width()
	return remap(img, w, img.Height(), func(row, col int) (int, int) {
		return row, w - col - 1
	})
}

// FlipV mirrors the image top to bottom.
func FlipV(img *Buffer) *Buffer {
	h := img.Height()
	return remap(img, img.Width(), h, func(row, col int) (int, int) {
		return h - row - 1, col
	})
}

// RotateRight rotates the image 90 degrees clockwise.
func RotateRight(img *Buffer) *Buffer {
	h := img.Height()
	return remap(img, h, img.Width(), func(row, col int) (int, int) {
		return h - col - 1, row
	})
}

// RotateLeft rotates the image 90 degrees counter-clockwise.
func RotateLeft(img *Buffer) *Buffer {
	w := img.Width()
	return remap(img, img.Height(), w, func(row, col int) (int, int) {
		return col, w - row - 1
	})
}

// Crop returns the w x h region whose top-left corner is (x, y). The
// region is clipped to the image; x and y themselves must lie in
// [0, width] and [0, height].
func Crop(img *Buffer, x, y, w, h int) (*Buffer, error) {
	if x < 0 || x > img.Width() || y < 0 || y > img.Height() {
		return nil, fmt.Errorf("crop: %w: origin (%d,%d) outside %dx%d image",
			ErrInvalidArgument, x, y, img.Width(), img.Height())
	}
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("crop: %w: negative size %dx%d", ErrInvalidArgument, w, h)
	}
	w = min(w, img.Width()-x)
	h = min(h, img.Height()-y)
	return remap(img, w, h, func(row, col int) (int, int) {
		return y + row, x + col
	}), nil
}
