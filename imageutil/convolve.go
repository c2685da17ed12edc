package imageutil

import (
	"fmt"
	"math"
)

// paddingSample is the value of every sample that falls outside the buffer.
var paddingSample = Pixel{R: 0, G: 0, B: 0, A: 255}

// snapEpsilon absorbs float accumulation error from normalized weights
// before truncation, so 127.99999999 becomes 128 rather than 127.
const snapEpsilon = 1e-9

// ApplyKernel convolves the R, G and B channels of img with kernel and
// returns a new buffer of the same size.
//
// Out-of-range samples are treated as opaque black (zero padding), so
// edge pixels of blur kernels darken. Alpha is copied from the source
// pixel unchanged. Each channel sum is clamped to [0, 255] and truncated
// after adding snapEpsilon, so a sum that should be exactly 128 but
// accumulates to 127.99999999999999 yields 128.
func ApplyKernel(img *Buffer, kernel *Kernel) (*Buffer, error) {
	if err := kernel.Validate(); err != nil {
		return nil, fmt.Errorf("apply kernel: %w", err)
	}

	width, height := img.Width(), img.Height()
	dst := newBuffer(width, height)

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	forEachRowBand(width, height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			out := dst.rowPix(y)
			src := img.rowPix(y)
			for x := 0; x < width; x++ {
				var sumR, sumG, sumB float64

				for ky := 0; ky < kernel.Height; ky++ {
					sy := y + ky - halfKH
					weights := kernel.Values[ky]
					for kx := 0; kx < kernel.Width; kx++ {
						sx := x + kx - halfKW

						c := paddingSample
						if sy >= 0 && sy < height && sx >= 0 && sx < width {
							i := sy*img.Stride + sx*4
							c = Pixel{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
						}

						k := weights[kx]
						sumR += float64(c.R) * k
						sumG += float64(c.G) * k
						sumB += float64(c.B) * k
					}
				}

				o := x * 4
				out[o] = truncUint8(sumR)
				out[o+1] = truncUint8(sumG)
				out[o+2] = truncUint8(sumB)
				out[o+3] = src[o+3]
			}
		}
	})

	return dst, nil
}

// ApplyKernelType applies one of the built-in 3x3 kernels as-is. Blur
// kernels are not normalized; see BoxBlur and GaussianBlur for that.
func ApplyKernelType(img *Buffer, t KernelType) (*Buffer, error) {
	return ApplyKernel(img, t.Kernel())
}

// mustApply is ApplyKernel for built-in kernels that are always valid.
func mustApply(img *Buffer, kernel *Kernel) *Buffer {
	out, err := ApplyKernel(img, kernel)
	if err != nil {
		panic(err)
	}
	return out
}

// Sharpen applies the built-in sharpen kernel.
func Sharpen(img *Buffer) *Buffer {
	return mustApply(img, KernelSharpen.Kernel())
}

// GaussianBlur applies the normalized 3x3 Gaussian kernel.
func GaussianBlur(img *Buffer) *Buffer {
	return mustApply(img, Normalize(KernelGaussianBlur.Kernel()))
}

// BoxBlur applies the normalized 3x3 box kernel.
func BoxBlur(img *Buffer) *Buffer {
	return mustApply(img, Normalize(KernelBoxBlur.Kernel()))
}

// Emboss applies the built-in emboss kernel.
func Emboss(img *Buffer) *Buffer {
	return mustApply(img, KernelEmboss.Kernel())
}

// EdgeMagnitude computes the per-channel Sobel gradient magnitude
// sqrt(Gx^2 + Gy^2) with the same zero padding as ApplyKernel. Alpha is
// copied from the source.
func EdgeMagnitude(img *Buffer) *Buffer {
	width, height := img.Width(), img.Height()
	dst := newBuffer(width, height)
	gx := KernelSobelX.Kernel()
	gy := KernelSobelY.Kernel()

	forEachRowBand(width, height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			out := dst.rowPix(y)
			src := img.rowPix(y)
			for x := 0; x < width; x++ {
				var sx, sy [3]float64
				for ky := 0; ky < 3; ky++ {
					for kx := 0; kx < 3; kx++ {
						py, px := y+ky-1, x+kx-1
						if py < 0 || py >= height || px < 0 || px >= width {
							continue // padding contributes zero
						}
						i := py*img.Stride + px*4
						for ch := 0; ch < 3; ch++ {
							v := float64(img.Pix[i+ch])
							sx[ch] += v * gx.Values[ky][kx]
							sy[ch] += v * gy.Values[ky][kx]
						}
					}
				}
				o := x * 4
				for ch := 0; ch < 3; ch++ {
					out[o+ch] = truncUint8(math.Sqrt(sx[ch]*sx[ch] + sy[ch]*sy[ch]))
				}
				out[o+3] = src[o+3]
			}
		}
	})

	return dst
}

// truncUint8 clamps v to [0, 255] and truncates it toward zero.
func truncUint8(v float64) uint8 {
	v += snapEpsilon
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
