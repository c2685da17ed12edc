package imageutil

import (
	"fmt"
	"math"
)

// Canny thresholds matching the common 1:3 ratio.
const (
	DefaultCannyLow  = 50
	DefaultCannyHigh = 150
)

// plane is one float channel in row-major order.
type plane struct {
	width, height int
	v             []float64
}

func luminancePlane(img *Buffer) *plane {
	width, height := img.Width(), img.Height()
	p := &plane{width: width, height: height, v: make([]float64, width*height)}
	for y := 0; y < height; y++ {
		row := img.rowPix(y)
		for x := 0; x < width; x++ {
			i := x * 4
			p.v[y*width+x] = float64(luminance(Pixel{R: row[i], G: row[i+1], B: row[i+2]}))
		}
	}
	return p
}

// at returns the sample at (y, x), repeating the edge outside the plane.
func (p *plane) at(y, x int) float64 {
	y = max(0, min(p.height-1, y))
	x = max(0, min(p.width-1, x))
	return p.v[y*p.width+x]
}

// convolve returns p convolved with k, with edge replication at the border.
func (p *plane) convolve(k *Kernel) *plane {
	out := &plane{width: p.width, height: p.height, v: make([]float64, len(p.v))}
	halfKW, halfKH := k.Width/2, k.Height/2
	forEachRowBand(p.width, p.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < p.width; x++ {
				var sum float64
				for ky, weights := range k.Values {
					for kx, w := range weights {
						sum += p.at(y+ky-halfKH, x+kx-halfKW) * w
					}
				}
				out.v[y*p.width+x] = sum
			}
		}
	})
	return out
}

// Canny marks the edges of img's luminance white and everything else
// black. The luminance is smoothed with the normalized 3x3 Gaussian, Sobel
// gradient magnitudes are thinned to local maxima along the gradient
// direction, and pixels at or above high are kept together with any pixels
// at or above low connected to them. Border pixels are never edges. Alpha
// is copied from img.
func Canny(img *Buffer, low, high float64) (*Buffer, error) {
	if math.IsNaN(low) || math.IsNaN(high) || low < 0 || high < low {
		return nil, fmt.Errorf("canny: %w: thresholds low=%g high=%g", ErrInvalidArgument, low, high)
	}

	width, height := img.Width(), img.Height()
	smooth := luminancePlane(img).convolve(Normalize(KernelGaussianBlur.Kernel()))
	gx := smooth.convolve(KernelSobelX.Kernel())
	gy := smooth.convolve(KernelSobelY.Kernel())

	thin := suppressNonMaxima(gx, gy)
	edges := trackEdges(thin, width, height, low, high)

	dst := newBuffer(width, height)
	for y := 0; y < height; y++ {
		src, out := img.rowPix(y), dst.rowPix(y)
		for x := 0; x < width; x++ {
			var v uint8
			if edges[y*width+x] {
				v = 255
			}
			i := x * 4
			out[i], out[i+1], out[i+2], out[i+3] = v, v, v, src[i+3]
		}
	}
	return dst, nil
}

// suppressNonMaxima keeps a gradient magnitude only where it is at least
// as large as both neighbours along the gradient direction, quantized to
// 0, 45, 90 or 135 degrees.
func suppressNonMaxima(gx, gy *plane) []float64 {
	width, height := gx.width, gx.height
	mag := make([]float64, width*height)
	for i := range mag {
		mag[i] = math.Hypot(gx.v[i], gy.v[i])
	}

	thin := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := math.Atan2(gy.v[i], gx.v[i]) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}

			var q, r float64
			switch {
			case angle < 22.5 || angle >= 157.5:
				q, r = mag[i+1], mag[i-1]
			case angle < 67.5:
				q, r = mag[i+width+1], mag[i-width-1]
			case angle < 112.5:
				q, r = mag[i+width], mag[i-width]
			default:
				q, r = mag[i+width-1], mag[i-width+1]
			}

			if mag[i] >= q && mag[i] >= r {
				thin[i] = mag[i]
			}
		}
	}
	return thin
}

// trackEdges runs hysteresis: every value >= high seeds an edge that
// grows through 8-connected values >= low.
func trackEdges(thin []float64, width, height int, low, high float64) []bool {
	edges := make([]bool, len(thin))
	var stack []int
	for i, v := range thin {
		if v >= high && v > 0 {
			edges[i] = true
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		y, x := i/width, i%width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ny, nx := y+dy, x+dx
				if ny < 0 || ny >= height || nx < 0 || nx >= width {
					continue
				}
				j := ny*width + nx
				if !edges[j] && thin[j] >= low && thin[j] > 0 {
					edges[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return edges
}
