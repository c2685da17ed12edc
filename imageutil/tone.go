package imageutil

import "math/rand/v2"

// mapPixels returns a new buffer with fn applied to every pixel of img.
func mapPixels(img *Buffer, fn func(p Pixel) Pixel) *Buffer {
	width, height := img.Width(), img.Height()
	dst := newBuffer(width, height)
	forEachRowBand(width, height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src, out := img.rowPix(y), dst.rowPix(y)
			for i := 0; i < len(out); i += 4 {
				p := fn(Pixel{R: src[i], G: src[i+1], B: src[i+2], A: src[i+3]})
				out[i], out[i+1], out[i+2], out[i+3] = p.R, p.G, p.B, p.A
			}
		}
	})
	return dst
}

// luminance returns the BT.601 gray value 0.299R + 0.587G + 0.114B,
// truncated. Gray inputs map to themselves.
func luminance(p Pixel) uint8 {
	return truncUint8(0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B))
}

// Grayscale replaces R, G and B with the pixel's luminance.
func Grayscale(img *Buffer) *Buffer {
	return mapPixels(img, func(p Pixel) Pixel {
		v := luminance(p)
		return Pixel{R: v, G: v, B: v, A: p.A}
	})
}

// DefaultThreshold is the cut-off used when no threshold is given.
const DefaultThreshold = 128

// Threshold turns pixels whose luminance is below t black and the rest white.
func Threshold(img *Buffer, t uint8) *Buffer {
	return mapPixels(img, func(p Pixel) Pixel {
		if luminance(p) < t {
			return Pixel{A: p.A}
		}
		return Pixel{R: 255, G: 255, B: 255, A: p.A}
	})
}

// Invert replaces each color channel c with 255 - c.
func Invert(img *Buffer) *Buffer {
	return mapPixels(img, func(p Pixel) Pixel {
		return Pixel{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B, A: p.A}
	})
}

// Brightness adds offset to every color channel, clamped to [0, 255].
func Brightness(img *Buffer, offset int) *Buffer {
	shift := func(c uint8) uint8 {
		return uint8(max(0, min(255, int(c)+offset)))
	}
	return mapPixels(img, func(p Pixel) Pixel {
		return Pixel{R: shift(p.R), G: shift(p.G), B: shift(p.B), A: p.A}
	})
}

// Contrast multiplies every color channel by factor, clamped and truncated.
func Contrast(img *Buffer, factor float64) *Buffer {
	scale := func(c uint8) uint8 {
		return truncUint8(float64(c) * factor)
	}
	return mapPixels(img, func(p Pixel) Pixel {
		return Pixel{R: scale(p.R), G: scale(p.G), B: scale(p.B), A: p.A}
	})
}

// Tint mixes every pixel toward c: p*(1-strength) + c*strength.
func Tint(img *Buffer, c Pixel, strength float64) *Buffer {
	mix := func(p, t uint8) uint8 {
		return truncUint8(float64(p)*(1-strength) + float64(t)*strength)
	}
	return mapPixels(img, func(p Pixel) Pixel {
		return Pixel{R: mix(p.R, c.R), G: mix(p.G, c.G), B: mix(p.B, c.B), A: p.A}
	})
}

// Noise adds (n - 128) * intensity to every color channel, with n drawn
// uniformly from [0, 256) per channel. Pixels are visited in row order on
// the calling goroutine so a seeded rng gives reproducible output.
func Noise(img *Buffer, intensity float64, rng *rand.Rand) *Buffer {
	dst := img.Clone()
	jitter := func(c uint8) uint8 {
		n := float64(rng.IntN(256) - 128)
		return truncUint8(float64(c) + n*intensity)
	}
	for y := 0; y < dst.Height(); y++ {
		row := dst.rowPix(y)
		for i := 0; i < len(row); i += 4 {
			row[i] = jitter(row[i])
			row[i+1] = jitter(row[i+1])
			row[i+2] = jitter(row[i+2])
		}
	}
	return dst
}
