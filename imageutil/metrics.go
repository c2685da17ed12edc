package imageutil

import "math"

// MSE returns the mean squared error over the R, G and B channels of a
// and b.
func MSE(a, b *Buffer) (float64, error) {
	if err := checkShape("mse", a, b); err != nil {
		return 0, err
	}

	width, height := a.Width(), a.Height()
	count := float64(width * height * 3) // 3 channels
	if count == 0 {
		return 0, nil
	}

	var sumSq float64
	for y := 0; y < height; y++ {
		pa, pb := a.rowPix(y), b.rowPix(y)
		for i := 0; i < len(pa); i += 4 {
			for ch := 0; ch < 3; ch++ {
				d := float64(pa[i+ch]) - float64(pb[i+ch])
				sumSq += d * d
			}
		}
	}

	return sumSq / count, nil
}

// PSNR returns the peak signal-to-noise ratio in dB between a and b.
// Identical images yield +Inf.
func PSNR(a, b *Buffer) (float64, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(255*255/mse), nil
}

// MaxDiff returns the largest absolute difference of any R, G or B
// channel between a and b.
func MaxDiff(a, b *Buffer) (int, error) {
	if err := checkShape("max diff", a, b); err != nil {
		return 0, err
	}

	maxDiff := 0
	for y := 0; y < a.Height(); y++ {
		pa, pb := a.rowPix(y), b.rowPix(y)
		for i := 0; i < len(pa); i += 4 {
			for ch := 0; ch < 3; ch++ {
				d := int(pa[i+ch]) - int(pb[i+ch])
				if d < 0 {
					d = -d
				}
				maxDiff = max(maxDiff, d)
			}
		}
	}
	return maxDiff, nil
}
