package imageutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice without copying or
// validating it. Use NewCustomKernel for untrusted input.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// NewCustomKernel validates that values is non-empty and rectangular and
// returns a kernel holding a copy of it.
func NewCustomKernel(values [][]float64) (*Kernel, error) {
	k := NewKernel(values)
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k.Clone(), nil
}

// newZeroKernel allocates a width x height kernel of zeros.
func newZeroKernel(width, height int) *Kernel {
	values := make([][]float64, height)
	for i := range values {
		values[i] = make([]float64, width)
	}
	return NewKernel(values)
}

// Validate checks that the kernel has at least one row and column and that
// every row has the same length.
func (k *Kernel) Validate() error {
	if k == nil || k.Height == 0 || k.Width == 0 {
		return fmt.Errorf("%w: kernel has no rows or columns", ErrInvalidKernel)
	}
	if len(k.Values) != k.Height {
		return fmt.Errorf("%w: kernel has %d rows, expected %d", ErrInvalidKernel, len(k.Values), k.Height)
	}
	for i, row := range k.Values {
		if len(row) != k.Width {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidKernel, i, len(row), k.Width)
		}
	}
	return nil
}

// IsSquare reports whether the kernel is a valid N x N matrix.
func (k *Kernel) IsSquare() bool {
	return k.Validate() == nil && k.Width == k.Height
}

// Clone returns a deep copy of the kernel.
func (k *Kernel) Clone() *Kernel {
	values := make([][]float64, len(k.Values))
	for i, row := range k.Values {
		values[i] = append([]float64(nil), row...)
	}
	return NewKernel(values)
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 {
	var sum float64
	for _, row := range k.Values {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// String formats the kernel one row per line.
func (k *Kernel) String() string {
	var sb strings.Builder
	for i, row := range k.Values {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', 6, 64))
		}
	}
	return sb.String()
}

// Scale returns a copy of k with every weight multiplied by factor.
func Scale(k *Kernel, factor float64) *Kernel {
	out := k.Clone()
	for _, row := range out.Values {
		for j := range row {
			row[j] *= factor
		}
	}
	return out
}

// Normalize returns a copy of k divided by the sum of its weights. A kernel
// whose weights sum to exactly zero (edge detectors) is returned unchanged.
func Normalize(k *Kernel) *Kernel {
	sum := k.Sum()
	if sum == 0 {
		return k.Clone()
	}
	return Scale(k, 1/sum)
}

// ConvolveKernels composes two square kernels into one (N+M-1) square
// kernel, so that applying the result equals applying k1 then k2 away from
// the image border.
func ConvolveKernels(k1, k2 *Kernel) (*Kernel, error) {
	if !k1.IsSquare() || !k2.IsSquare() {
		return nil, fmt.Errorf("convolve kernels: %w: kernels must be square and non-empty", ErrInvalidKernel)
	}

	n, m := k1.Width, k2.Width
	size := n + m - 1
	out := newZeroKernel(size, size)

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			var sum float64
			for u := max(0, i-m+1); u <= min(i, n-1); u++ {
				for v := max(0, j-m+1); v <= min(j, n-1); v++ {
					sum += k1.Values[u][v] * k2.Values[i-u][j-v]
				}
			}
			out.Values[i][j] = sum
		}
	}

	return out, nil
}

// KernelType names one of the built-in 3x3 kernels.
type KernelType int

const (
	KernelDefault KernelType = iota
	KernelBoxBlur
	KernelGaussianBlur
	KernelSobelX
	KernelSobelY
	KernelLaplacian
	KernelSharpen
	KernelEmboss
)

// KernelTypes lists every built-in kernel in declaration order.
var KernelTypes = []KernelType{
	KernelDefault,
	KernelBoxBlur,
	KernelGaussianBlur,
	KernelSobelX,
	KernelSobelY,
	KernelLaplacian,
	KernelSharpen,
	KernelEmboss,
}

var kernelNames = map[KernelType]string{
	KernelDefault:      "Default",
	KernelBoxBlur:      "Box Blur",
	KernelGaussianBlur: "Gaussian Blur",
	KernelSobelX:       "Sobel X",
	KernelSobelY:       "Sobel Y",
	KernelLaplacian:    "Laplacian",
	KernelSharpen:      "Sharpen",
	KernelEmboss:       "Emboss",
}

// String returns the display name of the kernel type.
func (t KernelType) String() string {
	if name, ok := kernelNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Kernel returns a fresh copy of the unnormalized 3x3 matrix for t.
// Unknown types yield the identity kernel.
func (t KernelType) Kernel() *Kernel {
	var v [3][3]float64
	switch t {
	case KernelBoxBlur:
		v = [3][3]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	case KernelGaussianBlur:
		v = [3][3]float64{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}
	case KernelSobelX:
		v = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	case KernelSobelY:
		v = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
	case KernelLaplacian:
		v = [3][3]float64{{0, -1, 0}, {-1, 4, -1}, {0, -1, 0}}
	case KernelSharpen:
		v = [3][3]float64{{0, -1, 0}, {-1, 5, -1}, {0, -1, 0}}
	case KernelEmboss:
		v = [3][3]float64{{-2, -1, 0}, {-1, 1, 1}, {0, 1, 2}}
	default:
		v = [3][3]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	}

	values := make([][]float64, 3)
	for i := range values {
		values[i] = v[i][:]
	}
	return NewKernel(values)
}

// ParseKernelType maps a name such as "gaussian_blur", "Gaussian Blur" or
// "sobelx" to its KernelType. "identity" is accepted for Default.
func ParseKernelType(name string) (KernelType, error) {
	key := normalizeName(name)
	if key == "identity" {
		return KernelDefault, nil
	}
	for _, t := range KernelTypes {
		if normalizeName(t.String()) == key {
			return t, nil
		}
	}
	return KernelDefault, fmt.Errorf("%w: unknown kernel %q", ErrInvalidArgument, name)
}

// normalizeName lowercases s and drops spaces, dashes and underscores.
func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// ParseKernelValues parses rows separated by ';' of weights separated by
// ',' or whitespace, e.g. "1,2,1; 2,4,2; 1,2,1".
func ParseKernelValues(s string) (*Kernel, error) {
	var values [][]float64
	for _, rowText := range strings.Split(s, ";") {
		fields := strings.FieldsFunc(rowText, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: weight %q: %v", ErrInvalidKernel, f, err)
			}
			row[j] = v
		}
		values = append(values, row)
	}
	return NewCustomKernel(values)
}
