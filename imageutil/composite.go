package imageutil

import "fmt"

// channelFunc combines one channel of the left operand with the same
// channel of the right operand.
type channelFunc func(a, b uint8) uint8

// combine runs fn over R, G and B of every pixel pair. The result keeps
// the left operand's alpha.
func combine(op string, a, b *Buffer, fn channelFunc) (*Buffer, error) {
	if err := checkShape(op, a, b); err != nil {
		return nil, err
	}
	width, height := a.Width(), a.Height()
	dst := newBuffer(width, height)

	forEachRowBand(width, height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			pa, pb, out := a.rowPix(y), b.rowPix(y), dst.rowPix(y)
			for i := 0; i < len(out); i += 4 {
				out[i] = fn(pa[i], pb[i])
				out[i+1] = fn(pa[i+1], pb[i+1])
				out[i+2] = fn(pa[i+2], pb[i+2])
				out[i+3] = pa[i+3]
			}
		}
	})
	return dst, nil
}

// Blend returns alpha*a + (1-alpha)*b per channel.
func Blend(a, b *Buffer, alpha float64) (*Buffer, error) {
	return combine("blend", a, b, func(x, y uint8) uint8 {
		return truncUint8(alpha*float64(x) + (1-alpha)*float64(y))
	})
}

// CompositeOver draws fg over bg with the Porter-Duff "over" weight taken
// from fg's alpha scaled to [0, 1]. The result keeps fg's alpha.
func CompositeOver(fg, bg *Buffer) (*Buffer, error) {
	if err := checkShape("composite over", fg, bg); err != nil {
		return nil, err
	}
	width, height := fg.Width(), fg.Height()
	dst := newBuffer(width, height)

	forEachRowBand(width, height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			pf, pb, out := fg.rowPix(y), bg.rowPix(y), dst.rowPix(y)
			for i := 0; i < len(out); i += 4 {
				w := float64(pf[i+3]) / 255
				for ch := 0; ch < 3; ch++ {
					out[i+ch] = truncUint8(float64(pf[i+ch])*w + float64(pb[i+ch])*(1-w))
				}
				out[i+3] = pf[i+3]
			}
		}
	})
	return dst, nil
}

// ApplyAlphaMask returns a copy of img whose alpha is the red channel of mask.
func ApplyAlphaMask(img, mask *Buffer) (*Buffer, error) {
	if err := checkShape("apply alpha mask", img, mask); err != nil {
		return nil, err
	}
	dst := img.Clone()
	for y := 0; y < dst.Height(); y++ {
		out, pm := dst.rowPix(y), mask.rowPix(y)
		for i := 0; i < len(out); i += 4 {
			out[i+3] = pm[i]
		}
	}
	return dst, nil
}

func multiplyChannel(a, b uint8) uint8 {
	return uint8(int(a) * int(b) / 255)
}

func screenChannel(a, b uint8) uint8 {
	return uint8(255 - (255-int(a))*(255-int(b))/255)
}

// Multiply returns a*b/255 per channel.
func Multiply(a, b *Buffer) (*Buffer, error) {
	return combine("multiply", a, b, multiplyChannel)
}

// Screen returns 255 - (255-a)*(255-b)/255 per channel.
func Screen(a, b *Buffer) (*Buffer, error) {
	return combine("screen", a, b, screenChannel)
}

// Overlay multiplies channels of a below 128 and screens the rest,
// deciding independently for each channel.
func Overlay(a, b *Buffer) (*Buffer, error) {
	return combine("overlay", a, b, func(x, y uint8) uint8 {
		if x < 128 {
			return multiplyChannel(x, y)
		}
		return screenChannel(x, y)
	})
}

// Darken keeps the smaller channel value.
func Darken(a, b *Buffer) (*Buffer, error) {
	return combine("darken", a, b, minChannel)
}

// Lighten keeps the larger channel value.
func Lighten(a, b *Buffer) (*Buffer, error) {
	return combine("lighten", a, b, maxChannel)
}

// Add returns clamp(a + scale*b, 0, 255) per channel.
func Add(a, b *Buffer, scale float64) (*Buffer, error) {
	return combine("add", a, b, func(x, y uint8) uint8 {
		return truncUint8(float64(x) + scale*float64(y))
	})
}

// Subtract returns clamp(a - b, 0, 255) per channel.
func Subtract(a, b *Buffer) (*Buffer, error) {
	return combine("subtract", a, b, func(x, y uint8) uint8 {
		if x < y {
			return 0
		}
		return x - y
	})
}

// Difference returns |a - b| per channel.
func Difference(a, b *Buffer) (*Buffer, error) {
	return combine("difference", a, b, func(x, y uint8) uint8 {
		if x < y {
			return y - x
		}
		return x - y
	})
}

// Average returns (a + b) / 2 per channel, truncated.
func Average(a, b *Buffer) (*Buffer, error) {
	return combine("average", a, b, func(x, y uint8) uint8 {
		return uint8((int(x) + int(y)) / 2)
	})
}

// Max keeps the larger channel value.
func Max(a, b *Buffer) (*Buffer, error) {
	return combine("max", a, b, maxChannel)
}

// Min keeps the smaller channel value.
func Min(a, b *Buffer) (*Buffer, error) {
	return combine("min", a, b, minChannel)
}

func minChannel(a, b uint8) uint8 { return min(a, b) }
func maxChannel(a, b uint8) uint8 { return max(a, b) }

// BlendMode selects a two-operand compositing operator.
type BlendMode int

const (
	BlendNormal BlendMode = iota // Blend with Options.Alpha
	BlendOver
	BlendMask
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendAdd
	BlendSubtract
	BlendDifference
	BlendAverage
	BlendMax
	BlendMin
)

// BlendModes lists every mode in declaration order.
var BlendModes = []BlendMode{
	BlendNormal, BlendOver, BlendMask, BlendMultiply, BlendScreen,
	BlendOverlay, BlendDarken, BlendLighten, BlendAdd, BlendSubtract,
	BlendDifference, BlendAverage, BlendMax, BlendMin,
}

var blendModeNames = map[BlendMode]string{
	BlendNormal:     "blend",
	BlendOver:       "over",
	BlendMask:       "mask",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendAdd:        "add",
	BlendSubtract:   "subtract",
	BlendDifference: "difference",
	BlendAverage:    "average",
	BlendMax:        "max",
	BlendMin:        "min",
}

func (m BlendMode) String() string {
	if name, ok := blendModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// ParseBlendMode maps a mode name to its BlendMode, ignoring case,
// spaces, dashes and underscores. "normal", "composite over" and
// "alpha mask" are accepted as aliases.
func ParseBlendMode(name string) (BlendMode, error) {
	key := normalizeName(name)
	switch key {
	case "normal":
		return BlendNormal, nil
	case "compositeover":
		return BlendOver, nil
	case "alphamask":
		return BlendMask, nil
	}
	for m, n := range blendModeNames {
		if n == key {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("%w: unknown blend mode %q", ErrInvalidArgument, name)
}

// CompositeOptions carries the scalar arguments of the modes that take one.
type CompositeOptions struct {
	Alpha float64 // weight of the left operand for BlendNormal
	Scale float64 // weight of the right operand for BlendAdd
}

// DefaultCompositeOptions blends halfway and adds at full strength.
func DefaultCompositeOptions() CompositeOptions {
	return CompositeOptions{Alpha: 0.5, Scale: 1.0}
}

// Composite applies mode to a and b.
func Composite(mode BlendMode, a, b *Buffer, opts CompositeOptions) (*Buffer, error) {
	switch mode {
	case BlendNormal:
		return Blend(a, b, opts.Alpha)
	case BlendOver:
		return CompositeOver(a, b)
	case BlendMask:
		return ApplyAlphaMask(a, b)
	case BlendMultiply:
		return Multiply(a, b)
	case BlendScreen:
		return Screen(a, b)
	case BlendOverlay:
		return Overlay(a, b)
	case BlendDarken:
		return Darken(a, b)
	case BlendLighten:
		return Lighten(a, b)
	case BlendAdd:
		return Add(a, b, opts.Scale)
	case BlendSubtract:
		return Subtract(a, b)
	case BlendDifference:
		return Difference(a, b)
	case BlendAverage:
		return Average(a, b)
	case BlendMax:
		return Max(a, b)
	case BlendMin:
		return Min(a, b)
	}
	return nil, fmt.Errorf("%w: unknown blend mode %d", ErrInvalidArgument, int(mode))
}
