package imagekit

import (
	"context"
	"math/rand/v2"

	"github.com/wbrown/imagekit/imageutil"
)

func init() {
	registerFilters()
	registerComposites()
	registerTone()
	registerGeometry()
}

// KernelFromParams builds the kernel described by a "kernel" step:
//
//	type      built-in kernel name (default "default")
//	values    explicit matrix, overrides type
//	compose   built-in kernel to convolve the result with
//	scale     weight multiplier (default 1)
//	normalize divide by the weight sum (default false)
func KernelFromParams(p Params) (*imageutil.Kernel, error) {
	values, err := p.Matrix("values")
	if err != nil {
		return nil, err
	}

	var k *imageutil.Kernel
	if values != nil {
		if k, err = imageutil.NewCustomKernel(values); err != nil {
			return nil, err
		}
	} else {
		name, err := p.String("type", "default")
		if err != nil {
			return nil, err
		}
		kt, err := imageutil.ParseKernelType(name)
		if err != nil {
			return nil, err
		}
		k = kt.Kernel()
	}

	compose, err := p.String("compose", "")
	if err != nil {
		return nil, err
	}
	if compose != "" {
		kt, err := imageutil.ParseKernelType(compose)
		if err != nil {
			return nil, err
		}
		if k, err = imageutil.ConvolveKernels(k, kt.Kernel()); err != nil {
			return nil, err
		}
	}

	scale, err := p.Float("scale", 1)
	if err != nil {
		return nil, err
	}
	if scale != 1 {
		k = imageutil.Scale(k, scale)
	}

	normalize, err := p.Bool("normalize", false)
	if err != nil {
		return nil, err
	}
	if normalize {
		k = imageutil.Normalize(k)
	}
	return k, nil
}

// filter adapts a parameterless buffer transform to an applyFunc.
func filter(fn func(*imageutil.Buffer) *imageutil.Buffer) applyFunc {
	return func(_ context.Context, img *imageutil.Buffer, _ Params, _ Env) (*imageutil.Buffer, error) {
		return fn(img), nil
	}
}

func registerFilters() {
	Register(NewOperation("kernel", "Convolve with a built-in or custom kernel",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			k, err := KernelFromParams(p)
			if err != nil {
				return nil, err
			}
			return imageutil.ApplyKernel(img, k)
		}))

	Register(NewOperation("sharpen", "Sharpen with the 3x3 sharpen kernel", filter(imageutil.Sharpen)))
	Register(NewOperation("emboss", "Emboss with the 3x3 emboss kernel", filter(imageutil.Emboss)))
	Register(NewOperation("edges", "Sobel gradient magnitude", filter(imageutil.EdgeMagnitude)))

	Register(NewOperation("canny", "Canny edge map with hysteresis thresholds low and high",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			low, err := p.Float("low", imageutil.DefaultCannyLow)
			if err != nil {
				return nil, err
			}
			high, err := p.Float("high", imageutil.DefaultCannyHigh)
			if err != nil {
				return nil, err
			}
			return imageutil.Canny(img, low, high)
		}))

	Register(NewOperation("blur", "Normalized 3x3 blur; kind is gaussian or box, repeated passes times",
		func(ctx context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			kind, err := p.String("kind", "gaussian")
			if err != nil {
				return nil, err
			}
			passes, err := p.Int("passes", 1)
			if err != nil {
				return nil, err
			}
			if passes < 1 {
				return nil, paramError("passes", "a positive integer", passes)
			}

			var fn func(*imageutil.Buffer) *imageutil.Buffer
			switch kind {
			case "gaussian":
				fn = imageutil.GaussianBlur
			case "box":
				fn = imageutil.BoxBlur
			default:
				return nil, paramError("kind", `"gaussian" or "box"`, kind)
			}

			for i := 0; i < passes; i++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				img = fn(img)
			}
			return img, nil
		}))
}

var compositeDescriptions = map[imageutil.BlendMode]string{
	imageutil.BlendNormal:     "alpha*a + (1-alpha)*b",
	imageutil.BlendOver:       "Draw the image over the second operand using its alpha",
	imageutil.BlendMask:       "Replace alpha with the red channel of the second operand",
	imageutil.BlendMultiply:   "a*b/255",
	imageutil.BlendScreen:     "255 - (255-a)(255-b)/255",
	imageutil.BlendOverlay:    "Multiply dark channels, screen light ones",
	imageutil.BlendDarken:     "Per-channel minimum",
	imageutil.BlendLighten:    "Per-channel maximum",
	imageutil.BlendAdd:        "a + scale*b, clamped",
	imageutil.BlendSubtract:   "a - b, clamped at 0",
	imageutil.BlendDifference: "|a - b|",
	imageutil.BlendAverage:    "(a + b) / 2",
	imageutil.BlendMax:        "Per-channel maximum",
	imageutil.BlendMin:        "Per-channel minimum",
}

// compositeStep combines the image with the one loaded from "with". With
// swap set, the loaded image becomes the left operand.
func compositeStep(mode imageutil.BlendMode) applyFunc {
	return func(_ context.Context, img *imageutil.Buffer, p Params, env Env) (*imageutil.Buffer, error) {
		path, err := p.String("with", "")
		if err != nil {
			return nil, err
		}
		if path == "" {
			return nil, paramError("with", "the path of the second image", nil)
		}

		opts := imageutil.DefaultCompositeOptions()
		if opts.Alpha, err = p.Float("alpha", opts.Alpha); err != nil {
			return nil, err
		}
		if opts.Scale, err = p.Float("scale", opts.Scale); err != nil {
			return nil, err
		}
		swap, err := p.Bool("swap", false)
		if err != nil {
			return nil, err
		}

		other, err := env.Load(path)
		if err != nil {
			return nil, err
		}
		if swap {
			return imageutil.Composite(mode, other, img, opts)
		}
		return imageutil.Composite(mode, img, other, opts)
	}
}

func registerComposites() {
	for _, mode := range imageutil.BlendModes {
		Register(NewOperation(mode.String(), compositeDescriptions[mode], compositeStep(mode)))
	}

	Register(NewOperation("text_mask", "Use rendered text as the alpha channel",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			text, err := p.String("text", "")
			if err != nil {
				return nil, err
			}
			size, err := p.Float("size", float64(img.Height())/2)
			if err != nil {
				return nil, err
			}
			mask, err := imageutil.TextMask(img.Width(), img.Height(), text, size)
			if err != nil {
				return nil, err
			}
			return imageutil.ApplyAlphaMask(img, mask)
		}))
}

func registerTone() {
	Register(NewOperation("grayscale", "BT.601 luminance", filter(imageutil.Grayscale)))
	Register(NewOperation("invert", "255 - c per channel", filter(imageutil.Invert)))

	Register(NewOperation("threshold", "Black below threshold luminance, white above",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			t, err := p.Int("threshold", imageutil.DefaultThreshold)
			if err != nil {
				return nil, err
			}
			if t < 0 || t > 255 {
				return nil, paramError("threshold", "a value in 0..255", t)
			}
			return imageutil.Threshold(img, uint8(t)), nil
		}))

	Register(NewOperation("brightness", "Add offset to every channel",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			offset, err := p.Int("offset", 0)
			if err != nil {
				return nil, err
			}
			return imageutil.Brightness(img, offset), nil
		}))

	Register(NewOperation("contrast", "Multiply every channel by factor",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			factor, err := p.Float("factor", 1)
			if err != nil {
				return nil, err
			}
			return imageutil.Contrast(img, factor), nil
		}))

	Register(NewOperation("tint", "Mix every pixel toward color by strength",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			c, err := p.Color("color", imageutil.Pixel{R: 255, G: 255, B: 255, A: 255})
			if err != nil {
				return nil, err
			}
			strength, err := p.Float("strength", 0.5)
			if err != nil {
				return nil, err
			}
			return imageutil.Tint(img, c, strength), nil
		}))

	Register(NewOperation("noise", "Add uniform noise scaled by intensity; seed makes it reproducible",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			intensity, err := p.Float("intensity", 0.1)
			if err != nil {
				return nil, err
			}
			seed, err := p.Int("seed", 1)
			if err != nil {
				return nil, err
			}
			rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
			return imageutil.Noise(img, intensity, rng), nil
		}))

	Register(NewOperation("quantize", "Map every pixel to the nearest palette color, optionally dithered",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			palette, err := p.Palette("palette", imageutil.PaletteANSI16)
			if err != nil {
				return nil, err
			}
			dither, err := p.Bool("dither", false)
			if err != nil {
				return nil, err
			}
			return imageutil.Quantize(img, palette, dither)
		}))
}

func registerGeometry() {
	Register(NewOperation("flip_h", "Mirror left to right", filter(imageutil.FlipH)))
	Register(NewOperation("flip_v", "Mirror top to bottom", filter(imageutil.FlipV)))
	Register(NewOperation("rotate_right", "Rotate 90 degrees clockwise", filter(imageutil.RotateRight)))
	Register(NewOperation("rotate_left", "Rotate 90 degrees counter-clockwise", filter(imageutil.RotateLeft)))

	Register(NewOperation("resize", "Resize to width x height; a missing side keeps the aspect ratio",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			w, err := p.Int("width", 0)
			if err != nil {
				return nil, err
			}
			h, err := p.Int("height", 0)
			if err != nil {
				return nil, err
			}
			name, err := p.String("interpolation", "nearest")
			if err != nil {
				return nil, err
			}
			interp, err := imageutil.ParseInterpolation(name)
			if err != nil {
				return nil, err
			}

			switch {
			case w == 0 && h == 0:
				return nil, paramError("width", "width and/or height", nil)
			case h == 0 && img.Width() > 0:
				h = max(1, w*img.Height()/img.Width())
			case w == 0 && img.Height() > 0:
				w = max(1, h*img.Width()/img.Height())
			}
			return imageutil.Resize(img, w, h, interp)
		}))

	Register(NewOperation("crop", "Cut the width x height region at (x, y)",
		func(_ context.Context, img *imageutil.Buffer, p Params, _ Env) (*imageutil.Buffer, error) {
			var vals [4]int
			for i, key := range []string{"x", "y", "width", "height"} {
				def := 0
				if key == "width" {
					def = img.Width()
				} else if key == "height" {
					def = img.Height()
				}
				v, err := p.Int(key, def)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			return imageutil.Crop(img, vals[0], vals[1], vals[2], vals[3])
		}))
}
