package imageutil

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var regularFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

// TextMask renders text in the Go Regular face at size points (72 DPI)
// into a width x height buffer. Every channel of a pixel holds the glyph
// coverage, so the result can be passed straight to ApplyAlphaMask.
// The text is centered horizontally and on the font's ascent/descent.
func TextMask(width, height int, text string, size float64) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("text mask: %w: size %dx%d", ErrInvalidArgument, width, height)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text mask: %w: empty text", ErrInvalidArgument)
	}
	if !(size > 0) {
		return nil, fmt.Errorf("text mask: %w: font size %g", ErrInvalidArgument, size)
	}

	ttf, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("text mask: parse font: %w", err)
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	coverage := image.NewAlpha(image.Rect(0, 0, width, height))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(size)
	ctx.SetClip(coverage.Bounds())
	ctx.SetDst(coverage)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	advance := font.MeasureString(face, text)
	left := (fixed.I(width) - advance) / 2
	baseline := (fixed.I(height) + metrics.Ascent - metrics.Descent) / 2

	if _, err := ctx.DrawString(text, fixed.Point26_6{X: left, Y: baseline}); err != nil {
		return nil, fmt.Errorf("text mask: draw %q: %w", text, err)
	}

	dst := newBuffer(width, height)
	for y := 0; y < height; y++ {
		out := dst.rowPix(y)
		src := coverage.Pix[y*coverage.Stride : y*coverage.Stride+width]
		for x, a := range src {
			out[x*4], out[x*4+1], out[x*4+2], out[x*4+3] = a, a, a, a
		}
	}
	return dst, nil
}
