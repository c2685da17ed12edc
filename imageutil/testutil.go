package imageutil

import "fmt"

// Pattern names a generated test image.
type Pattern string

const (
	PatternSolid            Pattern = "solid"
	PatternGradient         Pattern = "gradient"
	PatternVerticalGradient Pattern = "vgradient"
	PatternCheckerboard     Pattern = "checkerboard"
	PatternColorBars        Pattern = "colorbars"
	PatternEdges            Pattern = "edges"
)

// Patterns lists every pattern CreatePattern understands.
var Patterns = []Pattern{
	PatternSolid, PatternGradient, PatternVerticalGradient,
	PatternCheckerboard, PatternColorBars, PatternEdges,
}

// CreatePattern builds the named pattern. The checkerboard uses squares of
// width/8 pixels (at least 1); the solid pattern is mid gray.
func CreatePattern(p Pattern, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: pattern size %dx%d", ErrInvalidArgument, width, height)
	}
	switch p {
	case PatternSolid:
		return CreateSolidImage(width, height, Pixel{R: 128, G: 128, B: 128, A: 255}), nil
	case PatternGradient:
		return CreateGradientImage(width, height), nil
	case PatternVerticalGradient:
		return CreateVerticalGradientImage(width, height), nil
	case PatternCheckerboard:
		return CreateCheckerboardImage(width, height, max(1, width/8)), nil
	case PatternColorBars:
		return CreateColorBarsImage(width, height), nil
	case PatternEdges:
		return CreateEdgeImage(width, height), nil
	}
	return nil, fmt.Errorf("%w: unknown pattern %q", ErrInvalidArgument, string(p))
}

// gray is an opaque gray pixel.
func gray(v uint8) Pixel {
	return Pixel{R: v, G: v, B: v, A: 255}
}

// rampValue spreads i over [0, 255] across n steps.
func rampValue(i, n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(255 * i / (n - 1))
}

// CreateGradientImage creates a horizontal gradient test image.
func CreateGradientImage(width, height int) *Buffer {
	img := newBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetPixel(y, x, gray(rampValue(x, width)))
		}
	}
	return img
}

// CreateVerticalGradientImage creates a vertical gradient test image.
func CreateVerticalGradientImage(width, height int) *Buffer {
	img := newBuffer(width, height)
	for y := 0; y < height; y++ {
		v := rampValue(y, height)
		for x := 0; x < width; x++ {
			img.SetPixel(y, x, gray(v))
		}
	}
	return img
}

// CreateCheckerboardImage creates a checkerboard pattern for edge testing.
func CreateCheckerboardImage(width, height, squareSize int) *Buffer {
	img := newBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			isWhite := ((x/squareSize)+(y/squareSize))%2 == 0
			if isWhite {
				img.SetPixel(y, x, gray(255))
			} else {
				img.SetPixel(y, x, gray(0))
			}
		}
	}
	return img
}

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, p Pixel) *Buffer {
	img := newBuffer(width, height)
	img.Fill(p)
	return img
}

// CreateColorBarsImage creates a color bars test pattern.
func CreateColorBarsImage(width, height int) *Buffer {
	img := newBuffer(width, height)
	colors := []Pixel{
		{255, 255, 255, 255}, // White
		{255, 255, 0, 255},   // Yellow
		{0, 255, 255, 255},   // Cyan
		{0, 255, 0, 255},     // Green
		{255, 0, 255, 255},   // Magenta
		{255, 0, 0, 255},     // Red
		{0, 0, 255, 255},     // Blue
		{0, 0, 0, 255},       // Black
	}

	barWidth := max(1, width/len(colors))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := min(x/barWidth, len(colors)-1)
			img.SetPixel(y, x, colors[colorIdx])
		}
	}
	return img
}

// CreateEdgeImage creates an image with sharp edges for testing edge detection.
func CreateEdgeImage(width, height int) *Buffer {
	img := CreateSolidImage(width, height, gray(128))

	// White rectangle in center
	rx1, ry1 := width/4, height/4
	rx2, ry2 := 3*width/4, 3*height/4
	for y := ry1; y < ry2; y++ {
		for x := rx1; x < rx2; x++ {
			img.SetPixel(y, x, gray(255))
		}
	}

	// Diagonal line
	for i := 0; i < min(width, height)/2; i++ {
		img.SetPixel(i, i, gray(0))
	}

	return img
}
