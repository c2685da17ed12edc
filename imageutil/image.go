// Package imageutil provides pure Go raster processing: a 4-channel pixel
// buffer, kernel algebra, a zero-padding convolution engine, two-operand
// compositing, tone and geometry passes, and the codec layer that moves
// buffers to and from disk.
package imageutil

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Pixel is a non-premultiplied RGBA color with 8-bit channels. Alpha is a
// plain 0-255 weight.
type Pixel struct {
	R, G, B, A uint8
}

// ToColor converts the pixel to color.NRGBA for use with the standard library.
func (p Pixel) ToColor() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// PixelFromColor converts any color.Color to a non-premultiplied Pixel.
func PixelFromColor(c color.Color) Pixel {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Buffer owns a width x height grid of Pixels addressed by (row, col).
// It wraps image.NRGBA so it can be handed directly to image encoders.
type Buffer struct {
	*image.NRGBA
}

// NewBuffer creates a transparent black buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: buffer size %dx%d", ErrInvalidArgument, width, height)
	}
	return newBuffer(width, height), nil
}

// newBuffer is NewBuffer for sizes the caller already knows are valid.
func newBuffer(width, height int) *Buffer {
	return &Buffer{
		NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewFilledBuffer creates a buffer with every pixel set to p.
func NewFilledBuffer(width, height int, p Pixel) (*Buffer, error) {
	buf, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	buf.Fill(p)
	return buf, nil
}

// BufferFromImage converts any image.Image to a 4-channel Buffer whose
// origin is (0, 0).
func BufferFromImage(img image.Image) *Buffer {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return (&Buffer{NRGBA: n}).Clone()
	}
	bounds := img.Bounds()
	buf := newBuffer(bounds.Dx(), bounds.Dy())
	draw.Draw(buf.NRGBA, buf.Bounds(), img, bounds.Min, draw.Src)
	return buf
}

// Width returns the number of columns.
func (b *Buffer) Width() int {
	return b.Rect.Dx()
}

// Height returns the number of rows.
func (b *Buffer) Height() int {
	return b.Rect.Dy()
}

// SameShape reports whether b and other have identical width and height.
func (b *Buffer) SameShape(other *Buffer) bool {
	return b.Width() == other.Width() && b.Height() == other.Height()
}

// offset returns the Pix index of (row, col), panicking when out of range.
func (b *Buffer) offset(row, col int) int {
	if row < 0 || row >= b.Height() || col < 0 || col >= b.Width() {
		panic(fmt.Sprintf("imageutil: pixel (row %d, col %d) out of range for %dx%d buffer",
			row, col, b.Width(), b.Height()))
	}
	return row*b.Stride + col*4
}

// PixelAt returns the pixel at (row, col).
func (b *Buffer) PixelAt(row, col int) Pixel {
	i := b.offset(row, col)
	s := b.Pix[i : i+4 : i+4]
	return Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// SetPixel sets the pixel at (row, col).
func (b *Buffer) SetPixel(row, col int, p Pixel) {
	i := b.offset(row, col)
	s := b.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = p.R, p.G, p.B, p.A
}

// Fill sets every pixel to p.
func (b *Buffer) Fill(p Pixel) {
	for y := 0; y < b.Height(); y++ {
		row := b.rowPix(y)
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = p.R, p.G, p.B, p.A
		}
	}
}

// rowPix returns the Pix slice of row y.
func (b *Buffer) rowPix(y int) []uint8 {
	start := y * b.Stride
	return b.Pix[start : start+b.Width()*4]
}

// Clone creates a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	clone := newBuffer(b.Width(), b.Height())
	for y := 0; y < b.Height(); y++ {
		copy(clone.rowPix(y), b.rowPix(y))
	}
	return clone
}

// Opaque returns a copy with every alpha set to 255 and RGB untouched.
// Encoders without an alpha channel are fed this copy so that transparent
// pixels keep their color instead of being premultiplied to black.
func (b *Buffer) Opaque() *Buffer {
	out := b.Clone()
	for y := 0; y < out.Height(); y++ {
		row := out.rowPix(y)
		for x := 3; x < len(row); x += 4 {
			row[x] = 255
		}
	}
	return out
}
