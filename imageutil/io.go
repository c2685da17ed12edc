package imageutil

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Format is an output encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatJPG
	FormatBMP
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 90

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPG:
		return "jpg"
	case FormatBMP:
		return "bmp"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// HasAlpha reports whether the format stores the alpha channel.
func (f Format) HasAlpha() bool {
	return f == FormatPNG
}

// ParseFormat maps "png", "jpg"/"jpeg" or "bmp" (with or without a
// leading dot) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "bmp":
		return FormatBMP, nil
	}
	return FormatPNG, fmt.Errorf("%w: unsupported output format %q", ErrInvalidArgument, name)
}

// FormatFromPath picks the Format from the file extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// LoadImage loads an image from the specified path and normalizes it to
// 4 channels. Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func LoadImage(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoad, path, err)
	}

	return BufferFromImage(img), nil
}

// SaveImage encodes img to path. PNG keeps alpha; JPG and BMP drop it.
// quality applies to JPG only; 0 selects DefaultQuality.
func SaveImage(img *Buffer, path string, format Format, quality int) error {
	if quality == 0 {
		quality = DefaultQuality
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("%w: %w: quality %d outside 1..100", ErrSave, ErrInvalidArgument, quality)
	}
	if img.Width() == 0 || img.Height() == 0 {
		return fmt.Errorf("%w: %w: cannot encode empty %dx%d image",
			ErrSave, ErrInvalidArgument, img.Width(), img.Height())
	}

	src := img
	if !format.HasAlpha() {
		src = img.Opaque()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	w := bufio.NewWriter(f)
	switch format {
	case FormatPNG:
		err = png.Encode(w, src.NRGBA)
	case FormatJPG:
		err = jpeg.Encode(w, src.NRGBA, &jpeg.Options{Quality: quality})
	case FormatBMP:
		err = bmp.Encode(w, src.NRGBA)
	default:
		err = fmt.Errorf("%w: unsupported output format %v", ErrInvalidArgument, format)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrSave, path, err)
	}
	return nil
}

// FileCodec is the file-system codec: Load and Save delegate to
// LoadImage and SaveImage.
type FileCodec struct{}

// Load decodes the image at path.
func (FileCodec) Load(path string) (*Buffer, error) {
	return LoadImage(path)
}

// Save encodes img to path.
func (FileCodec) Save(img *Buffer, path string, format Format, quality int) error {
	return SaveImage(img, path, format, quality)
}
