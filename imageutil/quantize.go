package imageutil

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Palette is a set of target colors for Quantize. Alpha is ignored.
type Palette []Pixel

func opaque(r, g, b uint8) Pixel {
	return Pixel{R: r, G: g, B: b, A: 255}
}

var (
	// PaletteMono is black and white.
	PaletteMono = Palette{opaque(0, 0, 0), opaque(255, 255, 255)}

	// PaletteGray4 is four evenly spaced grays.
	PaletteGray4 = Palette{gray(0), gray(85), gray(170), gray(255)}

	// PaletteANSI16 is the xterm rendition of the 16 standard ANSI colors.
	PaletteANSI16 = Palette{
		opaque(0, 0, 0), opaque(205, 0, 0), opaque(0, 205, 0), opaque(205, 205, 0),
		opaque(0, 0, 238), opaque(205, 0, 205), opaque(0, 205, 205), opaque(229, 229, 229),
		opaque(127, 127, 127), opaque(255, 0, 0), opaque(0, 255, 0), opaque(255, 255, 0),
		opaque(92, 92, 255), opaque(255, 0, 255), opaque(0, 255, 255), opaque(255, 255, 255),
	}
)

var palettes = map[string]Palette{
	"mono":   PaletteMono,
	"gray4":  PaletteGray4,
	"ansi16": PaletteANSI16,
}

// ParsePalette returns a copy of the built-in palette called name:
// "mono", "gray4" or "ansi16".
func ParsePalette(name string) (Palette, error) {
	if p, ok := palettes[normalizeName(name)]; ok {
		return slices.Clone(p), nil
	}
	return nil, fmt.Errorf("%w: unknown palette %q", ErrInvalidArgument, name)
}

// paletteNode is one node of a k-d tree over palette colors. Each node
// splits its subtree on the channel with the largest variance.
type paletteNode struct {
	color       Pixel
	left, right *paletteNode
	axis        int
}

// buildPaletteTree sorts colors in place while building the tree.
func buildPaletteTree(colors []Pixel) *paletteNode {
	if len(colors) == 0 {
		return nil
	}

	axis := widestAxis(colors)
	sort.Slice(colors, func(i, j int) bool {
		return channel(colors[i], axis) < channel(colors[j], axis)
	})

	median := len(colors) / 2
	return &paletteNode{
		color: colors[median],
		left:  buildPaletteTree(colors[:median]),
		right: buildPaletteTree(colors[median+1:]),
		axis:  axis,
	}
}

// widestAxis returns the channel (0=R, 1=G, 2=B) with the largest variance.
func widestAxis(colors []Pixel) int {
	var mean, variance [3]float64
	for _, c := range colors {
		for axis := range mean {
			mean[axis] += float64(channel(c, axis))
		}
	}
	for axis := range mean {
		mean[axis] /= float64(len(colors))
	}
	for _, c := range colors {
		for axis := range variance {
			d := float64(channel(c, axis)) - mean[axis]
			variance[axis] += d * d
		}
	}

	if variance[0] > variance[1] && variance[0] > variance[2] {
		return 0
	} else if variance[1] > variance[2] {
		return 1
	}
	return 2
}

func channel(p Pixel, axis int) uint8 {
	switch axis {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

// colorDistance is the squared Euclidean distance in RGB.
func colorDistance(a, b Pixel) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// nearest returns the palette color closest to target.
func (node *paletteNode) nearest(target Pixel) Pixel {
	best, _ := node.search(target, Pixel{}, math.MaxInt)
	return best
}

func (node *paletteNode) search(target, best Pixel, bestDist int) (Pixel, int) {
	if node == nil {
		return best, bestDist
	}

	if dist := colorDistance(node.color, target); dist < bestDist {
		best, bestDist = node.color, dist
	}

	axisDist := int(channel(target, node.axis)) - int(channel(node.color, node.axis))
	next, other := node.right, node.left
	if axisDist < 0 {
		next, other = node.left, node.right
	}

	best, bestDist = next.search(target, best, bestDist)
	if axisDist*axisDist <= bestDist {
		best, bestDist = other.search(target, best, bestDist)
	}
	return best, bestDist
}

// Quantize maps every pixel to the nearest palette color by Euclidean RGB
// distance. With dither set, each pixel's quantization error is pushed to
// its unvisited neighbours using Floyd-Steinberg weights. Alpha is kept.
func Quantize(img *Buffer, palette Palette, dither bool) (*Buffer, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("quantize: %w: empty palette", ErrInvalidArgument)
	}
	tree := buildPaletteTree(slices.Clone(palette))

	if !dither {
		return mapPixels(img, func(p Pixel) Pixel {
			c := tree.nearest(p)
			c.A = p.A
			return c
		}), nil
	}
	return diffuse(img, tree), nil
}

// diffuse runs Floyd-Steinberg error diffusion in row order. Accumulated
// values are clamped to [0, 255] when read.
func diffuse(img *Buffer, tree *paletteNode) *Buffer {
	width, height := img.Width(), img.Height()
	work := make([][3]float64, width*height)
	for y := 0; y < height; y++ {
		row := img.rowPix(y)
		for x := 0; x < width; x++ {
			work[y*width+x] = [3]float64{float64(row[x*4]), float64(row[x*4+1]), float64(row[x*4+2])}
		}
	}

	spread := func(y, x int, e [3]float64, factor float64) {
		if y < height && x >= 0 && x < width {
			w := &work[y*width+x]
			for ch := range w {
				w[ch] += e[ch] * factor
			}
		}
	}

	dst := newBuffer(width, height)
	for y := 0; y < height; y++ {
		src, out := img.rowPix(y), dst.rowPix(y)
		for x := 0; x < width; x++ {
			v := work[y*width+x]
			cur := Pixel{R: truncUint8(v[0]), G: truncUint8(v[1]), B: truncUint8(v[2])}
			c := tree.nearest(cur)
			out[x*4], out[x*4+1], out[x*4+2], out[x*4+3] = c.R, c.G, c.B, src[x*4+3]

			e := [3]float64{
				float64(cur.R) - float64(c.R),
				float64(cur.G) - float64(c.G),
				float64(cur.B) - float64(c.B),
			}
			spread(y, x+1, e, 7.0/16.0)
			spread(y+1, x-1, e, 3.0/16.0)
			spread(y+1, x, e, 5.0/16.0)
			spread(y+1, x+1, e, 1.0/16.0)
		}
	}
	return dst
}
