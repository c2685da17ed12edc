package imagekit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wbrown/imagekit/imageutil"
)

// Params holds the arguments of one step as decoded from a recipe. TOML
// yields int64 and YAML yields int for whole numbers; the getters accept
// either spelling.
type Params map[string]any

// paramError reports a parameter of the wrong type or range.
func paramError(key, want string, v any) error {
	return fmt.Errorf("%w: parameter %q: expected %s, got %v (%T)",
		imageutil.ErrInvalidArgument, key, want, v, v)
}

// Has reports whether key is set to a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Float returns the number stored at key, or def when it is absent.
func (p Params) Float(key string, def float64) (float64, error) {
	if !p.Has(key) {
		return def, nil
	}
	if f, ok := toFloat(p[key]); ok {
		return f, nil
	}
	return 0, paramError(key, "a number", p[key])
}

// Int returns the whole number stored at key, or def when it is absent.
// Floats are accepted when they have no fractional part.
func (p Params) Int(key string, def int) (int, error) {
	if !p.Has(key) {
		return def, nil
	}
	f, ok := toFloat(p[key])
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, paramError(key, "an integer", p[key])
	}
	return int(f), nil
}

// String returns the string stored at key, or def when it is absent.
func (p Params) String(key, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	s, ok := p[key].(string)
	if !ok {
		return "", paramError(key, "a string", p[key])
	}
	return s, nil
}

// Bool returns the boolean stored at key, or def when it is absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	if !p.Has(key) {
		return def, nil
	}
	b, ok := p[key].(bool)
	if !ok {
		return false, paramError(key, "a boolean", p[key])
	}
	return b, nil
}

// Matrix returns the weight matrix stored at key, or nil when it is
// absent. It accepts nested lists of numbers or the "1,2,1; 2,4,2" text
// form understood by imageutil.ParseKernelValues.
func (p Params) Matrix(key string) ([][]float64, error) {
	if !p.Has(key) {
		return nil, nil
	}
	switch v := p[key].(type) {
	case [][]float64:
		return v, nil
	case string:
		k, err := imageutil.ParseKernelValues(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		return k.Values, nil
	case []any:
		rows := make([][]float64, len(v))
		for i, r := range v {
			cells, ok := r.([]any)
			if !ok {
				return nil, paramError(key, "a list of number lists", p[key])
			}
			rows[i] = make([]float64, len(cells))
			for j, c := range cells {
				f, ok := toFloat(c)
				if !ok {
					return nil, paramError(key, "a list of number lists", p[key])
				}
				rows[i][j] = f
			}
		}
		return rows, nil
	}
	return nil, paramError(key, "a matrix", p[key])
}

// Color returns the pixel stored at key, or def when it is absent. Colors
// are written "#rrggbb", "#rrggbbaa" or as a list of 3 or 4 channel values.
func (p Params) Color(key string, def imageutil.Pixel) (imageutil.Pixel, error) {
	if !p.Has(key) {
		return def, nil
	}
	if c, ok := colorValue(p[key]); ok {
		return c, nil
	}
	return def, paramError(key, "a color", p[key])
}

// Palette returns the palette stored at key: the name of a built-in
// palette or a list of colors. def is returned when the key is absent.
func (p Params) Palette(key string, def imageutil.Palette) (imageutil.Palette, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case string:
		pal, err := imageutil.ParsePalette(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		return pal, nil
	case []any:
		pal := make(imageutil.Palette, 0, len(v))
		for _, item := range v {
			c, ok := colorValue(item)
			if !ok {
				return nil, paramError(key, "a palette name or a list of colors", p[key])
			}
			pal = append(pal, c)
		}
		if len(pal) > 0 {
			return pal, nil
		}
	}
	return nil, paramError(key, "a palette name or a list of colors", p[key])
}

func colorValue(v any) (imageutil.Pixel, bool) {
	switch v := v.(type) {
	case string:
		return parseHexColor(v)
	case []any:
		if len(v) != 3 && len(v) != 4 {
			return imageutil.Pixel{}, false
		}
		ch := [4]uint8{0, 0, 0, 255}
		for i, c := range v {
			f, ok := toFloat(c)
			if !ok || f < 0 || f > 255 {
				return imageutil.Pixel{}, false
			}
			ch[i] = uint8(f)
		}
		return imageutil.Pixel{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
	}
	return imageutil.Pixel{}, false
}

func parseHexColor(s string) (imageutil.Pixel, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return imageutil.Pixel{}, false
	}
	if len(s) == 6 {
		s += "ff"
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return imageutil.Pixel{}, false
	}
	return imageutil.Pixel{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
