package imagekit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/imagekit/imageutil"
)

// ErrInvalidRecipe wraps every recipe validation failure.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Step is one operation of a recipe.
type Step struct {
	Op     string `toml:"op" yaml:"op"`
	Params Params `toml:"params" yaml:"params"`
}

// Recipe describes a batch job: load Input, apply Steps in order, save
// Output. Format defaults to the extension of Output and Quality to
// imageutil.DefaultQuality.
//
// A TOML recipe looks like:
//
//	input = "in.png"
//	output = "out.jpg"
//	quality = 85
//
//	[[steps]]
//	op = "kernel"
//	params = { type = "gaussian_blur", normalize = true }
//
//	[[steps]]
//	op = "multiply"
//	params = { with = "texture.png" }
type Recipe struct {
	Input   string `toml:"input" yaml:"input"`
	Output  string `toml:"output" yaml:"output"`
	Format  string `toml:"format" yaml:"format"`
	Quality int    `toml:"quality" yaml:"quality"`
	Steps   []Step `toml:"steps" yaml:"steps"`

	// BaseDir is the directory relative paths are resolved against.
	// LoadRecipe sets it to the recipe's directory.
	BaseDir string `toml:"-" yaml:"-"`
}

// LoadRecipe reads a .toml, .yaml or .yml recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	r, err := ParseRecipe(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.BaseDir = filepath.Dir(path)
	return r, nil
}

// ParseRecipe decodes a recipe in the given syntax ("toml", "yaml" or
// "yml", with or without a leading dot). Unknown keys are rejected.
func ParseRecipe(data []byte, syntax string) (*Recipe, error) {
	var r Recipe
	switch strings.ToLower(strings.TrimPrefix(syntax, ".")) {
	case "toml":
		md, err := toml.Decode(string(data), &r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidRecipe, undecoded[0].String())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported recipe syntax %q", ErrInvalidRecipe, syntax)
	}
	return &r, nil
}

// OutputFormat returns Format parsed, or the format implied by Output.
func (r *Recipe) OutputFormat() (imageutil.Format, error) {
	if r.Format != "" {
		return imageutil.ParseFormat(r.Format)
	}
	return imageutil.FormatFromPath(r.Output)
}

// Validate checks that the recipe names an input, an output with a known
// format, a quality in range and at least one registered operation.
func (r *Recipe) Validate() error {
	if r.Input == "" {
		return fmt.Errorf("%w: missing input", ErrInvalidRecipe)
	}
	if r.Output == "" {
		return fmt.Errorf("%w: missing output", ErrInvalidRecipe)
	}
	if _, err := r.OutputFormat(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	if r.Quality < 0 || r.Quality > 100 {
		return fmt.Errorf("%w: quality %d outside 0..100", ErrInvalidRecipe, r.Quality)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}
	for i, s := range r.Steps {
		if _, ok := Lookup(s.Op); !ok {
			return fmt.Errorf("%w: step %d: %w: %q", ErrInvalidRecipe, i, ErrUnknownOperation, s.Op)
		}
	}
	return nil
}
