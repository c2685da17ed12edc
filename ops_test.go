package imagekit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wbrown/imagekit/imageutil"
)

// memCodec keeps images in memory, keyed by path.
type memCodec struct {
	images map[string]*imageutil.Buffer
	saved  map[string]imageutil.Format
}

func newMemCodec() *memCodec {
	return &memCodec{
		images: make(map[string]*imageutil.Buffer),
		saved:  make(map[string]imageutil.Format),
	}
}

func (c *memCodec) Load(path string) (*imageutil.Buffer, error) {
	img, ok := c.images[path]
	if !ok {
		return nil, imageutil.ErrLoad
	}
	return img.Clone(), nil
}

func (c *memCodec) Save(img *imageutil.Buffer, path string, format imageutil.Format, _ int) error {
	c.images[path] = img.Clone()
	c.saved[path] = format
	return nil
}

func TestRegistryNames(t *testing.T) {
	names := Names()
	if !slices.IsSorted(names) {
		t.Error("Names should be sorted")
	}
	want := []string{
		"kernel", "sharpen", "blur", "emboss", "edges", "canny", "text_mask",
		"grayscale", "threshold", "invert", "brightness", "contrast", "tint", "noise", "quantize",
		"flip_h", "flip_v", "rotate_right", "rotate_left", "resize", "crop",
	}
	for _, m := range imageutil.BlendModes {
		want = append(want, m.String())
	}
	for _, name := range want {
		if !slices.Contains(names, name) {
			t.Errorf("Operation %q is not registered", name)
		}
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	op, ok := Lookup(" Sharpen ")
	if !ok || op.Name() != "sharpen" {
		t.Errorf("Expected sharpen, got %v (%v)", op, ok)
	}
	if op.Description() == "" {
		t.Error("Expected a description")
	}
}

func TestApplyUnknown(t *testing.T) {
	img := imageutil.CreateGradientImage(4, 4)
	_, err := Apply(context.Background(), "sepia", img, nil, Env{})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation, got %v", err)
	}
}

func TestKernelFromParams(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-12)

	k, err := KernelFromParams(Params{"type": "gaussian_blur", "normalize": true})
	if err != nil {
		t.Fatalf("KernelFromParams failed: %v", err)
	}
	want := imageutil.Normalize(imageutil.KernelGaussianBlur.Kernel())
	if diff := cmp.Diff(want.Values, k.Values, approx); diff != "" {
		t.Errorf("Kernel mismatch (-want +got):\n%s", diff)
	}

	k, err = KernelFromParams(Params{"values": "1,1;1,1", "scale": 0.25})
	if err != nil {
		t.Fatalf("KernelFromParams failed: %v", err)
	}
	if diff := cmp.Diff([][]float64{{0.25, 0.25}, {0.25, 0.25}}, k.Values); diff != "" {
		t.Errorf("Kernel mismatch (-want +got):\n%s", diff)
	}

	k, err = KernelFromParams(Params{"type": "sharpen", "compose": "identity"})
	if err != nil {
		t.Fatalf("KernelFromParams failed: %v", err)
	}
	if k.Width != 5 || k.Values[2][2] != 5 {
		t.Errorf("Expected sharpen embedded in a 5x5 kernel, got\n%v", k)
	}

	k, err = KernelFromParams(nil)
	if err != nil {
		t.Fatalf("KernelFromParams failed: %v", err)
	}
	if diff := cmp.Diff(imageutil.KernelDefault.Kernel().Values, k.Values); diff != "" {
		t.Errorf("Default kernel mismatch (-want +got):\n%s", diff)
	}
}

func TestKernelFromParamsErrors(t *testing.T) {
	cases := map[string]Params{
		"unknown type":       {"type": "unsharp"},
		"ragged values":      {"values": []any{[]any{1, 2}, []any{3}}},
		"non-square compose": {"values": "1,2,3", "compose": "box_blur"},
		"bad normalize":      {"normalize": "yes"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := KernelFromParams(p); !errors.Is(err, imageutil.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestKernelOperationIdentity(t *testing.T) {
	img := imageutil.CreateColorBarsImage(16, 8)
	out, err := Apply(context.Background(), "kernel", img, Params{"type": "default"}, Env{})
	if err != nil {
		t.Fatalf("kernel failed: %v", err)
	}
	if d, _ := imageutil.MaxDiff(img, out); d != 0 {
		t.Errorf("Default kernel should not change the image, max diff %d", d)
	}
}

func TestBlurOperation(t *testing.T) {
	img := imageutil.CreateCheckerboardImage(16, 16, 2)
	ctx := context.Background()

	once, err := Apply(ctx, "blur", img, Params{"kind": "box"}, Env{})
	if err != nil {
		t.Fatalf("blur failed: %v", err)
	}
	if d, _ := imageutil.MaxDiff(once, imageutil.BoxBlur(img)); d != 0 {
		t.Errorf("blur kind=box should equal BoxBlur, max diff %d", d)
	}

	twice, err := Apply(ctx, "blur", img, Params{"passes": 2}, Env{})
	if err != nil {
		t.Fatalf("blur failed: %v", err)
	}
	want := imageutil.GaussianBlur(imageutil.GaussianBlur(img))
	if d, _ := imageutil.MaxDiff(twice, want); d != 0 {
		t.Errorf("Two passes should equal two Gaussian blurs, max diff %d", d)
	}

	for _, p := range []Params{{"kind": "median"}, {"passes": 0}} {
		if _, err := Apply(ctx, "blur", img, p, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
			t.Errorf("blur %v: expected ErrInvalidArgument, got %v", p, err)
		}
	}
}

func TestCannyOperation(t *testing.T) {
	img := imageutil.CreateCheckerboardImage(32, 32, 8)

	got, err := Apply(context.Background(), "canny", img, Params{}, Env{})
	if err != nil {
		t.Fatalf("canny failed: %v", err)
	}
	want, _ := imageutil.Canny(img, imageutil.DefaultCannyLow, imageutil.DefaultCannyHigh)
	if d, _ := imageutil.MaxDiff(got, want); d != 0 {
		t.Errorf("canny with no params should use the default thresholds, max diff %d", d)
	}

	if _, err := Apply(context.Background(), "canny", img, Params{"low": 200, "high": 100}, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for low > high, got %v", err)
	}
}

func TestCompositeOperation(t *testing.T) {
	codec := newMemCodec()
	codec.images["dir/other.png"] = imageutil.CreateSolidImage(4, 4, imageutil.Pixel{R: 100, G: 100, B: 100, A: 255})
	env := Env{Codec: codec, BaseDir: "dir"}
	img := imageutil.CreateSolidImage(4, 4, imageutil.Pixel{R: 30, G: 200, B: 100, A: 255})
	ctx := context.Background()

	out, err := Apply(ctx, "subtract", img, Params{"with": "other.png"}, env)
	if err != nil {
		t.Fatalf("subtract failed: %v", err)
	}
	if got := out.PixelAt(0, 0); got != (imageutil.Pixel{R: 0, G: 100, B: 0, A: 255}) {
		t.Errorf("Expected {0 100 0 255}, got %v", got)
	}

	out, err = Apply(ctx, "subtract", img, Params{"with": "other.png", "swap": true}, env)
	if err != nil {
		t.Fatalf("subtract failed: %v", err)
	}
	if got := out.PixelAt(0, 0); got != (imageutil.Pixel{R: 70, G: 0, B: 0, A: 255}) {
		t.Errorf("Expected {70 0 0 255}, got %v", got)
	}

	out, err = Apply(ctx, "blend", img, Params{"with": "other.png", "alpha": 1}, env)
	if err != nil {
		t.Fatalf("blend failed: %v", err)
	}
	if d, _ := imageutil.MaxDiff(out, img); d != 0 {
		t.Errorf("alpha=1 should keep the image, max diff %d", d)
	}

	if _, err := Apply(ctx, "multiply", img, nil, env); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Missing with: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Apply(ctx, "multiply", img, Params{"with": "nope.png"}, env); !errors.Is(err, imageutil.ErrLoad) {
		t.Errorf("Missing file: expected ErrLoad, got %v", err)
	}

	codec.images["dir/small.png"] = imageutil.CreateGradientImage(2, 2)
	if _, err := Apply(ctx, "average", img, Params{"with": "small.png"}, env); !errors.Is(err, imageutil.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestToneOperations(t *testing.T) {
	img := imageutil.CreateSolidImage(2, 2, imageutil.Pixel{R: 100, G: 150, B: 200, A: 255})
	ctx := context.Background()

	cases := []struct {
		op     string
		params Params
		want   imageutil.Pixel
	}{
		{"invert", nil, imageutil.Pixel{R: 155, G: 105, B: 55, A: 255}},
		{"brightness", Params{"offset": int64(60)}, imageutil.Pixel{R: 160, G: 210, B: 255, A: 255}},
		{"contrast", Params{"factor": 0.5}, imageutil.Pixel{R: 50, G: 75, B: 100, A: 255}},
		{"threshold", Params{"threshold": 200}, imageutil.Pixel{A: 255}},
		{"threshold", nil, imageutil.Pixel{R: 255, G: 255, B: 255, A: 255}},
		{"tint", Params{"color": "#000000", "strength": 1.0}, imageutil.Pixel{A: 255}},
		{"noise", Params{"intensity": 0}, imageutil.Pixel{R: 100, G: 150, B: 200, A: 255}},
	}
	for _, tc := range cases {
		out, err := Apply(ctx, tc.op, img, tc.params, Env{})
		if err != nil {
			t.Errorf("%s failed: %v", tc.op, err)
			continue
		}
		if got := out.PixelAt(1, 1); got != tc.want {
			t.Errorf("%s %v: expected %v, got %v", tc.op, tc.params, tc.want, got)
		}
	}

	if _, err := Apply(ctx, "threshold", img, Params{"threshold": 300}, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestNoiseOperationSeeded(t *testing.T) {
	img := imageutil.CreateGradientImage(32, 4)
	ctx := context.Background()
	a, _ := Apply(ctx, "noise", img, Params{"intensity": 0.5, "seed": 9}, Env{})
	b, _ := Apply(ctx, "noise", img, Params{"intensity": 0.5, "seed": 9}, Env{})
	if d, _ := imageutil.MaxDiff(a, b); d != 0 {
		t.Errorf("Same seed should give the same noise, max diff %d", d)
	}
}

func TestGeometryOperations(t *testing.T) {
	img := imageutil.CreateGradientImage(40, 20)
	ctx := context.Background()

	cases := []struct {
		op     string
		params Params
		w, h   int
	}{
		{"rotate_right", nil, 20, 40},
		{"rotate_left", nil, 20, 40},
		{"flip_h", nil, 40, 20},
		{"flip_v", nil, 40, 20},
		{"resize", Params{"width": 20}, 20, 10},
		{"resize", Params{"height": 40, "interpolation": "bilinear"}, 80, 40},
		{"resize", Params{"width": 7, "height": 3}, 7, 3},
		{"crop", Params{"x": 10, "y": 5, "width": 100}, 30, 15},
		{"crop", nil, 40, 20},
	}
	for _, tc := range cases {
		out, err := Apply(ctx, tc.op, img, tc.params, Env{})
		if err != nil {
			t.Errorf("%s %v failed: %v", tc.op, tc.params, err)
			continue
		}
		if out.Width() != tc.w || out.Height() != tc.h {
			t.Errorf("%s %v: expected %dx%d, got %dx%d", tc.op, tc.params, tc.w, tc.h, out.Width(), out.Height())
		}
	}

	bad := []struct {
		op     string
		params Params
	}{
		{"resize", nil},
		{"resize", Params{"width": 5000}},
		{"resize", Params{"width": 10, "interpolation": "lanczos"}},
		{"crop", Params{"x": 41}},
	}
	for _, tc := range bad {
		if _, err := Apply(ctx, tc.op, img, tc.params, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
			t.Errorf("%s %v: expected ErrInvalidArgument, got %v", tc.op, tc.params, err)
		}
	}
}

func TestTextMaskOperation(t *testing.T) {
	img := imageutil.CreateSolidImage(80, 40, imageutil.Pixel{R: 255, A: 255})
	out, err := Apply(context.Background(), "text_mask", img, Params{"text": "Go"}, Env{})
	if err != nil {
		t.Fatalf("text_mask failed: %v", err)
	}
	if got := out.PixelAt(0, 0); got != (imageutil.Pixel{R: 255}) {
		t.Errorf("Expected transparent corner, got %v", got)
	}
	if _, err := Apply(context.Background(), "text_mask", img, nil, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Missing text: expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegisterCustomOperation(t *testing.T) {
	Register(NewOperation("test_fill", "Fill with red",
		func(_ context.Context, img *imageutil.Buffer, _ Params, _ Env) (*imageutil.Buffer, error) {
			return imageutil.CreateSolidImage(img.Width(), img.Height(), imageutil.Pixel{R: 255, A: 255}), nil
		}))
	t.Cleanup(func() { unregister("test_fill") })

	out, err := Apply(context.Background(), "TEST_FILL", imageutil.CreateGradientImage(3, 3), nil, Env{})
	if err != nil {
		t.Fatalf("test_fill failed: %v", err)
	}
	if got := out.PixelAt(2, 2); got != (imageutil.Pixel{R: 255, A: 255}) {
		t.Errorf("Expected red, got %v", got)
	}
}

func unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(operations, operationKey(name))
}

func TestRegisterConcurrentWithLookup(t *testing.T) {
	noop := func(_ context.Context, img *imageutil.Buffer, _ Params, _ Env) (*imageutil.Buffer, error) {
		return img, nil
	}
	const n = 50
	t.Cleanup(func() {
		for i := 0; i < n; i++ {
			unregister(fmt.Sprintf("test_concurrent_%d", i))
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Register(NewOperation(fmt.Sprintf("test_concurrent_%d", i), "no-op", noop))
		}()
		go func() {
			defer wg.Done()
			if _, ok := Lookup("kernel"); !ok {
				t.Error("Expected kernel to stay registered")
			}
			_ = Names()
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if _, ok := Lookup(fmt.Sprintf("test_concurrent_%d", i)); !ok {
			t.Errorf("Expected test_concurrent_%d to be registered", i)
		}
	}
}

func TestQuantizeOperation(t *testing.T) {
	img := imageutil.CreateGradientImage(16, 4)

	got, err := Apply(context.Background(), "quantize", img, Params{"palette": "mono"}, Env{})
	if err != nil {
		t.Fatalf("quantize failed: %v", err)
	}
	if p := got.PixelAt(0, 0); p.R != 0 {
		t.Errorf("Expected black at the dark end, got %+v", p)
	}
	if p := got.PixelAt(0, 15); p.R != 255 {
		t.Errorf("Expected white at the bright end, got %+v", p)
	}

	custom := Params{"palette": []any{"#ff0000", []any{0, 0, 255}}, "dither": true}
	got, err = Apply(context.Background(), "quantize", img, custom, Env{})
	if err != nil {
		t.Fatalf("quantize with custom palette failed: %v", err)
	}
	for x := 0; x < 16; x++ {
		if p := got.PixelAt(2, x); p.G != 0 || (p.R != 0) == (p.B != 0) {
			t.Fatalf("Expected pure red or blue at column %d, got %+v", x, p)
		}
	}

	for _, bad := range []Params{{"palette": "vga"}, {"palette": []any{}}, {"palette": 3}} {
		if _, err := Apply(context.Background(), "quantize", img, bad, Env{}); !errors.Is(err, imageutil.ErrInvalidArgument) {
			t.Errorf("%v: expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}
