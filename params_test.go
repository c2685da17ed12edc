package imagekit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wbrown/imagekit/imageutil"
)

func TestParamsFloat(t *testing.T) {
	p := Params{"a": 1.5, "b": int64(3), "c": 4, "d": "x"}
	cases := []struct {
		key  string
		want float64
	}{
		{"a", 1.5},
		{"b", 3},
		{"c", 4},
		{"missing", 7},
	}
	for _, tc := range cases {
		got, err := p.Float(tc.key, 7)
		if err != nil || got != tc.want {
			t.Errorf("Float(%q): expected %v, got %v (%v)", tc.key, tc.want, got, err)
		}
	}
	if _, err := p.Float("d", 0); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestParamsInt(t *testing.T) {
	p := Params{"toml": int64(12), "yaml": 12, "float": 12.0, "frac": 12.5}
	for _, key := range []string{"toml", "yaml", "float"} {
		if got, err := p.Int(key, 0); err != nil || got != 12 {
			t.Errorf("Int(%q): expected 12, got %d (%v)", key, got, err)
		}
	}
	if _, err := p.Int("frac", 0); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for fractional value, got %v", err)
	}
	if got, _ := p.Int("missing", -4); got != -4 {
		t.Errorf("Expected default -4, got %d", got)
	}
}

func TestParamsStringBool(t *testing.T) {
	p := Params{"s": "hello", "b": true, "n": nil}
	if got, _ := p.String("s", ""); got != "hello" {
		t.Errorf("Expected hello, got %q", got)
	}
	if got, _ := p.String("n", "def"); got != "def" {
		t.Errorf("nil should read as missing, got %q", got)
	}
	if _, err := p.String("b", ""); err == nil {
		t.Error("Expected error reading a bool as string")
	}
	if got, _ := p.Bool("b", false); !got {
		t.Error("Expected true")
	}
	if _, err := p.Bool("s", false); err == nil {
		t.Error("Expected error reading a string as bool")
	}
}

func TestParamsMatrix(t *testing.T) {
	want := [][]float64{{1, 2}, {3, 4}}
	cases := map[string]any{
		"nested any":  []any{[]any{1, 2.0}, []any{int64(3), 4}},
		"text":        "1,2; 3,4",
		"float slice": [][]float64{{1, 2}, {3, 4}},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Params{"m": v}.Matrix("m")
			if err != nil {
				t.Fatalf("Matrix failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Matrix mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got, err := (Params{}).Matrix("m"); got != nil || err != nil {
		t.Errorf("Missing matrix should be nil, got %v (%v)", got, err)
	}
	if _, err := (Params{"m": []any{1, 2}}).Matrix("m"); !errors.Is(err, imageutil.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for flat list, got %v", err)
	}
}

func TestParamsColor(t *testing.T) {
	def := imageutil.Pixel{R: 1, G: 2, B: 3, A: 4}
	cases := []struct {
		in   any
		want imageutil.Pixel
	}{
		{"#ff8000", imageutil.Pixel{R: 255, G: 128, B: 0, A: 255}},
		{"10203040", imageutil.Pixel{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{[]any{10, 20, 30}, imageutil.Pixel{R: 10, G: 20, B: 30, A: 255}},
		{[]any{int64(10), 20.0, 30, 40}, imageutil.Pixel{R: 10, G: 20, B: 30, A: 40}},
	}
	for _, tc := range cases {
		got, err := Params{"c": tc.in}.Color("c", def)
		if err != nil || got != tc.want {
			t.Errorf("Color(%v): expected %v, got %v (%v)", tc.in, tc.want, got, err)
		}
	}
	if got, _ := (Params{}).Color("c", def); got != def {
		t.Errorf("Expected default, got %v", got)
	}
	for _, bad := range []any{"#12", "#gggggg", []any{1, 2}, []any{1, 2, 300}, 5} {
		if _, err := (Params{"c": bad}).Color("c", def); !errors.Is(err, imageutil.ErrInvalidArgument) {
			t.Errorf("Color(%v): expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}

func TestParamsPalette(t *testing.T) {
	got, err := Params{"p": "gray4"}.Palette("p", nil)
	if err != nil || !cmp.Equal(got, imageutil.PaletteGray4) {
		t.Errorf("Expected gray4 palette, got %v (%v)", got, err)
	}

	got, err = Params{"p": []any{"#000000", []any{255, 255, 255}}}.Palette("p", nil)
	if err != nil || !cmp.Equal(got, imageutil.PaletteMono) {
		t.Errorf("Expected mono palette, got %v (%v)", got, err)
	}

	if got, _ := (Params{}).Palette("p", imageutil.PaletteMono); !cmp.Equal(got, imageutil.PaletteMono) {
		t.Errorf("Expected default, got %v", got)
	}
	for _, bad := range []any{"nope", []any{}, []any{"#12"}, 7} {
		if _, err := (Params{"p": bad}).Palette("p", nil); !errors.Is(err, imageutil.ErrInvalidArgument) {
			t.Errorf("Palette(%v): expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}
