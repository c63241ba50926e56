package shade

import (
	"testing"
)

func TestInvert(t *testing.T) {
	ctx := NewContext(1)
	e := &Invert{
		Fac:   &ConstScalar{Value: 1},
		Color: &ConstColor{Color: Vec3{0.2, 0.5, 1}},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vecNear(cols[0], Vec3{0.8, 0.5, 0}, 1e-6) {
		t.Errorf("full invert = %v", cols[0])
	}

	// A zero factor is the identity.
	e.Fac = &ConstScalar{Value: 0}
	cols, err = EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols[0] != (Vec3{0.2, 0.5, 1}) {
		t.Errorf("fac=0 invert = %v", cols[0])
	}
}

func TestGrayscale(t *testing.T) {
	ctx := NewContext(1)
	e := &Grayscale{Color: &ConstColor{Color: Vec3{1, 0, 0}}}
	vals, err := EvalScalar(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vals[0] != 0.2126 {
		t.Errorf("grayscale of red = %v, want 0.2126", vals[0])
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols[0] != (Vec3{0.2126, 0.2126, 0.2126}) {
		t.Errorf("grayscale as color = %v", cols[0])
	}
}

func TestClampRange(t *testing.T) {
	ctx := NewContext(3)
	if err := ctx.SetScalarAttr("v", []float32{-1, 0.5, 2}); err != nil {
		t.Fatal(err)
	}
	e := &Clamp{
		Value: &AttributeScalar{Name: "v"},
		Min:   &ConstScalar{Value: 0},
		Max:   &ConstScalar{Value: 1},
	}
	vals, err := EvalScalar(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0, 0.5, 1}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, vals[i], want[i])
		}
	}
}

func TestBrightContrast(t *testing.T) {
	ctx := NewContext(1)
	e := &BrightContrast{
		Color:      &ConstColor{Color: Vec3{0.5, 0.5, 0.5}},
		Brightness: &ConstScalar{Value: 0.1},
		Contrast:   &ConstScalar{Value: 0.4},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a = 1.4, b = 0.1 - 0.2 = -0.1 -> 1.4*0.5 - 0.1 = 0.6
	if !vecNear(cols[0], Vec3{0.6, 0.6, 0.6}, 1e-6) {
		t.Errorf("bright/contrast = %v", cols[0])
	}

	// The zero floor prevents negative channels at extreme contrast.
	e.Color = &ConstColor{Color: Vec3{0.05, 0.05, 0.05}}
	e.Brightness = &ConstScalar{Value: -1}
	cols, err = EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols[0] != (Vec3{}) {
		t.Errorf("floored result = %v, want black", cols[0])
	}
}

func TestGammaNonPositivePassthrough(t *testing.T) {
	ctx := NewContext(1)
	e := &Gamma{
		Color: &ConstColor{Color: Vec3{0.25, 0, -0.5}},
		Gamma: &ConstScalar{Value: 2},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vecNear(cols[0], Vec3{0.0625, 0, -0.5}, 1e-6) {
		t.Errorf("gamma = %v", cols[0])
	}
}

func TestHueSaturationIdentityDefaults(t *testing.T) {
	ctx := NewContext(1)
	in := Vec3{0.7, 0.3, 0.2}
	// Hue 0.5 is no rotation; unit saturation/value scale nothing.
	e := &HueSaturation{
		Hue:        &ConstScalar{Value: 0.5},
		Saturation: &ConstScalar{Value: 1},
		Value:      &ConstScalar{Value: 1},
		Fac:        &ConstScalar{Value: 1},
		Color:      &ConstColor{Color: in},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vecNear(cols[0], in, 1e-5) {
		t.Errorf("identity adjustment = %v, want %v", cols[0], in)
	}
}

func TestHueSaturationDesaturate(t *testing.T) {
	ctx := NewContext(1)
	e := &HueSaturation{
		Hue:        &ConstScalar{Value: 0.5},
		Saturation: &ConstScalar{Value: 0},
		Value:      &ConstScalar{Value: 1},
		Fac:        &ConstScalar{Value: 1},
		Color:      &ConstColor{Color: Vec3{0.8, 0.2, 0.2}},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Zero saturation leaves only the value channel.
	if !vecNear(cols[0], Vec3{0.8, 0.8, 0.8}, 1e-5) {
		t.Errorf("desaturated = %v, want gray 0.8", cols[0])
	}
}

func TestSeparateCombineRoundtrip(t *testing.T) {
	ctx := NewContext(1)
	src := &ConstColor{Color: Vec3{0.1, 0.6, 0.9}}

	r := &SeparateRGB{Channel: 0, Color: src}
	g := &SeparateRGB{Channel: 1, Color: src}
	b := &SeparateRGB{Channel: 2, Color: src}
	out := &CombineRGB{R: r, G: g, B: b}

	cols, err := EvalColor(out, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols[0] != (Vec3{0.1, 0.6, 0.9}) {
		t.Errorf("roundtrip = %v", cols[0])
	}
}

func TestSeparateHSVChannels(t *testing.T) {
	ctx := NewContext(1)
	src := &ConstColor{Color: Vec3{0, 1, 0}} // pure green

	h, err := EvalScalar(&SeparateHSV{Channel: 0, Color: src}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h[0] < 0.333 || h[0] > 0.334 {
		t.Errorf("hue of green = %v, want ~1/3", h[0])
	}
	s, err := EvalScalar(&SeparateHSV{Channel: 1, Color: src}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s[0] != 1 {
		t.Errorf("saturation of green = %v", s[0])
	}
}

func TestCombineHSVPrimaries(t *testing.T) {
	ctx := NewContext(1)
	e := &CombineHSV{
		H: &ConstScalar{Value: 2.0 / 3.0},
		S: &ConstScalar{Value: 1},
		V: &ConstScalar{Value: 1},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vecNear(cols[0], Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("HSV(2/3,1,1) = %v, want blue", cols[0])
	}
}
