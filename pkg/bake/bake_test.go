package bake

import (
	"errors"
	"strings"
	"testing"

	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/reify"
	"github.com/okani/shadebake/pkg/shade"
)

// buildConst returns a graph whose output reroute is fed by a constant color.
func buildConst(c material.Color) (*material.Graph, *material.Node) {
	g := material.New("test")
	rgb := g.NewNode(material.KindRGB, "")
	rgb.Data = material.RGBData{Color: c}
	out := g.NewNode(material.KindReroute, "Material Output")
	if err := g.Connect(rgb, "Color", out, "Input"); err != nil {
		panic(err)
	}
	return g, out
}

func TestBakeSingleColorChannel(t *testing.T) {
	g, out := buildConst(material.Color{1, 0, 0, 1})
	ctx := shade.NewContext(4)

	results, err := Bake(g, ctx, []Channel{ColorChannel("color", out, "Input")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok := results["color"]
	if !ok {
		t.Fatal("expected a color channel result")
	}
	if len(data.Color) != 4 {
		t.Fatalf("expected 4 colors, got %d", len(data.Color))
	}
	if data.Color[0] != (shade.Vec3{1, 0, 0}) {
		t.Errorf("color[0] = %v, want red", data.Color[0])
	}
	if len(data.Bytes) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(data.Bytes))
	}
	// Full red through the sRGB curve stays full red.
	if data.Bytes[0] != 255 || data.Bytes[1] != 0 || data.Bytes[2] != 0 {
		t.Errorf("bytes[0:3] = %v, want [255 0 0]", data.Bytes[:3])
	}
}

func TestBakeScalarChannel(t *testing.T) {
	g := material.New("test")
	v := g.NewNode(material.KindValue, "")
	v.Data = material.ValueData{Value: 0.5}
	out := g.NewNode(material.KindReroute, "sway")
	if err := g.Connect(v, "Value", out, "Input"); err != nil {
		t.Fatal(err)
	}
	ctx := shade.NewContext(3)

	results, err := Bake(g, ctx, []Channel{ScalarChannel("sway", out, "Input")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := results["sway"]
	if len(data.Scalar) != 3 || data.Scalar[0] != 0.5 {
		t.Fatalf("scalar = %v, want three 0.5s", data.Scalar)
	}
	// Scalar channels quantize linearly: 0.5 -> 128.
	if len(data.Bytes) != 3 || data.Bytes[0] != 128 {
		t.Errorf("bytes = %v, want three 128s", data.Bytes)
	}
}

func TestBakeMultipleChannels(t *testing.T) {
	g := material.New("test")
	rgb := g.NewNode(material.KindRGB, "")
	rgb.Data = material.RGBData{Color: material.Color{0, 1, 0, 1}}
	colorOut := g.NewNode(material.KindReroute, "color")
	if err := g.Connect(rgb, "Color", colorOut, "Input"); err != nil {
		t.Fatal(err)
	}
	one := g.NewNode(material.KindValue, "")
	one.Data = material.ValueData{Value: 1}
	alphaOut := g.NewNode(material.KindReroute, "alpha")
	if err := g.Connect(one, "Value", alphaOut, "Input"); err != nil {
		t.Fatal(err)
	}

	ctx := shade.NewContext(2)
	results, err := Bake(g, ctx, []Channel{
		ColorChannel("color", colorOut, "Input"),
		ScalarChannel("alpha", alphaOut, "Input"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(results))
	}
	if results["alpha"].Scalar[0] != 1 {
		t.Errorf("alpha = %v, want 1", results["alpha"].Scalar[0])
	}
}

func TestBakePartialFailure(t *testing.T) {
	g := material.New("test")
	attr := g.NewNode(material.KindAttribute, "moss")
	attr.Data = material.AttributeData{AttrName: "moss"}
	missing := g.NewNode(material.KindReroute, "missing")
	if err := g.Connect(attr, "Color", missing, "Input"); err != nil {
		t.Fatal(err)
	}
	quarter := g.NewNode(material.KindValue, "")
	quarter.Data = material.ValueData{Value: 0.25}
	okOut := g.NewNode(material.KindReroute, "ok")
	if err := g.Connect(quarter, "Value", okOut, "Input"); err != nil {
		t.Fatal(err)
	}

	// The context carries no "moss" attribute, so that channel fails.
	ctx := shade.NewContext(2)
	results, err := Bake(g, ctx, []Channel{
		ColorChannel("missing", missing, "Input"),
		ScalarChannel("ok", okOut, "Input"),
	})
	if err == nil {
		t.Fatal("expected an error for the missing attribute")
	}
	if !strings.Contains(err.Error(), `channel "missing"`) {
		t.Errorf("error should name the failed channel, got: %v", err)
	}
	var chErr *ChannelError
	if !errors.As(err, &chErr) {
		t.Fatalf("expected a ChannelError, got %T", err)
	}
	var attrErr *shade.MissingAttributeError
	if !errors.As(err, &attrErr) {
		t.Errorf("expected a MissingAttributeError inside, got: %v", err)
	}

	// The healthy channel still baked.
	data, ok := results["ok"]
	if !ok {
		t.Fatal("expected the ok channel to survive")
	}
	if data.Scalar[0] != 0.25 {
		t.Errorf("ok = %v, want 0.25", data.Scalar[0])
	}
}

func TestBakeLoweringFailure(t *testing.T) {
	g := material.New("test")
	a := g.NewNode(material.KindMath, "a")
	b := g.NewNode(material.KindMath, "b")
	if err := g.Connect(a, "Value", b, "Value1"); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(b, "Value", a, "Value1"); err != nil {
		t.Fatal(err)
	}
	out := g.NewNode(material.KindReroute, "out")
	if err := g.Connect(a, "Value", out, "Input"); err != nil {
		t.Fatal(err)
	}

	_, err := Bake(g, shade.NewContext(1), []Channel{ScalarChannel("out", out, "Input")})
	if err == nil {
		t.Fatal("expected lowering to fail on the cycle")
	}
	var cycleErr *reify.CycleError
	if !errors.As(err, &cycleErr) {
		t.Errorf("expected a CycleError, got: %v", err)
	}
}

func TestBakeNoChannels(t *testing.T) {
	g := material.New("test")
	if _, err := Bake(g, shade.NewContext(1), nil); err == nil {
		t.Fatal("expected an error for an empty channel list")
	}
}

func TestQuantizeColor(t *testing.T) {
	vals := []shade.Vec3{{0, 0.5, 1}, {-1, 2, 0.5}}

	linear := QuantizeColor(vals, false)
	want := []byte{0, 128, 255, 0, 255, 128}
	for i := range want {
		if linear[i] != want[i] {
			t.Errorf("linear[%d] = %d, want %d", i, linear[i], want[i])
		}
	}

	// Through the transfer curve, mid gray brightens: 0.5 -> 188.
	srgb := QuantizeColor(vals, true)
	if srgb[1] != 188 {
		t.Errorf("srgb mid gray = %d, want 188", srgb[1])
	}
	if srgb[0] != 0 || srgb[2] != 255 {
		t.Errorf("srgb endpoints = %d/%d, want 0/255", srgb[0], srgb[2])
	}
}
