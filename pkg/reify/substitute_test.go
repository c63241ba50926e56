package reify

import (
	"errors"
	"testing"

	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/shade"
)

// tintGroup builds a sub-graph exposing a Fac scalar and a Base color,
// mixing Base toward red by Fac.
func tintGroup() *material.Graph {
	sub := material.New("tint")
	in := sub.NewNode(material.KindGroupInput, "in")
	in.AddOutput("Fac", material.SocketScalar).DefaultValue = 0.5
	in.AddOutput("Base", material.SocketColor)

	red := sub.NewNode(material.KindRGB, "red")
	red.Data = material.RGBData{Color: material.Color{1, 0, 0, 1}}

	mix := sub.NewNode(material.KindMix, "mix")
	if err := sub.Connect(in, "Fac", mix, "Fac"); err != nil {
		panic(err)
	}
	if err := sub.Connect(in, "Base", mix, "Color1"); err != nil {
		panic(err)
	}
	if err := sub.Connect(red, "Color", mix, "Color2"); err != nil {
		panic(err)
	}

	out := sub.NewNode(material.KindGroupOutput, "out")
	out.AddInput("Color", material.SocketColor)
	if err := sub.Connect(mix, "Color", out, "Color"); err != nil {
		panic(err)
	}
	return sub
}

func TestGroupInstanceBindsInputs(t *testing.T) {
	g := material.New("main")
	v := g.NewNode(material.KindValue, "v")
	v.Data = material.ValueData{Value: 0.75}

	inst := g.NewGroupNode("Tint", tintGroup())
	if err := g.Connect(v, "Value", inst, "Fac"); err != nil {
		t.Fatal(err)
	}

	expr := reifyColorOutput(t, g, inst, "Color")
	group, ok := expr.(*shade.Invert).Color.(*shade.Group)
	if !ok {
		t.Fatalf("lowered to %T, want Group", expr.(*shade.Invert).Color)
	}
	if group.Name != "Tint" {
		t.Errorf("group name = %q", group.Name)
	}
	blend, ok := group.Inner.(*shade.Blend)
	if !ok {
		t.Fatalf("inner = %T, want Blend", group.Inner)
	}
	// The connected boundary input resolves to the caller's expression...
	fac, ok := blend.Fac.(*shade.ConstScalar)
	if !ok || fac.Value != 0.75 {
		t.Errorf("bound Fac = %#v, want caller constant 0.75", blend.Fac)
	}
	// ...and the unconnected one falls back to the boundary default.
	base, ok := blend.A.(*shade.ConstColor)
	if !ok {
		t.Errorf("unbound Base = %#v, want boundary default", blend.A)
	} else if base.Color != (shade.Vec3{}) {
		t.Errorf("boundary default = %v", base.Color)
	}
}

func TestGroupInstancedTwiceWithDifferentBindings(t *testing.T) {
	sub := tintGroup()
	g := material.New("main")

	a := g.NewGroupNode("A", sub)
	b := g.NewGroupNode("B", sub)
	v := g.NewNode(material.KindValue, "v")
	v.Data = material.ValueData{Value: 1}
	if err := g.Connect(v, "Value", b, "Fac"); err != nil {
		t.Fatal(err)
	}

	exprA := reifyColorOutput(t, g, a, "Color")
	exprB := reifyColorOutput(t, g, b, "Color")

	facA := exprA.(*shade.Invert).Color.(*shade.Group).Inner.(*shade.Blend).Fac.(*shade.ConstScalar)
	facB := exprB.(*shade.Invert).Color.(*shade.Group).Inner.(*shade.Blend).Fac.(*shade.ConstScalar)
	if facA.Value != 0.5 {
		t.Errorf("unbound instance Fac = %v, want boundary default 0.5", facA.Value)
	}
	if facB.Value != 1 {
		t.Errorf("bound instance Fac = %v, want 1", facB.Value)
	}
}

func TestNestedGroups(t *testing.T) {
	inner := tintGroup()

	// An outer group that wires its own boundary input through the inner
	// group instance.
	outer := material.New("outer")
	oin := outer.NewNode(material.KindGroupInput, "in")
	oin.AddOutput("Strength", material.SocketScalar).DefaultValue = 0.25
	inst := outer.NewGroupNode("Inner", inner)
	if err := outer.Connect(oin, "Strength", inst, "Fac"); err != nil {
		t.Fatal(err)
	}
	oout := outer.NewNode(material.KindGroupOutput, "out")
	oout.AddInput("Color", material.SocketColor)
	if err := outer.Connect(inst, "Color", oout, "Color"); err != nil {
		t.Fatal(err)
	}

	g := material.New("main")
	v := g.NewNode(material.KindValue, "v")
	v.Data = material.ValueData{Value: 0.9}
	top := g.NewGroupNode("Top", outer)
	if err := g.Connect(v, "Value", top, "Strength"); err != nil {
		t.Fatal(err)
	}

	expr := reifyColorOutput(t, g, top, "Color")
	outerGroup := expr.(*shade.Invert).Color.(*shade.Group)
	innerGroup, ok := outerGroup.Inner.(*shade.Group)
	if !ok {
		t.Fatalf("outer inner = %T, want nested Group", outerGroup.Inner)
	}
	fac, ok := innerGroup.Inner.(*shade.Blend).Fac.(*shade.ConstScalar)
	if !ok || fac.Value != 0.9 {
		t.Errorf("deep binding = %#v, want 0.9 threaded through both boundaries", innerGroup.Inner.(*shade.Blend).Fac)
	}
}

func TestRecursiveGroupFails(t *testing.T) {
	// A group whose sub-graph instances itself cannot terminate; global
	// node identity makes the traversal trip the cycle check.
	sub := material.New("recursive")
	out := sub.NewNode(material.KindGroupOutput, "out")
	out.AddInput("Color", material.SocketColor)
	self := sub.NewGroupNode("Self", sub)
	if err := sub.Connect(self, "Color", out, "Color"); err != nil {
		t.Fatal(err)
	}

	g := material.New("main")
	inst := g.NewGroupNode("Rec", sub)
	sink := sinkFor(g, inst, "Color")

	_, err := Reify(g, sink.ID, "Color")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestGroupWithoutOutputFails(t *testing.T) {
	sub := material.New("empty")
	g := material.New("main")
	inst := g.NewGroupNode("Empty", sub)
	inst.AddOutput("Color", material.SocketColor)
	sink := sinkFor(g, inst, "Color")

	_, err := Reify(g, sink.ID, "Color")
	var unsupported *UnsupportedNodeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedNodeError, got %v", err)
	}
}
