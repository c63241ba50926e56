package material

import (
	"strings"
	"testing"
)

func findMessage(errs []ValidationError, substr string) *ValidationError {
	for i := range errs {
		if strings.Contains(errs[i].Message, substr) {
			return &errs[i]
		}
	}
	return nil
}

func TestValidateCleanGraph(t *testing.T) {
	g := New("clean")
	rgb := g.NewNode(KindRGB, "color")
	inv := g.NewNode(KindInvert, "invert")
	if err := g.Connect(rgb, "Color", inv, "Color"); err != nil {
		t.Fatal(err)
	}

	if errs := Validate(g); len(errs) != 0 {
		t.Errorf("unexpected findings: %v", errs)
	}
	if err := ValidateErr(g); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	g := New("cyclic")
	m1 := g.NewNode(KindMath, "m1")
	m2 := g.NewNode(KindMath, "m2")
	if err := g.Connect(m1, "Value", m2, "Value1"); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(m2, "Value", m1, "Value1"); err != nil {
		t.Fatal(err)
	}

	errs := Validate(g)
	if findMessage(errs, "cycle") == nil {
		t.Errorf("cycle not reported: %v", errs)
	}
	if err := ValidateErr(g); err == nil {
		t.Error("ValidateErr returned nil for a cyclic graph")
	}
}

func TestValidateDanglingLink(t *testing.T) {
	g := New("dangling")
	rgb := g.NewNode(KindRGB, "color")
	inv := g.NewNode(KindInvert, "invert")
	if err := g.Connect(rgb, "Color", inv, "Color"); err != nil {
		t.Fatal(err)
	}
	delete(g.Nodes, rgb.ID)

	errs := Validate(g)
	if findMessage(errs, "source node does not exist") == nil {
		t.Errorf("dangling source not reported: %v", errs)
	}
}

func TestValidateDuplicateInputLinks(t *testing.T) {
	g := New("dup")
	a := g.NewNode(KindValue, "a")
	b := g.NewNode(KindValue, "b")
	m := g.NewNode(KindMath, "m")
	// Bypass Connect's replacement to author the invalid state directly.
	g.Links = append(g.Links,
		&Link{FromNode: a.ID, FromSocket: "Value", ToNode: m.ID, ToSocket: "Value1"},
		&Link{FromNode: b.ID, FromSocket: "Value", ToNode: m.ID, ToSocket: "Value1"},
	)

	errs := Validate(g)
	if findMessage(errs, "more than one link") == nil {
		t.Errorf("duplicate input not reported: %v", errs)
	}
}

func TestValidateRampStops(t *testing.T) {
	g := New("ramps")
	empty := g.NewNode(KindRamp, "empty")
	empty.Data = RampData{Interp: "LINEAR"}
	unordered := g.NewNode(KindRamp, "unordered")
	unordered.Data = RampData{
		Interp: "LINEAR",
		Stops: []RampStop{
			{Pos: 0.8, Color: Color{1, 1, 1, 1}},
			{Pos: 0.2, Color: Color{0, 0, 0, 1}},
		},
	}

	errs := Validate(g)
	if findMessage(errs, "no stops") == nil {
		t.Errorf("empty ramp not reported: %v", errs)
	}
	if findMessage(errs, "out of order") == nil {
		t.Errorf("unordered stops not reported: %v", errs)
	}
}

func TestValidateAttributeNameWarning(t *testing.T) {
	g := New("attrs")
	g.NewNode(KindAttribute, "unnamed")

	errs := Validate(g)
	found := findMessage(errs, "names no attribute")
	if found == nil {
		t.Fatalf("missing attribute name not reported: %v", errs)
	}
	if found.Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", found.Severity)
	}
	// Warnings do not block reification.
	if err := ValidateErr(g); err != nil {
		t.Errorf("warning escalated to error: %v", err)
	}
}

func TestValidateRecursesIntoGroups(t *testing.T) {
	sub := New("broken-sub")
	sub.NewNode(KindGroupOutput, "out")
	bad := sub.NewNode(KindRamp, "bad")
	bad.Data = RampData{Interp: "LINEAR"}

	g := New("main")
	g.NewGroupNode("Group", sub)

	errs := Validate(g)
	if findMessage(errs, "no stops") == nil {
		t.Errorf("sub-graph finding not surfaced: %v", errs)
	}
}

func TestValidateGroupWithoutSubGraph(t *testing.T) {
	g := New("main")
	g.NewNode(KindGroup, "empty")

	errs := Validate(g)
	if findMessage(errs, "no sub-graph") == nil {
		t.Errorf("missing sub-graph not reported: %v", errs)
	}
}

func TestValidateGroupWithoutOutput(t *testing.T) {
	sub := New("no-out")
	sub.NewNode(KindGroupInput, "in")

	g := New("main")
	g.NewGroupNode("Group", sub)

	errs := Validate(g)
	if findMessage(errs, "no group-output") == nil {
		t.Errorf("missing group output not reported: %v", errs)
	}
}
