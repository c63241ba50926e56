package main

import (
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 nodes, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Put valid code on line 1, broken code on line 2 so line info is
	// meaningful.
	source := "(+ 1 2)\n(output (rgb 1 0 0"
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. Baking without an output designation -> a clear error, no channels.
// ---------------------------------------------------------------------------

func TestE2EBakeWithoutOutput(t *testing.T) {
	app := NewApp()

	result := app.Bake(`(rgb 1 0 0)`, MeshInput{Elements: 1}, nil)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a material without output")
	}
	if !strings.Contains(result.Errors[0].Message, "no output") {
		t.Errorf("error should mention the missing output, got: %s", result.Errors[0].Message)
	}
	if len(result.Channels) != 0 {
		t.Errorf("expected 0 channels, got %d", len(result.Channels))
	}
}

// ---------------------------------------------------------------------------
// 4. Missing mesh attribute: graph reads "height" but the mesh carries no
//    such array -> the bake reports the failed channel by name.
// ---------------------------------------------------------------------------

func TestE2EBakeMissingAttribute(t *testing.T) {
	app := NewApp()

	result := app.Bake(`(output (attribute "height"))`, MeshInput{Elements: 2}, nil)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for the missing attribute")
	}
	msg := result.Errors[0].Message
	if !strings.Contains(msg, "height") {
		t.Errorf("error should name the attribute, got: %s", msg)
	}
	if !strings.Contains(msg, `channel "color"`) {
		t.Errorf("error should name the failed channel, got: %s", msg)
	}
}

// ---------------------------------------------------------------------------
// 5. Unknown scalar channel: requesting a channel with no matching named
//    node -> a clear error.
// ---------------------------------------------------------------------------

func TestE2EBakeUnknownScalarChannel(t *testing.T) {
	app := NewApp()

	result := app.Bake(`(output (rgb 1 0 0))`, MeshInput{Elements: 1}, []string{"sway"})

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for the unknown channel")
	}
	if !strings.Contains(result.Errors[0].Message, `"sway"`) {
		t.Errorf("error should name the channel, got: %s", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// 6. Mismatched attribute length: mesh declares 4 elements but supplies 3
//    heights -> context construction fails before any evaluation.
// ---------------------------------------------------------------------------

func TestE2EBakeMismatchedAttributeLength(t *testing.T) {
	app := NewApp()

	mesh := MeshInput{
		Elements: 4,
		Scalar:   map[string][]float32{"height": {0, 0.5, 1}},
	}
	result := app.Bake(`(output (attribute "height"))`, mesh, nil)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for the mismatched attribute length")
	}
	if !strings.Contains(result.Errors[0].Message, "height") {
		t.Errorf("error should name the attribute, got: %s", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// 7. Zero elements -> a clear error instead of an empty bake.
// ---------------------------------------------------------------------------

func TestE2EBakeZeroElements(t *testing.T) {
	app := NewApp()

	result := app.Bake(`(output (rgb 1 0 0))`, MeshInput{}, nil)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for zero elements")
	}
}

// ---------------------------------------------------------------------------
// 8. Determinism: repeated bakes of the same source and mesh produce
//    byte-identical channels.
// ---------------------------------------------------------------------------

func TestE2EBakeDeterministic(t *testing.T) {
	app := NewApp()

	source := `
(def h (attribute "height"))
(output (mix "MIX" h [0.1 0.2 0.3] [0.9 0.8 0.7]))
(reroute (math "SQRT" h) :name "mask")
`
	mesh := MeshInput{
		Elements: 3,
		Scalar:   map[string][]float32{"height": {0, 0.5, 1}},
	}

	first := app.Bake(source, mesh, []string{"mask"})
	if len(first.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", first.Errors)
	}

	for i := 0; i < 3; i++ {
		next := app.Bake(source, mesh, []string{"mask"})
		if len(next.Errors) > 0 {
			t.Fatalf("iteration %d: unexpected errors: %v", i, next.Errors)
		}
		if !reflect.DeepEqual(first.Channels, next.Channels) {
			t.Fatalf("iteration %d: channels differ from first bake", i)
		}
	}
}
