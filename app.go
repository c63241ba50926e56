package main

import (
	"fmt"

	"github.com/okani/shadebake/pkg/bake"
	"github.com/okani/shadebake/pkg/engine"
	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/shade"
)

// App wires the DSL engine to the bake pipeline. It backs the command-line
// interface, and its result types are JSON-serializable so callers can pipe
// the output to other tools.
type App struct {
	engine *engine.Engine
}

func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// MeshInput is the JSON-serializable per-element data a bake runs against.
// Color, position and normal arrays are flat float triplets.
type MeshInput struct {
	Elements int                  `json:"elements"`
	Scalar   map[string][]float32 `json:"scalar,omitempty"`
	Color    map[string][]float32 `json:"color,omitempty"`
	Position []float32            `json:"position,omitempty"`
	Normal   []float32            `json:"normal,omitempty"`
}

// ChannelOutput is one baked channel in a BakeResult.
type ChannelOutput struct {
	Name   string `json:"name"`
	Scalar bool   `json:"scalar"`
	Bytes  []byte `json:"bytes"`
}

// BakeResult is the JSON-serializable outcome of a bake run.
type BakeResult struct {
	Errors   []EvalErrorData `json:"errors"`
	Warnings []string        `json:"warnings"`
	Channels []ChannelOutput `json:"channels"`
}

// EvaluateResult is the JSON-serializable outcome of evaluating source
// without baking.
type EvaluateResult struct {
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []string        `json:"warnings"`
	NodeCount int             `json:"nodeCount"`
}

func convertErrors(evalErrs []engine.EvalError) []EvalErrorData {
	out := make([]EvalErrorData, 0, len(evalErrs))
	for _, e := range evalErrs {
		out = append(out, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	return out
}

// evaluate runs the engine and validation, returning the graph alongside
// the accumulated errors and warnings. The graph is nil when evaluation or
// validation blocked.
func (a *App) evaluate(source string) (*material.Graph, []EvalErrorData, []string) {
	errs := make([]EvalErrorData, 0)
	warnings := make([]string, 0)

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		errs = append(errs, EvalErrorData{Message: err.Error()})
		return nil, errs, warnings
	}
	errs = append(errs, convertErrors(evalErrs)...)
	if g == nil || len(errs) > 0 {
		return nil, errs, warnings
	}

	for _, f := range material.Validate(g) {
		if f.Severity == material.SeverityError {
			errs = append(errs, EvalErrorData{Message: f.Error()})
		} else {
			warnings = append(warnings, f.Error())
		}
	}
	if len(errs) > 0 {
		return nil, errs, warnings
	}
	return g, errs, warnings
}

// Evaluate parses and validates source without baking.
func (a *App) Evaluate(source string) EvaluateResult {
	g, errs, warnings := a.evaluate(source)
	result := EvaluateResult{Errors: errs, Warnings: warnings}
	if g != nil {
		result.NodeCount = g.NodeCount()
	}
	return result
}

// buildContext converts mesh input into an element context.
func buildContext(mesh MeshInput) (*shade.Context, error) {
	if mesh.Elements <= 0 {
		return nil, fmt.Errorf("mesh declares %d elements", mesh.Elements)
	}
	ctx := shade.NewContext(mesh.Elements)
	for name, data := range mesh.Scalar {
		if err := ctx.SetScalarAttr(name, data); err != nil {
			return nil, fmt.Errorf("scalar attribute %q: %w", name, err)
		}
	}
	for name, data := range mesh.Color {
		vecs, err := unflatten(data)
		if err != nil {
			return nil, fmt.Errorf("color attribute %q: %w", name, err)
		}
		if err := ctx.SetColorAttr(name, vecs); err != nil {
			return nil, fmt.Errorf("color attribute %q: %w", name, err)
		}
	}
	if mesh.Position != nil {
		vecs, err := unflatten(mesh.Position)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		if err := ctx.SetPosition(vecs); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
	}
	if mesh.Normal != nil {
		vecs, err := unflatten(mesh.Normal)
		if err != nil {
			return nil, fmt.Errorf("normal: %w", err)
		}
		if err := ctx.SetNormal(vecs); err != nil {
			return nil, fmt.Errorf("normal: %w", err)
		}
	}
	return ctx, nil
}

func unflatten(flat []float32) ([]shade.Vec3, error) {
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("array length %d is not a multiple of 3", len(flat))
	}
	vecs := make([]shade.Vec3, len(flat)/3)
	for i := range vecs {
		vecs[i] = shade.Vec3{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return vecs, nil
}

// Bake evaluates source and bakes its color output plus any named scalar
// channels against the mesh. Scalar channel names refer to named nodes in
// the graph, e.g. (reroute ... :name "sway").
func (a *App) Bake(source string, mesh MeshInput, scalarChannels []string) BakeResult {
	result := BakeResult{
		Errors:   make([]EvalErrorData, 0),
		Warnings: make([]string, 0),
		Channels: make([]ChannelOutput, 0),
	}

	g, errs, warnings := a.evaluate(source)
	result.Errors = errs
	result.Warnings = warnings
	if g == nil {
		return result
	}

	ctx, err := buildContext(mesh)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	out := g.Lookup(engine.OutputNodeName)
	if out == nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "material declares no output"})
		return result
	}
	channels := []bake.Channel{bake.ColorChannel("color", out, "Input")}
	for _, name := range scalarChannels {
		n := g.Lookup(name)
		if n == nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("no node named %q for scalar channel", name),
			})
			return result
		}
		channels = append(channels, bake.ScalarChannel(name, n, "Input"))
	}

	baked, err := bake.Bake(g, ctx, channels)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}
	for _, ch := range channels {
		data, ok := baked[ch.Name]
		if !ok {
			continue
		}
		result.Channels = append(result.Channels, ChannelOutput{
			Name:   ch.Name,
			Scalar: ch.Scalar,
			Bytes:  data.Bytes,
		})
	}
	return result
}
