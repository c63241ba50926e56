// Package shade defines the expression IR produced by reifying a material
// graph, and evaluates it over the elements of a mesh. An Expr is a pure,
// immutable value: evaluating it has no side effects, never mutates the
// element context, and yields bit-identical arrays on repeated calls.
//
// Every variant can be evaluated as either a color (N x 3) or a scalar
// (N x 1). A variant that is naturally one kind synthesizes the other via
// fixed total coercions: colors collapse to Rec. 709 luminance, scalars
// broadcast to all three channels.
package shade

import "github.com/okani/shadebake/pkg/colorspace"

// Vec3 is one per-element triple. It holds both colors and vectors; the
// node formulas make no distinction beyond which operations they apply.
type Vec3 [3]float32

// Expr is the expression IR node. The variant set is closed: evaluation
// methods are unexported so no type outside this package can implement it,
// which keeps the reifier/evaluator catalogs in lockstep.
type Expr interface {
	evalColor(ctx *Context) ([]Vec3, error)
	evalScalar(ctx *Context) ([]float32, error)
}

// EvalColor evaluates e over every element of ctx, producing one RGB triple
// per element.
func EvalColor(e Expr, ctx *Context) ([]Vec3, error) {
	return e.evalColor(ctx)
}

// EvalScalar evaluates e over every element of ctx, producing one value per
// element.
func EvalScalar(e Expr, ctx *Context) ([]float32, error) {
	return e.evalScalar(ctx)
}

// ---------------------------------------------------------------------------
// Leaf variants
// ---------------------------------------------------------------------------

// ConstColor is a constant RGB color.
type ConstColor struct {
	Color Vec3
}

func (e *ConstColor) evalColor(ctx *Context) ([]Vec3, error) {
	out := make([]Vec3, ctx.Len())
	for i := range out {
		out[i] = e.Color
	}
	return out, nil
}

func (e *ConstColor) evalScalar(ctx *Context) ([]float32, error) {
	lum := colorspace.Luminance(e.Color[0], e.Color[1], e.Color[2])
	out := make([]float32, ctx.Len())
	for i := range out {
		out[i] = lum
	}
	return out, nil
}

// ConstScalar is a constant value.
type ConstScalar struct {
	Value float32
}

func (e *ConstScalar) evalColor(ctx *Context) ([]Vec3, error) {
	c := Vec3{e.Value, e.Value, e.Value}
	out := make([]Vec3, ctx.Len())
	for i := range out {
		out[i] = c
	}
	return out, nil
}

func (e *ConstScalar) evalScalar(ctx *Context) ([]float32, error) {
	out := make([]float32, ctx.Len())
	for i := range out {
		out[i] = e.Value
	}
	return out, nil
}

// AttributeColor reads a named color attribute from the element context.
type AttributeColor struct {
	Name string
}

func (e *AttributeColor) evalColor(ctx *Context) ([]Vec3, error) {
	return ctx.colorAttr(e.Name)
}

func (e *AttributeColor) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := ctx.colorAttr(e.Name)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// AttributeScalar reads a named scalar attribute from the element context.
type AttributeScalar struct {
	Name string
}

func (e *AttributeScalar) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := ctx.scalarAttr(e.Name)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *AttributeScalar) evalScalar(ctx *Context) ([]float32, error) {
	return ctx.scalarAttr(e.Name)
}

// Position reads the per-element position array.
type Position struct{}

func (e *Position) evalColor(ctx *Context) ([]Vec3, error) {
	return ctx.positionArray()
}

func (e *Position) evalScalar(ctx *Context) ([]float32, error) {
	pos, err := ctx.positionArray()
	if err != nil {
		return nil, err
	}
	return luminance(pos), nil
}

// Normal reads the per-element normal array.
type Normal struct{}

func (e *Normal) evalColor(ctx *Context) ([]Vec3, error) {
	return ctx.normalArray()
}

func (e *Normal) evalScalar(ctx *Context) ([]float32, error) {
	n, err := ctx.normalArray()
	if err != nil {
		return nil, err
	}
	return luminance(n), nil
}

// ---------------------------------------------------------------------------
// Group provenance
// ---------------------------------------------------------------------------

// Group wraps the expression reified from a node-group instance. It is a
// structural no-op at evaluation time, retained so nested-group provenance
// stays inspectable in the tree.
type Group struct {
	Name  string
	Inner Expr
}

func (e *Group) evalColor(ctx *Context) ([]Vec3, error) {
	return e.Inner.evalColor(ctx)
}

func (e *Group) evalScalar(ctx *Context) ([]float32, error) {
	return e.Inner.evalScalar(ctx)
}

// GroupInput is a placeholder for a group boundary input that has not yet
// been bound to a caller expression. The reifier substitutes every one of
// these before returning; reaching one at evaluation time means the
// substitution pass was skipped or incomplete.
type GroupInput struct {
	Socket string
}

func (e *GroupInput) evalColor(ctx *Context) ([]Vec3, error) {
	return nil, &UnresolvedInputError{Socket: e.Socket}
}

func (e *GroupInput) evalScalar(ctx *Context) ([]float32, error) {
	return nil, &UnresolvedInputError{Socket: e.Socket}
}

// ---------------------------------------------------------------------------
// Coercion helpers
// ---------------------------------------------------------------------------

// luminance collapses colors to scalars with the Rec. 709 weights.
func luminance(cols []Vec3) []float32 {
	out := make([]float32, len(cols))
	for i, c := range cols {
		out[i] = colorspace.Luminance(c[0], c[1], c[2])
	}
	return out
}

// broadcast replicates scalars across all three channels.
func broadcast(vals []float32) []Vec3 {
	out := make([]Vec3, len(vals))
	for i, v := range vals {
		out[i] = Vec3{v, v, v}
	}
	return out
}
