// Package reify lowers a material graph into a shade.Expr tree, starting
// from a chosen socket and walking links backwards through the graph.
//
// Cycle detection is path-scoped, not global: the seen-set grows along a
// single traversal path and is never shared between sibling branches, so a
// diamond-shaped graph reifies (and later evaluates) the shared node once
// per branch while true feedback loops always fail. Group instances are
// lowered in two passes: the sub-graph first, with boundary inputs left as
// placeholders, then a substitution pass that binds each placeholder to the
// expression the enclosing graph supplies.
//
// Reification never mutates the graph and performs no I/O.
package reify

import (
	"maps"

	"github.com/pkg/errors"

	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/shade"
)

// seenSet tracks the node IDs on the current traversal path.
type seenSet map[material.NodeID]bool

// with returns a copy of the set extended with id. Copying keeps the set
// path-scoped: additions made below one branch never leak into a sibling.
func (s seenSet) with(id material.NodeID) seenSet {
	next := make(seenSet, len(s)+1)
	maps.Copy(next, s)
	next[id] = true
	return next
}

// Reify lowers the expression feeding the named input socket of the given
// node. An unconnected socket lowers to its default constant.
func Reify(g *material.Graph, node material.NodeID, input string) (shade.Expr, error) {
	n := g.Get(node)
	if n == nil {
		return nil, errors.Errorf("reify: graph %q has no node %s", g.Name, node.Short())
	}
	sock := n.Input(input)
	if sock == nil {
		return nil, &UnsupportedSocketError{Node: node, Socket: input}
	}
	expr, err := reifyInput(g, n, sock, seenSet{})
	if err != nil {
		return nil, errors.Wrapf(err, "material %q, socket %s.%s", g.Name, n.Name, input)
	}
	return expr, nil
}

// reifyInput resolves the single link (if any) feeding an input socket and
// recurses into its source; with no link the socket's default constant is
// returned.
func reifyInput(g *material.Graph, n *material.Node, sock *material.Socket, seen seenSet) (shade.Expr, error) {
	link := g.LinkInto(n.ID, sock.Name)
	if link == nil {
		return defaultExpr(sock), nil
	}
	src := g.Get(link.FromNode)
	if src == nil {
		return nil, errors.Errorf("reify: link from missing node %s", link.FromNode.Short())
	}
	return reifyOutput(g, src, link.FromSocket, seen)
}

func defaultExpr(sock *material.Socket) shade.Expr {
	if sock.Kind == material.SocketColor {
		c := sock.DefaultColor
		return &shade.ConstColor{Color: shade.Vec3{c[0], c[1], c[2]}}
	}
	return &shade.ConstScalar{Value: sock.DefaultValue}
}

// inputReifier reifies named input sockets of one node under a fixed
// seen-set, stopping at the first failure.
type inputReifier struct {
	g    *material.Graph
	n    *material.Node
	seen seenSet
	err  error
}

func (r *inputReifier) in(name string) shade.Expr {
	if r.err != nil {
		return nil
	}
	sock := r.n.Input(name)
	if sock == nil {
		r.err = &UnsupportedSocketError{Node: r.n.ID, Socket: name}
		return nil
	}
	var expr shade.Expr
	expr, r.err = reifyInput(r.g, r.n, sock, r.seen)
	return expr
}

// reifyOutput dispatches on the source node's kind and builds the matching
// expression variant, recursively reifying the node's own inputs.
func reifyOutput(g *material.Graph, n *material.Node, socket string, seen seenSet) (shade.Expr, error) {
	if seen[n.ID] {
		return nil, &CycleError{Node: n.ID}
	}
	seen = seen.with(n.ID)
	r := &inputReifier{g: g, n: n, seen: seen}

	badSocket := func() (shade.Expr, error) {
		return nil, &UnsupportedSocketError{Node: n.ID, Socket: socket}
	}

	var expr shade.Expr
	switch n.Kind {
	case material.KindRGB:
		if socket != "Color" {
			return badSocket()
		}
		d := n.Data.(material.RGBData)
		expr = &shade.ConstColor{Color: shade.Vec3{d.Color[0], d.Color[1], d.Color[2]}}

	case material.KindValue:
		if socket != "Value" {
			return badSocket()
		}
		d := n.Data.(material.ValueData)
		expr = &shade.ConstScalar{Value: d.Value}

	case material.KindAttribute:
		d := n.Data.(material.AttributeData)
		switch socket {
		case "Color":
			expr = &shade.AttributeColor{Name: d.AttrName}
		case "Fac":
			expr = &shade.AttributeScalar{Name: d.AttrName}
		default:
			return badSocket()
		}

	case material.KindGeometry:
		switch socket {
		case "Position":
			expr = &shade.Position{}
		case "Normal":
			expr = &shade.Normal{}
		default:
			return badSocket()
		}

	case material.KindMath:
		if socket != "Value" {
			return badSocket()
		}
		d := n.Data.(material.MathData)
		expr = &shade.Math{
			Op:    d.Op,
			Clamp: d.Clamp,
			A:     r.in("Value1"),
			B:     r.in("Value2"),
			C:     r.in("Value3"),
		}

	case material.KindVectorMath:
		// Both the Vector and Value outputs lower to the same variant; the
		// evaluator picks the natural result kind per operation.
		if socket != "Vector" && socket != "Value" {
			return badSocket()
		}
		d := n.Data.(material.VectorMathData)
		expr = &shade.VectorMath{
			Op:    d.Op,
			A:     r.in("Vector1"),
			B:     r.in("Vector2"),
			C:     r.in("Vector3"),
			Scale: r.in("Scale"),
		}

	case material.KindMix:
		if socket != "Color" {
			return badSocket()
		}
		d := n.Data.(material.MixData)
		expr = &shade.Blend{
			Mode:  d.Mode,
			Clamp: d.Clamp,
			Fac:   r.in("Fac"),
			A:     r.in("Color1"),
			B:     r.in("Color2"),
		}

	case material.KindInvert:
		if socket != "Color" {
			return badSocket()
		}
		expr = &shade.Invert{Fac: r.in("Fac"), Color: r.in("Color")}

	case material.KindShadeToBW:
		if socket != "Val" {
			return badSocket()
		}
		expr = &shade.Grayscale{Color: r.in("Color")}

	case material.KindClamp:
		if socket != "Result" {
			return badSocket()
		}
		d := n.Data.(material.ClampData)
		if d.Mode != "MINMAX" {
			return nil, &UnsupportedNodeError{Node: n.ID, Kind: n.Kind, Reason: "clamp mode " + d.Mode}
		}
		expr = &shade.Clamp{Value: r.in("Value"), Min: r.in("Min"), Max: r.in("Max")}

	case material.KindBrightContrast:
		if socket != "Color" {
			return badSocket()
		}
		expr = &shade.BrightContrast{
			Color:      r.in("Color"),
			Brightness: r.in("Bright"),
			Contrast:   r.in("Contrast"),
		}

	case material.KindGamma:
		if socket != "Color" {
			return badSocket()
		}
		expr = &shade.Gamma{Color: r.in("Color"), Gamma: r.in("Gamma")}

	case material.KindSeparateRGB:
		ch, ok := channelIndex(socket, "R", "G", "B")
		if !ok {
			return badSocket()
		}
		expr = &shade.SeparateRGB{Channel: ch, Color: r.in("Image")}

	case material.KindSeparateXYZ:
		ch, ok := channelIndex(socket, "X", "Y", "Z")
		if !ok {
			return badSocket()
		}
		expr = &shade.SeparateXYZ{Channel: ch, Vector: r.in("Vector")}

	case material.KindSeparateHSV:
		ch, ok := channelIndex(socket, "H", "S", "V")
		if !ok {
			return badSocket()
		}
		expr = &shade.SeparateHSV{Channel: ch, Color: r.in("Color")}

	case material.KindCombineRGB:
		if socket != "Image" {
			return badSocket()
		}
		expr = &shade.CombineRGB{R: r.in("R"), G: r.in("G"), B: r.in("B")}

	case material.KindCombineXYZ:
		if socket != "Vector" {
			return badSocket()
		}
		expr = &shade.CombineXYZ{X: r.in("X"), Y: r.in("Y"), Z: r.in("Z")}

	case material.KindCombineHSV:
		if socket != "Color" {
			return badSocket()
		}
		expr = &shade.CombineHSV{H: r.in("H"), S: r.in("S"), V: r.in("V")}

	case material.KindRamp:
		if socket != "Color" && socket != "Alpha" {
			return badSocket()
		}
		d := n.Data.(material.RampData)
		stops := make([]shade.RampStop, len(d.Stops))
		for i, s := range d.Stops {
			stops[i] = shade.RampStop{Pos: s.Pos, Color: s.Color}
		}
		expr = &shade.Ramp{
			Stops:  stops,
			Interp: d.Interp,
			Fac:    r.in("Fac"),
			Alpha:  socket == "Alpha",
		}

	case material.KindMapRange:
		if socket != "Result" {
			return badSocket()
		}
		d := n.Data.(material.MapRangeData)
		expr = &shade.MapRange{
			Interp:  d.Interp,
			Clamp:   d.Clamp,
			Value:   r.in("Value"),
			FromMin: r.in("FromMin"),
			FromMax: r.in("FromMax"),
			ToMin:   r.in("ToMin"),
			ToMax:   r.in("ToMax"),
			Steps:   r.in("Steps"),
		}

	case material.KindHueSaturation:
		if socket != "Color" {
			return badSocket()
		}
		expr = &shade.HueSaturation{
			Hue:        r.in("Hue"),
			Saturation: r.in("Saturation"),
			Value:      r.in("Value"),
			Fac:        r.in("Fac"),
			Color:      r.in("Color"),
		}

	case material.KindReroute:
		if socket != "Output" {
			return badSocket()
		}
		return reifyInput(g, n, n.Input("Input"), seen)

	case material.KindGroupInput:
		// A reference to the sub-graph boundary; resolved later by the
		// substitution pass against the instancing node's bindings.
		expr = &shade.GroupInput{Socket: socket}

	case material.KindGroup:
		return reifyGroup(g, n, socket, seen)

	default:
		return nil, &UnsupportedNodeError{Node: n.ID, Kind: n.Kind}
	}

	if r.err != nil {
		return nil, r.err
	}
	return expr, nil
}

// reifyGroup lowers a group-instance node: first the sub-graph from its
// designated output, then a substitution pass binding every boundary
// placeholder to the expression the instance supplies from the enclosing
// graph (under the enclosing seen-set).
func reifyGroup(g *material.Graph, n *material.Node, socket string, seen seenSet) (shade.Expr, error) {
	d, ok := n.Data.(material.GroupData)
	if !ok || d.Graph == nil {
		return nil, &UnsupportedNodeError{Node: n.ID, Kind: n.Kind, Reason: "missing sub-graph"}
	}
	out := d.Graph.GroupOutputNode()
	if out == nil {
		return nil, &UnsupportedNodeError{Node: n.ID, Kind: n.Kind, Reason: "sub-graph has no group output"}
	}
	sock := out.Input(socket)
	if sock == nil {
		return nil, &UnsupportedSocketError{Node: n.ID, Socket: socket}
	}
	inner, err := reifyInput(d.Graph, out, sock, seen)
	if err != nil {
		return nil, err
	}
	bound, err := substitute(inner, &bindingContext{graph: g, instance: n, seen: seen})
	if err != nil {
		return nil, err
	}
	return &shade.Group{Name: n.Name, Inner: bound}, nil
}

func channelIndex(socket, a, b, c string) (int, bool) {
	switch socket {
	case a:
		return 0, true
	case b:
		return 1, true
	case c:
		return 2, true
	}
	return 0, false
}
