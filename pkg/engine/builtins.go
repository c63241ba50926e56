package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/okani/shadebake/pkg/material"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms material Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: map-range -> map_range
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef denotes one output socket of a node already added to the
// graph under construction. Every node-constructing builtin returns one.
type sexpNodeRef struct {
	node   *material.Node
	socket string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.node.Name != "" {
		return fmt.Sprintf("(noderef %q %s)", n.node.Name, n.socket)
	}
	return fmt.Sprintf("(noderef %s %s)", n.node.ID.Short(), n.socket)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpGroupRef wraps a finished group template so it can be instanced.
type sexpGroupRef struct {
	graph *material.Graph
}

func (g *sexpGroupRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(group %q)", g.graph.Name)
}
func (g *sexpGroupRef) Type() *zygo.RegisteredType { return nil }

// sexpStop wraps one gradient control point built by the stop builtin.
type sexpStop struct {
	stop material.RampStop
}

func (s *sexpStop) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(stop %.3f)", s.stop.Pos)
}
func (s *sexpStop) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat32 extracts a float32 from a Sexp (SexpInt or SexpFloat).
func toFloat32(s zygo.Sexp) (float32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float32(v.Val), nil
	case *zygo.SexpFloat:
		return float32(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp; a bare keyword flag counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toColor extracts an RGBA color from an array of 3 or 4 numbers or from a
// single gray level.
func toColor(s zygo.Sexp) (material.Color, error) {
	if f, err := toFloat32(s); err == nil {
		return material.Color{f, f, f, 1}, nil
	}
	arr, ok := s.(*zygo.SexpArray)
	if !ok {
		return material.Color{}, fmt.Errorf("expected color array or number, got %T (%s)", s, s.SexpString(nil))
	}
	if len(arr.Val) != 3 && len(arr.Val) != 4 {
		return material.Color{}, fmt.Errorf("color needs 3 or 4 components, got %d", len(arr.Val))
	}
	c := material.Color{0, 0, 0, 1}
	for i, comp := range arr.Val {
		f, err := toFloat32(comp)
		if err != nil {
			return material.Color{}, fmt.Errorf("color component %d: %w", i, err)
		}
		c[i] = f
	}
	return c, nil
}

// toNodeRef extracts a node reference.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder tracks the graph under construction. group-begin pushes a fresh
// sub-graph so the node builtins target it until the matching group-end.
type builder struct {
	root  *material.Graph
	stack []*material.Graph
}

func newBuilder(root *material.Graph) *builder {
	return &builder{root: root, stack: []*material.Graph{root}}
}

func (b *builder) current() *material.Graph {
	return b.stack[len(b.stack)-1]
}

func (b *builder) push(g *material.Graph) {
	b.stack = append(b.stack, g)
}

func (b *builder) pop() *material.Graph {
	g := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return g
}

func (b *builder) depth() int {
	return len(b.stack)
}

// bindInput wires one input socket of target from a DSL argument: a node
// reference connects, a number or color array overrides the socket default.
func bindInput(g *material.Graph, target *material.Node, input string, v zygo.Sexp) error {
	sock := target.Input(input)
	if sock == nil {
		return fmt.Errorf("no input socket %q", input)
	}
	switch arg := v.(type) {
	case *sexpNodeRef:
		return g.Connect(arg.node, arg.socket, target, input)
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, err := toFloat32(arg)
		if err != nil {
			return err
		}
		if sock.Kind == material.SocketScalar {
			sock.DefaultValue = f
		} else {
			sock.DefaultColor = material.Color{f, f, f, 1}
		}
		return nil
	case *zygo.SexpArray:
		c, err := toColor(arg)
		if err != nil {
			return err
		}
		if sock.Kind != material.SocketColor {
			return fmt.Errorf("socket %q takes a scalar, not a color", input)
		}
		sock.DefaultColor = c
		return nil
	}
	return fmt.Errorf("socket %q: expected node reference, number, or color array, got %T", input, v)
}

// bindInputs wires each present keyword to the input socket of the same
// name, and refuses keywords naming no socket.
func bindInputs(g *material.Graph, target *material.Node, pa kwArgs, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	for name, v := range pa.kw {
		if skipped[name] {
			continue
		}
		if err := bindInput(g, target, name, v); err != nil {
			return err
		}
	}
	return nil
}

// refName reads the optional :name keyword.
func refName(pa kwArgs) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	return toString(v)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the material DSL builtins into a zygomys
// environment. The builtins populate the builder's graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (rgb 0.8 0.2 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("rgb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("rgb requires exactly 3 components, got %d", len(pa.positional))
		}
		var c material.Color
		c[3] = 1
		for i, arg := range pa.positional {
			f, err := toFloat32(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgb: component %d: %w", i, err)
			}
			c[i] = f
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rgb: name: %w", err)
		}
		n := b.current().NewNode(material.KindRGB, nm)
		n.Data = material.RGBData{Color: c}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (value 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("value requires exactly 1 argument, got %d", len(pa.positional))
		}
		f, err := toFloat32(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("value: %w", err)
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("value: name: %w", err)
		}
		n := b.current().NewNode(material.KindValue, nm)
		n.Data = material.ValueData{Value: f}
		return &sexpNodeRef{node: n, socket: "Value"}, nil
	})

	// -----------------------------------------------------------------------
	// (attribute "density")
	// -----------------------------------------------------------------------
	env.AddFunction("attribute", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("attribute requires a name argument")
		}
		attr, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attribute: %w", err)
		}
		n := b.current().NewNode(material.KindAttribute, attr)
		n.Data = material.AttributeData{AttrName: attr}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (position) / (normal)
	// -----------------------------------------------------------------------
	env.AddFunction("position", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n := b.current().NewNode(material.KindGeometry, "")
		return &sexpNodeRef{node: n, socket: "Position"}, nil
	})
	env.AddFunction("normal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n := b.current().NewNode(material.KindGeometry, "")
		return &sexpNodeRef{node: n, socket: "Normal"}, nil
	})

	// -----------------------------------------------------------------------
	// (socket ref "Fac") -- select another output socket of the same node
	// -----------------------------------------------------------------------
	env.AddFunction("socket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("socket requires a node reference and a socket name")
		}
		ref, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("socket: %w", err)
		}
		sockName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("socket: %w", err)
		}
		if ref.node.Output(sockName) == nil {
			return zygo.SexpNull, fmt.Errorf("socket: node has no output %q", sockName)
		}
		return &sexpNodeRef{node: ref.node, socket: sockName}, nil
	})

	// -----------------------------------------------------------------------
	// (math "MULTIPLY" a b :clamp true)
	// -----------------------------------------------------------------------
	env.AddFunction("math", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 || len(pa.positional) > 4 {
			return zygo.SexpNull, fmt.Errorf("math requires an operation and up to 3 operands")
		}
		op, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("math: operation: %w", err)
		}
		clamp := false
		if v, ok := pa.kw["clamp"]; ok {
			if clamp, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("math: clamp: %w", err)
			}
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("math: name: %w", err)
		}
		n := b.current().NewNode(material.KindMath, nm)
		n.Data = material.MathData{Op: op, Clamp: clamp}
		sockets := []string{"Value1", "Value2", "Value3"}
		for i, operand := range pa.positional[1:] {
			if err := bindInput(b.current(), n, sockets[i], operand); err != nil {
				return zygo.SexpNull, fmt.Errorf("math: operand %d: %w", i+1, err)
			}
		}
		return &sexpNodeRef{node: n, socket: "Value"}, nil
	})

	// -----------------------------------------------------------------------
	// (vector-math "CROSS_PRODUCT" a b :scale 2)
	// -----------------------------------------------------------------------
	env.AddFunction("vector_math", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 || len(pa.positional) > 4 {
			return zygo.SexpNull, fmt.Errorf("vector-math requires an operation and up to 3 operands")
		}
		op, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vector-math: operation: %w", err)
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vector-math: name: %w", err)
		}
		n := b.current().NewNode(material.KindVectorMath, nm)
		n.Data = material.VectorMathData{Op: op}
		sockets := []string{"Vector1", "Vector2", "Vector3"}
		for i, operand := range pa.positional[1:] {
			if err := bindInput(b.current(), n, sockets[i], operand); err != nil {
				return zygo.SexpNull, fmt.Errorf("vector-math: operand %d: %w", i+1, err)
			}
		}
		if v, ok := pa.kw["scale"]; ok {
			if err := bindInput(b.current(), n, "Scale", v); err != nil {
				return zygo.SexpNull, fmt.Errorf("vector-math: scale: %w", err)
			}
		}
		socket := "Vector"
		if _, scalar := map[string]bool{"DOT_PRODUCT": true, "LENGTH": true, "DISTANCE": true}[op]; scalar {
			socket = "Value"
		}
		return &sexpNodeRef{node: n, socket: socket}, nil
	})

	// -----------------------------------------------------------------------
	// (mix "MULTIPLY" fac base blend :clamp true)
	// -----------------------------------------------------------------------
	env.AddFunction("mix", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 4 {
			return zygo.SexpNull, fmt.Errorf("mix requires a mode, a factor, and two colors")
		}
		mode, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mix: mode: %w", err)
		}
		clamp := false
		if v, ok := pa.kw["clamp"]; ok {
			if clamp, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("mix: clamp: %w", err)
			}
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mix: name: %w", err)
		}
		n := b.current().NewNode(material.KindMix, nm)
		n.Data = material.MixData{Mode: mode, Clamp: clamp}
		for i, socket := range []string{"Fac", "Color1", "Color2"} {
			if err := bindInput(b.current(), n, socket, pa.positional[i+1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("mix: %s: %w", strings.ToLower(socket), err)
			}
		}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (invert color :fac 1)
	// -----------------------------------------------------------------------
	env.AddFunction("invert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("invert requires a color argument")
		}
		n := b.current().NewNode(material.KindInvert, "")
		if err := bindInput(b.current(), n, "Color", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("invert: color: %w", err)
		}
		if v, ok := pa.kw["fac"]; ok {
			if err := bindInput(b.current(), n, "Fac", v); err != nil {
				return zygo.SexpNull, fmt.Errorf("invert: fac: %w", err)
			}
		}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (shade-to-bw color)
	// -----------------------------------------------------------------------
	env.AddFunction("shade_to_bw", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shade-to-bw requires a color argument")
		}
		n := b.current().NewNode(material.KindShadeToBW, "")
		if err := bindInput(b.current(), n, "Color", args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("shade-to-bw: %w", err)
		}
		return &sexpNodeRef{node: n, socket: "Val"}, nil
	})

	// -----------------------------------------------------------------------
	// (clamp v :min 0 :max 1)
	// -----------------------------------------------------------------------
	env.AddFunction("clamp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("clamp requires a value argument")
		}
		n := b.current().NewNode(material.KindClamp, "")
		if err := bindInput(b.current(), n, "Value", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("clamp: value: %w", err)
		}
		for kw, socket := range map[string]string{"min": "Min", "max": "Max"} {
			if v, ok := pa.kw[kw]; ok {
				if err := bindInput(b.current(), n, socket, v); err != nil {
					return zygo.SexpNull, fmt.Errorf("clamp: %s: %w", kw, err)
				}
			}
		}
		return &sexpNodeRef{node: n, socket: "Result"}, nil
	})

	// -----------------------------------------------------------------------
	// (bright-contrast color :bright 0.1 :contrast 0.2)
	// -----------------------------------------------------------------------
	env.AddFunction("bright_contrast", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("bright-contrast requires a color argument")
		}
		n := b.current().NewNode(material.KindBrightContrast, "")
		if err := bindInput(b.current(), n, "Color", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("bright-contrast: color: %w", err)
		}
		for kw, socket := range map[string]string{"bright": "Bright", "contrast": "Contrast"} {
			if v, ok := pa.kw[kw]; ok {
				if err := bindInput(b.current(), n, socket, v); err != nil {
					return zygo.SexpNull, fmt.Errorf("bright-contrast: %s: %w", kw, err)
				}
			}
		}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (gamma color 2.2)
	// -----------------------------------------------------------------------
	env.AddFunction("gamma", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("gamma requires a color and an exponent")
		}
		n := b.current().NewNode(material.KindGamma, "")
		if err := bindInput(b.current(), n, "Color", args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("gamma: color: %w", err)
		}
		if err := bindInput(b.current(), n, "Gamma", args[1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("gamma: exponent: %w", err)
		}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (hue-saturation color :hue 0.5 :saturation 1 :value 1 :fac 1)
	// -----------------------------------------------------------------------
	env.AddFunction("hue_saturation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("hue-saturation requires a color argument")
		}
		n := b.current().NewNode(material.KindHueSaturation, "")
		if err := bindInput(b.current(), n, "Color", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("hue-saturation: color: %w", err)
		}
		for kw, socket := range map[string]string{
			"hue": "Hue", "saturation": "Saturation", "value": "Value", "fac": "Fac",
		} {
			if v, ok := pa.kw[kw]; ok {
				if err := bindInput(b.current(), n, socket, v); err != nil {
					return zygo.SexpNull, fmt.Errorf("hue-saturation: %s: %w", kw, err)
				}
			}
		}
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (separate-rgb color "G") and the XYZ/HSV variants
	// -----------------------------------------------------------------------
	separate := func(kind material.NodeKind, input, label string, first string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 1 || len(args) > 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a color and an optional channel name", label)
			}
			n := b.current().NewNode(kind, "")
			if err := bindInput(b.current(), n, input, args[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
			}
			socket := first
			if len(args) == 2 {
				ch, err := toString(args[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: channel: %w", label, err)
				}
				if n.Output(ch) == nil {
					return zygo.SexpNull, fmt.Errorf("%s: no channel %q", label, ch)
				}
				socket = ch
			}
			return &sexpNodeRef{node: n, socket: socket}, nil
		}
	}
	env.AddFunction("separate_rgb", separate(material.KindSeparateRGB, "Image", "separate-rgb", "R"))
	env.AddFunction("separate_xyz", separate(material.KindSeparateXYZ, "Vector", "separate-xyz", "X"))
	env.AddFunction("separate_hsv", separate(material.KindSeparateHSV, "Color", "separate-hsv", "H"))

	// -----------------------------------------------------------------------
	// (combine-rgb r g b) and the XYZ/HSV variants
	// -----------------------------------------------------------------------
	combine := func(kind material.NodeKind, sockets [3]string, out, label string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 3 channel arguments", label)
			}
			n := b.current().NewNode(kind, "")
			for i, socket := range sockets {
				if err := bindInput(b.current(), n, socket, args[i]); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %s: %w", label, socket, err)
				}
			}
			return &sexpNodeRef{node: n, socket: out}, nil
		}
	}
	env.AddFunction("combine_rgb", combine(material.KindCombineRGB, [3]string{"R", "G", "B"}, "Image", "combine-rgb"))
	env.AddFunction("combine_xyz", combine(material.KindCombineXYZ, [3]string{"X", "Y", "Z"}, "Vector", "combine-xyz"))
	env.AddFunction("combine_hsv", combine(material.KindCombineHSV, [3]string{"H", "S", "V"}, "Color", "combine-hsv"))

	// -----------------------------------------------------------------------
	// (stop 0.3 [0.1 0.5 0.1] 1)
	// -----------------------------------------------------------------------
	env.AddFunction("stop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 || len(args) > 3 {
			return zygo.SexpNull, fmt.Errorf("stop requires a position and a color, with an optional alpha")
		}
		pos, err := toFloat32(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stop: position: %w", err)
		}
		c, err := toColor(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stop: color: %w", err)
		}
		if len(args) == 3 {
			a, err := toFloat32(args[2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stop: alpha: %w", err)
			}
			c[3] = a
		}
		return &sexpStop{stop: material.RampStop{Pos: pos, Color: c}}, nil
	})

	// -----------------------------------------------------------------------
	// (ramp fac :interp "CONSTANT" :stops (list (stop ...) (stop ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("ramp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("ramp requires a factor argument")
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ramp: name: %w", err)
		}
		n := b.current().NewNode(material.KindRamp, nm)
		if err := bindInput(b.current(), n, "Fac", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("ramp: fac: %w", err)
		}
		data := n.Data.(material.RampData)
		if v, ok := pa.kw["interp"]; ok {
			if data.Interp, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("ramp: interp: %w", err)
			}
		}
		if v, ok := pa.kw["stops"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("ramp: stops: %w", err)
			}
			data.Stops = nil
			for i, item := range items {
				s, ok := item.(*sexpStop)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("ramp: stop %d: expected (stop ...), got %T", i, item)
				}
				data.Stops = append(data.Stops, s.stop)
			}
		}
		n.Data = data
		return &sexpNodeRef{node: n, socket: "Color"}, nil
	})

	// -----------------------------------------------------------------------
	// (map-range v :from-min 0 :from-max 10 :to-min 0 :to-max 1
	//            :interp "STEPPED" :steps 4 :clamp true)
	// -----------------------------------------------------------------------
	env.AddFunction("map_range", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("map-range requires a value argument")
		}
		n := b.current().NewNode(material.KindMapRange, "")
		if err := bindInput(b.current(), n, "Value", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("map-range: value: %w", err)
		}
		data := n.Data.(material.MapRangeData)
		var err error
		if v, ok := pa.kw["interp"]; ok {
			if data.Interp, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("map-range: interp: %w", err)
			}
		}
		if v, ok := pa.kw["clamp"]; ok {
			if data.Clamp, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("map-range: clamp: %w", err)
			}
		}
		n.Data = data
		// Keyword names are kebab-case in source; sockets are CamelCase.
		for kw, socket := range map[string]string{
			"from-min": "FromMin", "from-max": "FromMax",
			"to-min": "ToMin", "to-max": "ToMax", "steps": "Steps",
		} {
			if v, ok := pa.kw[kw]; ok {
				if err := bindInput(b.current(), n, socket, v); err != nil {
					return zygo.SexpNull, fmt.Errorf("map-range: %s: %w", kw, err)
				}
			}
		}
		return &sexpNodeRef{node: n, socket: "Result"}, nil
	})

	// -----------------------------------------------------------------------
	// (reroute x)
	// -----------------------------------------------------------------------
	env.AddFunction("reroute", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("reroute requires exactly 1 argument")
		}
		nm, err := refName(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reroute: name: %w", err)
		}
		n := b.current().NewNode(material.KindReroute, nm)
		if err := bindInput(b.current(), n, "Input", pa.positional[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("reroute: %w", err)
		}
		return &sexpNodeRef{node: n, socket: "Output"}, nil
	})

	// -----------------------------------------------------------------------
	// (output expr) -- designate the material's final color
	// -----------------------------------------------------------------------
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("output requires exactly 1 argument")
		}
		if b.depth() != 1 {
			return zygo.SexpNull, fmt.Errorf("output may only appear at the top level, not inside a group")
		}
		if b.root.Lookup(OutputNodeName) != nil {
			return zygo.SexpNull, fmt.Errorf("output already designated")
		}
		n := b.root.NewNode(material.KindReroute, OutputNodeName)
		if err := bindInput(b.root, n, "Input", args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("output: %w", err)
		}
		return &sexpNodeRef{node: n, socket: "Output"}, nil
	})

	// -----------------------------------------------------------------------
	// (group-begin "tint")
	// -----------------------------------------------------------------------
	env.AddFunction("group_begin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("group-begin requires a name argument")
		}
		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group-begin: %w", err)
		}
		b.push(material.New(groupName))
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (group-input "Fac" :value 0.5) / (group-input "Base" :color [1 1 1])
	// -----------------------------------------------------------------------
	env.AddFunction("group_input", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if b.depth() < 2 {
			return zygo.SexpNull, fmt.Errorf("group-input outside a group")
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("group-input requires a socket name")
		}
		sockName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group-input: %w", err)
		}
		g := b.current()
		in := g.GroupInputNode()
		if in == nil {
			in = g.NewNode(material.KindGroupInput, "")
		}
		if in.Output(sockName) != nil {
			return zygo.SexpNull, fmt.Errorf("group-input: socket %q already declared", sockName)
		}
		if v, ok := pa.kw["color"]; ok {
			c, err := toColor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group-input: color: %w", err)
			}
			in.AddOutput(sockName, material.SocketColor).DefaultColor = c
		} else {
			sock := in.AddOutput(sockName, material.SocketScalar)
			if v, ok := pa.kw["value"]; ok {
				if sock.DefaultValue, err = toFloat32(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("group-input: value: %w", err)
				}
			}
		}
		return &sexpNodeRef{node: in, socket: sockName}, nil
	})

	// -----------------------------------------------------------------------
	// (group-output expr) / (group-output expr "Alpha")
	// -----------------------------------------------------------------------
	env.AddFunction("group_output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.depth() < 2 {
			return zygo.SexpNull, fmt.Errorf("group-output outside a group")
		}
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("group-output requires an expression and an optional socket name")
		}
		sockName := "Color"
		if len(args) == 2 {
			var err error
			if sockName, err = toString(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("group-output: %w", err)
			}
		}
		g := b.current()
		out := g.GroupOutputNode()
		if out == nil {
			out = g.NewNode(material.KindGroupOutput, "")
		}
		if out.Input(sockName) != nil {
			return zygo.SexpNull, fmt.Errorf("group-output: socket %q already declared", sockName)
		}
		out.AddInput(sockName, material.SocketColor)
		if err := bindInput(g, out, sockName, args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("group-output: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (group-end)
	// -----------------------------------------------------------------------
	env.AddFunction("group_end", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.depth() < 2 {
			return zygo.SexpNull, fmt.Errorf("group-end without matching group-begin")
		}
		g := b.pop()
		if g.GroupOutputNode() == nil {
			return zygo.SexpNull, fmt.Errorf("group %q declares no group-output", g.Name)
		}
		return &sexpGroupRef{graph: g}, nil
	})

	// -----------------------------------------------------------------------
	// (instance tint :Fac 0.8 :Base (attribute "paint"))
	// -----------------------------------------------------------------------
	env.AddFunction("instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("instance requires a group argument")
		}
		gref, ok := pa.positional[0].(*sexpGroupRef)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("instance: expected group, got %T", pa.positional[0])
		}
		nm := gref.graph.Name
		if v, found := pa.kw["name"]; found {
			var err error
			if nm, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: name: %w", err)
			}
		}
		n := b.current().NewGroupNode(nm, gref.graph)
		if err := bindInputs(b.current(), n, pa, "name"); err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: %w", err)
		}
		if len(n.Outputs) == 0 {
			return zygo.SexpNull, fmt.Errorf("instance: group %q exposes no outputs", gref.graph.Name)
		}
		return &sexpNodeRef{node: n, socket: n.Outputs[0].Name}, nil
	})
}
