package reify

import (
	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/shade"
)

// bindingContext carries what a boundary placeholder needs to resolve: the
// enclosing graph, the group-instance node whose input sockets supply the
// bindings, and the seen-set active where the instance was reached.
type bindingContext struct {
	graph    *material.Graph
	instance *material.Node
	seen     seenSet
}

// substitute rewrites a lowered sub-graph expression, replacing every
// boundary placeholder with the expression feeding the matching input
// socket of the group instance. The input tree is never mutated; shared
// sub-expressions are rebuilt per occurrence.
func substitute(e shade.Expr, bc *bindingContext) (shade.Expr, error) {
	switch v := e.(type) {
	case *shade.GroupInput:
		sock := bc.instance.Input(v.Socket)
		if sock == nil {
			return nil, &UnsupportedSocketError{Node: bc.instance.ID, Socket: v.Socket}
		}
		return reifyInput(bc.graph, bc.instance, sock, bc.seen)

	case *shade.ConstColor, *shade.ConstScalar,
		*shade.AttributeColor, *shade.AttributeScalar,
		*shade.Position, *shade.Normal:
		return e, nil

	case *shade.Group:
		// A nested group was already fully bound when its own instance was
		// lowered; only placeholders of the current boundary remain.
		inner, err := substitute(v.Inner, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Group{Name: v.Name, Inner: inner}, nil

	case *shade.Math:
		a, b, c, err := substitute3(v.A, v.B, v.C, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Math{Op: v.Op, Clamp: v.Clamp, A: a, B: b, C: c}, nil

	case *shade.VectorMath:
		a, b, c, err := substitute3(v.A, v.B, v.C, bc)
		if err != nil {
			return nil, err
		}
		scale, err := substitute(v.Scale, bc)
		if err != nil {
			return nil, err
		}
		return &shade.VectorMath{Op: v.Op, A: a, B: b, C: c, Scale: scale}, nil

	case *shade.Blend:
		fac, a, b, err := substitute3(v.Fac, v.A, v.B, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Blend{Mode: v.Mode, Clamp: v.Clamp, Fac: fac, A: a, B: b}, nil

	case *shade.Invert:
		fac, err := substitute(v.Fac, bc)
		if err != nil {
			return nil, err
		}
		color, err := substitute(v.Color, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Invert{Fac: fac, Color: color}, nil

	case *shade.Grayscale:
		color, err := substitute(v.Color, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Grayscale{Color: color}, nil

	case *shade.Clamp:
		value, min, max, err := substitute3(v.Value, v.Min, v.Max, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Clamp{Value: value, Min: min, Max: max}, nil

	case *shade.BrightContrast:
		color, bright, contrast, err := substitute3(v.Color, v.Brightness, v.Contrast, bc)
		if err != nil {
			return nil, err
		}
		return &shade.BrightContrast{Color: color, Brightness: bright, Contrast: contrast}, nil

	case *shade.Gamma:
		color, err := substitute(v.Color, bc)
		if err != nil {
			return nil, err
		}
		gamma, err := substitute(v.Gamma, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Gamma{Color: color, Gamma: gamma}, nil

	case *shade.HueSaturation:
		hue, sat, val, err := substitute3(v.Hue, v.Saturation, v.Value, bc)
		if err != nil {
			return nil, err
		}
		fac, color, err := substitute2(v.Fac, v.Color, bc)
		if err != nil {
			return nil, err
		}
		return &shade.HueSaturation{Hue: hue, Saturation: sat, Value: val, Fac: fac, Color: color}, nil

	case *shade.SeparateRGB:
		color, err := substitute(v.Color, bc)
		if err != nil {
			return nil, err
		}
		return &shade.SeparateRGB{Channel: v.Channel, Color: color}, nil

	case *shade.SeparateXYZ:
		vec, err := substitute(v.Vector, bc)
		if err != nil {
			return nil, err
		}
		return &shade.SeparateXYZ{Channel: v.Channel, Vector: vec}, nil

	case *shade.SeparateHSV:
		color, err := substitute(v.Color, bc)
		if err != nil {
			return nil, err
		}
		return &shade.SeparateHSV{Channel: v.Channel, Color: color}, nil

	case *shade.CombineRGB:
		r, g, b, err := substitute3(v.R, v.G, v.B, bc)
		if err != nil {
			return nil, err
		}
		return &shade.CombineRGB{R: r, G: g, B: b}, nil

	case *shade.CombineXYZ:
		x, y, z, err := substitute3(v.X, v.Y, v.Z, bc)
		if err != nil {
			return nil, err
		}
		return &shade.CombineXYZ{X: x, Y: y, Z: z}, nil

	case *shade.CombineHSV:
		h, s, val, err := substitute3(v.H, v.S, v.V, bc)
		if err != nil {
			return nil, err
		}
		return &shade.CombineHSV{H: h, S: s, V: val}, nil

	case *shade.Ramp:
		fac, err := substitute(v.Fac, bc)
		if err != nil {
			return nil, err
		}
		return &shade.Ramp{Stops: v.Stops, Interp: v.Interp, Fac: fac, Alpha: v.Alpha}, nil

	case *shade.MapRange:
		value, fromMin, fromMax, err := substitute3(v.Value, v.FromMin, v.FromMax, bc)
		if err != nil {
			return nil, err
		}
		toMin, toMax, err := substitute2(v.ToMin, v.ToMax, bc)
		if err != nil {
			return nil, err
		}
		steps, err := substitute(v.Steps, bc)
		if err != nil {
			return nil, err
		}
		return &shade.MapRange{
			Interp: v.Interp, Clamp: v.Clamp,
			Value: value, FromMin: fromMin, FromMax: fromMax,
			ToMin: toMin, ToMax: toMax, Steps: steps,
		}, nil

	default:
		return nil, &UnsupportedNodeError{Node: bc.instance.ID, Kind: bc.instance.Kind, Reason: "unrewritable sub-expression"}
	}
}

func substitute2(a, b shade.Expr, bc *bindingContext) (shade.Expr, shade.Expr, error) {
	ra, err := substitute(a, bc)
	if err != nil {
		return nil, nil, err
	}
	rb, err := substitute(b, bc)
	if err != nil {
		return nil, nil, err
	}
	return ra, rb, nil
}

func substitute3(a, b, c shade.Expr, bc *bindingContext) (shade.Expr, shade.Expr, shade.Expr, error) {
	ra, rb, err := substitute2(a, b, bc)
	if err != nil {
		return nil, nil, nil, err
	}
	rc, err := substitute(c, bc)
	if err != nil {
		return nil, nil, nil, err
	}
	return ra, rb, rc, nil
}
