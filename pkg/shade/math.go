package shade

import (
	math "github.com/chewxy/math32"

	"github.com/okani/shadebake/pkg/colorspace"
)

// Math applies one scalar operation element-wise. All three operands are
// always present; operations that use fewer simply ignore the rest. When
// Clamp is set the result is limited to [0, 1] after the operation, never
// before.
type Math struct {
	Op    string
	Clamp bool
	A     Expr
	B     Expr
	C     Expr
}

func (e *Math) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *Math) evalScalar(ctx *Context) ([]float32, error) {
	fn, ok := mathOps[e.Op]
	if !ok {
		return nil, &UnhandledOperationError{Family: "math", Op: e.Op}
	}
	a, err := e.A.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	b, err := e.B.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	c, err := e.C.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, ctx.Len())
	for i := range out {
		out[i] = fn(a[i], b[i], c[i])
	}
	if e.Clamp {
		for i := range out {
			out[i] = colorspace.Clamp01(out[i])
		}
	}
	return out, nil
}

// round rounds half away from zero.
func round(x float32) float32 {
	if x < 0 {
		return math.Ceil(x - 0.5)
	}
	return math.Floor(x + 0.5)
}

// safePow follows the shading convention for negative bases: unless the
// exponent is integral (within 1e-6, in which case the rounded exponent is
// used), the result is 0.
func safePow(a, b float32) float32 {
	if a >= 0 {
		return math.Pow(a, b)
	}
	r := round(b)
	if math.Abs(b-r) > 1e-6 {
		return 0
	}
	return math.Pow(a, r)
}

// wrap folds a into the interval [min, max); a zero-width interval yields
// the lower bound.
func wrap(a, max, min float32) float32 {
	r := max - min
	if r == 0 {
		return min
	}
	return a - r*math.Floor((a-min)/r)
}

func pingpong(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return math.Abs(colorspace.Fract((a-b)/(b*2))*b*2 - b)
}

// mathOps is the full scalar operation catalog, keyed by the operator names
// the graph's math nodes carry.
var mathOps = map[string]func(a, b, c float32) float32{
	"ADD":      func(a, b, _ float32) float32 { return a + b },
	"SUBTRACT": func(a, b, _ float32) float32 { return a - b },
	"MULTIPLY": func(a, b, _ float32) float32 { return a * b },
	"DIVIDE":   func(a, b, _ float32) float32 { return colorspace.SafeDivide(a, b) },

	"MULTIPLY_ADD": func(a, b, c float32) float32 { return a*b + c },
	"POWER":        func(a, b, _ float32) float32 { return safePow(a, b) },
	"LOGARITHM": func(a, b, _ float32) float32 {
		if a <= 0 || b <= 0 {
			return 0
		}
		return math.Log(a) / math.Log(b)
	},
	"SQRT": func(a, _, _ float32) float32 {
		if a <= 0 {
			return 0
		}
		return math.Sqrt(a)
	},
	"INVERSE_SQRT": func(a, _, _ float32) float32 {
		if a <= 0 {
			return 0
		}
		return 1 / math.Sqrt(a)
	},
	"ABSOLUTE": func(a, _, _ float32) float32 { return math.Abs(a) },
	"EXPONENT": func(a, _, _ float32) float32 { return math.Exp(a) },

	"MINIMUM": func(a, b, _ float32) float32 { return math.Min(a, b) },
	"MAXIMUM": func(a, b, _ float32) float32 { return math.Max(a, b) },
	"LESS_THAN": func(a, b, _ float32) float32 {
		if a < b {
			return 1
		}
		return 0
	},
	"GREATER_THAN": func(a, b, _ float32) float32 {
		if a > b {
			return 1
		}
		return 0
	},
	"SIGN": func(a, _, _ float32) float32 {
		switch {
		case a > 0:
			return 1
		case a < 0:
			return -1
		default:
			return 0
		}
	},
	"COMPARE": func(a, b, c float32) float32 {
		if math.Abs(a-b) <= math.Max(c, 1e-5) {
			return 1
		}
		return 0
	},
	"SMOOTH_MIN": func(a, b, c float32) float32 { return colorspace.SmoothMin(a, b, c) },
	"SMOOTH_MAX": func(a, b, c float32) float32 { return colorspace.SmoothMax(a, b, c) },

	"ROUND":    func(a, _, _ float32) float32 { return round(a) },
	"FLOOR":    func(a, _, _ float32) float32 { return math.Floor(a) },
	"CEIL":     func(a, _, _ float32) float32 { return math.Ceil(a) },
	"TRUNC":    func(a, _, _ float32) float32 { return math.Trunc(a) },
	"FRACT":    func(a, _, _ float32) float32 { return colorspace.Fract(a) },
	"MODULO": func(a, b, _ float32) float32 {
		if b == 0 {
			return 0
		}
		return math.Mod(a, b)
	},
	"WRAP": func(a, b, c float32) float32 { return wrap(a, b, c) },
	"SNAP": func(a, b, _ float32) float32 {
		if b == 0 {
			return 0
		}
		return math.Floor(a/b) * b
	},
	"PINGPONG": func(a, b, _ float32) float32 { return pingpong(a, b) },

	"SINE":       func(a, _, _ float32) float32 { return math.Sin(a) },
	"COSINE":     func(a, _, _ float32) float32 { return math.Cos(a) },
	"TANGENT":    func(a, _, _ float32) float32 { return math.Tan(a) },
	"ARCSINE":    func(a, _, _ float32) float32 { return math.Asin(a) },
	"ARCCOSINE":  func(a, _, _ float32) float32 { return math.Acos(a) },
	"ARCTANGENT": func(a, _, _ float32) float32 { return math.Atan(a) },
	"ARCTAN2":    func(a, b, _ float32) float32 { return math.Atan2(a, b) },
	"SINH":       func(a, _, _ float32) float32 { return math.Sinh(a) },
	"COSH":       func(a, _, _ float32) float32 { return math.Cosh(a) },
	"TANH":       func(a, _, _ float32) float32 { return math.Tanh(a) },

	"RADIANS": func(a, _, _ float32) float32 { return a * (math.Pi / 180) },
	"DEGREES": func(a, _, _ float32) float32 { return a * (180 / math.Pi) },
}
