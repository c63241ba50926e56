package shade

import (
	math "github.com/chewxy/math32"

	"github.com/okani/shadebake/pkg/colorspace"
)

// Blend mixes two colors under one of the named blend modes, weighted by a
// factor. When Clamp is set the result is limited to [0, 1]; BURN clamps by
// construction regardless of the flag.
type Blend struct {
	Mode  string
	Clamp bool
	Fac   Expr
	A     Expr // base color
	B     Expr // blend color
}

func (e *Blend) evalColor(ctx *Context) ([]Vec3, error) {
	fn, ok := blendModes[e.Mode]
	if !ok {
		return nil, &UnhandledOperationError{Family: "blend", Op: e.Mode}
	}
	fac, err := e.Fac.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	c1, err := e.A.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	c2, err := e.B.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, ctx.Len())
	for i := range out {
		out[i] = fn(fac[i], c1[i], c2[i])
	}
	if e.Clamp {
		for i := range out {
			out[i] = clamp01Vec(out[i])
		}
	}
	return out, nil
}

func (e *Blend) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

func clamp01Vec(c Vec3) Vec3 {
	return Vec3{
		colorspace.Clamp01(c[0]),
		colorspace.Clamp01(c[1]),
		colorspace.Clamp01(c[2]),
	}
}

// blendModes implements the classic ramp-blend formulas. Every function
// takes the unclamped factor and the two colors and returns the blended
// color; facm is short for 1-fac throughout.
var blendModes = map[string]func(fac float32, c1, c2 Vec3) Vec3{
	"MIX": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		return Vec3{
			facm*c1[0] + fac*c2[0],
			facm*c1[1] + fac*c2[1],
			facm*c1[2] + fac*c2[2],
		}
	},
	"ADD": func(fac float32, c1, c2 Vec3) Vec3 {
		return Vec3{c1[0] + fac*c2[0], c1[1] + fac*c2[1], c1[2] + fac*c2[2]}
	},
	"MULTIPLY": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		return Vec3{
			c1[0] * (facm + fac*c2[0]),
			c1[1] * (facm + fac*c2[1]),
			c1[2] * (facm + fac*c2[2]),
		}
	},
	"SCREEN": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			out[i] = 1 - (facm+fac*(1-c2[i]))*(1-c1[i])
		}
		return out
	},
	"OVERLAY": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			if c1[i] < 0.5 {
				out[i] = c1[i] * (facm + 2*fac*c2[i])
			} else {
				out[i] = 1 - (facm+2*fac*(1-c2[i]))*(1-c1[i])
			}
		}
		return out
	},
	"SUBTRACT": func(fac float32, c1, c2 Vec3) Vec3 {
		return Vec3{c1[0] - fac*c2[0], c1[1] - fac*c2[1], c1[2] - fac*c2[2]}
	},
	"DIVIDE": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			if c2[i] != 0 {
				out[i] = facm*c1[i] + fac*c1[i]/c2[i]
			} else {
				out[i] = c1[i]
			}
		}
		return out
	},
	"DIFFERENCE": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			out[i] = facm*c1[i] + fac*math.Abs(c1[i]-c2[i])
		}
		return out
	},
	"DARKEN": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			out[i] = math.Min(c1[i], c2[i])*fac + c1[i]*facm
		}
		return out
	},
	"LIGHTEN": func(fac float32, c1, c2 Vec3) Vec3 {
		var out Vec3
		for i := 0; i < 3; i++ {
			out[i] = math.Max(c1[i], fac*c2[i])
		}
		return out
	},
	"DODGE": func(fac float32, c1, c2 Vec3) Vec3 {
		var out Vec3
		for i := 0; i < 3; i++ {
			// A zero base channel stays zero.
			if c1[i] == 0 {
				continue
			}
			tmp := 1 - fac*c2[i]
			if tmp <= 0 {
				out[i] = 1
			} else if t := c1[i] / tmp; t > 1 {
				out[i] = 1
			} else {
				out[i] = t
			}
		}
		return out
	},
	"BURN": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			tmp := facm + fac*c2[i]
			if tmp <= 0 {
				out[i] = 0
			} else if t := 1 - (1-c1[i])/tmp; t < 0 {
				out[i] = 0
			} else if t > 1 {
				out[i] = 1
			} else {
				out[i] = t
			}
		}
		return out
	},
	"SOFT_LIGHT": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		var out Vec3
		for i := 0; i < 3; i++ {
			screen := 1 - (1-c2[i])*(1-c1[i])
			out[i] = facm*c1[i] + fac*((1-c1[i])*c2[i]*c1[i]+c1[i]*screen)
		}
		return out
	},
	"LINEAR_LIGHT": func(fac float32, c1, c2 Vec3) Vec3 {
		var out Vec3
		for i := 0; i < 3; i++ {
			if c2[i] > 0.5 {
				out[i] = c1[i] + fac*(2*(c2[i]-0.5))
			} else {
				out[i] = c1[i] + fac*(2*c2[i]-1)
			}
		}
		return out
	},
	"HUE": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		h2, s2, _ := colorspace.RGBToHSV(c2[0], c2[1], c2[2])
		if s2 == 0 {
			return c1
		}
		_, s1, v1 := colorspace.RGBToHSV(c1[0], c1[1], c1[2])
		r, g, b := colorspace.HSVToRGB(h2, s1, v1)
		return Vec3{facm*c1[0] + fac*r, facm*c1[1] + fac*g, facm*c1[2] + fac*b}
	},
	"SATURATION": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		h1, s1, v1 := colorspace.RGBToHSV(c1[0], c1[1], c1[2])
		if s1 == 0 {
			return c1
		}
		_, s2, _ := colorspace.RGBToHSV(c2[0], c2[1], c2[2])
		r, g, b := colorspace.HSVToRGB(h1, facm*s1+fac*s2, v1)
		return Vec3{r, g, b}
	},
	"VALUE": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		h1, s1, v1 := colorspace.RGBToHSV(c1[0], c1[1], c1[2])
		_, _, v2 := colorspace.RGBToHSV(c2[0], c2[1], c2[2])
		r, g, b := colorspace.HSVToRGB(h1, s1, facm*v1+fac*v2)
		return Vec3{r, g, b}
	},
	"COLOR": func(fac float32, c1, c2 Vec3) Vec3 {
		facm := 1 - fac
		h2, s2, _ := colorspace.RGBToHSV(c2[0], c2[1], c2[2])
		if s2 == 0 {
			return c1
		}
		_, _, v1 := colorspace.RGBToHSV(c1[0], c1[1], c1[2])
		r, g, b := colorspace.HSVToRGB(h2, s2, v1)
		return Vec3{facm*c1[0] + fac*r, facm*c1[1] + fac*g, facm*c1[2] + fac*b}
	},
}
