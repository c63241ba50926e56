package shade

import (
	math "github.com/chewxy/math32"

	"github.com/okani/shadebake/pkg/colorspace"
)

// RampStop is one gradient control point. Color carries RGBA so the ramp
// can be queried for either its color or its alpha independently.
type RampStop struct {
	Pos   float32
	Color [4]float32
}

// Ramp evaluates a color gradient at a scalar factor. Adjacent stop pairs
// are folded right-biased: any pair whose left position lies below the
// factor overwrites the running result, so later segments win. Factors
// outside the stop range coerce to the endpoint colors.
type Ramp struct {
	Stops  []RampStop
	Interp string // "LINEAR" or "CONSTANT"
	Fac    Expr
	Alpha  bool // query the alpha channel instead of the color
}

func (e *Ramp) evalColor(ctx *Context) ([]Vec3, error) {
	if e.Alpha {
		vals, err := e.evalScalar(ctx)
		if err != nil {
			return nil, err
		}
		return broadcast(vals), nil
	}
	rgba, err := e.evalRGBA(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, len(rgba))
	for i, c := range rgba {
		out[i] = Vec3{c[0], c[1], c[2]}
	}
	return out, nil
}

func (e *Ramp) evalScalar(ctx *Context) ([]float32, error) {
	rgba, err := e.evalRGBA(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(rgba))
	if e.Alpha {
		for i, c := range rgba {
			out[i] = c[3]
		}
		return out, nil
	}
	for i, c := range rgba {
		out[i] = colorspace.Luminance(c[0], c[1], c[2])
	}
	return out, nil
}

func (e *Ramp) evalRGBA(ctx *Context) ([][4]float32, error) {
	linear := false
	switch e.Interp {
	case "LINEAR":
		linear = true
	case "CONSTANT":
	default:
		return nil, &UnhandledOperationError{Family: "ramp", Op: e.Interp}
	}
	fac, err := e.Fac.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, ctx.Len())
	if len(e.Stops) == 0 {
		return out, nil
	}
	last := e.Stops[len(e.Stops)-1]
	for i, f := range fac {
		c := e.Stops[0].Color
		for k := 0; k+1 < len(e.Stops); k++ {
			left, right := e.Stops[k], e.Stops[k+1]
			if f <= left.Pos {
				continue
			}
			var t float32
			if linear && right.Pos != left.Pos {
				t = (f - left.Pos) / (right.Pos - left.Pos)
			}
			c = lerpRGBA(left.Color, right.Color, t)
		}
		if f >= last.Pos {
			c = last.Color
		}
		out[i] = c
	}
	return out, nil
}

func lerpRGBA(a, b [4]float32, t float32) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = a[i] + t*(b[i]-a[i])
	}
	return out
}

// MapRange remaps a scalar from one interval to another. A zero-width
// source interval forces the result to 0. The optional clamp applies to the
// LINEAR and STEPPED kinds only; the smoothstep kinds clamp by construction.
type MapRange struct {
	Interp string // "LINEAR", "STEPPED", "SMOOTHSTEP", "SMOOTHERSTEP"
	Clamp  bool
	Value  Expr
	FromMin, FromMax Expr
	ToMin, ToMax     Expr
	Steps Expr
}

func (e *MapRange) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *MapRange) evalScalar(ctx *Context) ([]float32, error) {
	switch e.Interp {
	case "LINEAR", "STEPPED", "SMOOTHSTEP", "SMOOTHERSTEP":
	default:
		return nil, &UnhandledOperationError{Family: "map-range", Op: e.Interp}
	}
	value, err := e.Value.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	fromMin, err := e.FromMin.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	fromMax, err := e.FromMax.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	toMin, err := e.ToMin.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	toMax, err := e.ToMax.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	steps, err := e.Steps.evalScalar(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]float32, ctx.Len())
	for i, v := range value {
		fmin, fmax := fromMin[i], fromMax[i]
		if fmin == fmax {
			continue
		}
		var fac float32
		switch e.Interp {
		case "LINEAR":
			fac = (v - fmin) / (fmax - fmin)
		case "STEPPED":
			if steps[i] <= 0 {
				fac = 0
			} else {
				fac = (v - fmin) / (fmax - fmin)
				fac = math.Floor(fac*(steps[i]+1)) / steps[i]
			}
		case "SMOOTHSTEP":
			if fmin > fmax {
				fac = 1 - colorspace.Smoothstep(fmax, fmin, v)
			} else {
				fac = colorspace.Smoothstep(fmin, fmax, v)
			}
		case "SMOOTHERSTEP":
			if fmin > fmax {
				fac = 1 - colorspace.Smootherstep(fmax, fmin, v)
			} else {
				fac = colorspace.Smootherstep(fmin, fmax, v)
			}
		}
		r := toMin[i] + fac*(toMax[i]-toMin[i])
		if e.Clamp && (e.Interp == "LINEAR" || e.Interp == "STEPPED") {
			lo, hi := toMin[i], toMax[i]
			if lo > hi {
				lo, hi = hi, lo
			}
			r = colorspace.Clamp(r, lo, hi)
		}
		out[i] = r
	}
	return out, nil
}
