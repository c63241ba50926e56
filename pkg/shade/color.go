package shade

import (
	math "github.com/chewxy/math32"

	"github.com/okani/shadebake/pkg/colorspace"
)

// Invert blends each channel toward its complement by a factor.
type Invert struct {
	Fac   Expr
	Color Expr
}

func (e *Invert) evalColor(ctx *Context) ([]Vec3, error) {
	fac, err := e.Fac.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, ctx.Len())
	for i, c := range cols {
		f := fac[i]
		facm := 1 - f
		out[i] = Vec3{
			f*(1-c[0]) + facm*c[0],
			f*(1-c[1]) + facm*c[1],
			f*(1-c[2]) + facm*c[2],
		}
	}
	return out, nil
}

func (e *Invert) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// Grayscale collapses a color to its luminance.
type Grayscale struct {
	Color Expr
}

func (e *Grayscale) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *Grayscale) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// Clamp limits a scalar to [Min, Max].
type Clamp struct {
	Value Expr
	Min   Expr
	Max   Expr
}

func (e *Clamp) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *Clamp) evalScalar(ctx *Context) ([]float32, error) {
	vals, err := e.Value.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	lo, err := e.Min.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	hi, err := e.Max.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, ctx.Len())
	for i, v := range vals {
		out[i] = colorspace.Clamp(v, lo[i], hi[i])
	}
	return out, nil
}

// BrightContrast applies the linear brightness/contrast adjustment
// a*color + b with a = 1+contrast and b = brightness - contrast/2, floored
// at zero per channel.
type BrightContrast struct {
	Color      Expr
	Brightness Expr
	Contrast   Expr
}

func (e *BrightContrast) evalColor(ctx *Context) ([]Vec3, error) {
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	bright, err := e.Brightness.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	contrast, err := e.Contrast.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, ctx.Len())
	for i, c := range cols {
		a := 1 + contrast[i]
		b := bright[i] - contrast[i]*0.5
		out[i] = Vec3{
			math.Max(a*c[0]+b, 0),
			math.Max(a*c[1]+b, 0),
			math.Max(a*c[2]+b, 0),
		}
	}
	return out, nil
}

func (e *BrightContrast) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// Gamma raises positive channels to the given power; non-positive channels
// pass through unchanged.
type Gamma struct {
	Color Expr
	Gamma Expr
}

func (e *Gamma) evalColor(ctx *Context) ([]Vec3, error) {
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	gamma, err := e.Gamma.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, ctx.Len())
	for i, c := range cols {
		g := gamma[i]
		for ch := 0; ch < 3; ch++ {
			if c[ch] > 0 {
				out[i][ch] = math.Pow(c[ch], g)
			} else {
				out[i][ch] = c[ch]
			}
		}
	}
	return out, nil
}

func (e *Gamma) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// HueSaturation rotates hue by a fractional offset (0.5 = no shift), scales
// saturation and value, then blends with the original color by a factor.
// The result is floored at zero per channel.
type HueSaturation struct {
	Hue        Expr
	Saturation Expr
	Value      Expr
	Fac        Expr
	Color      Expr
}

func (e *HueSaturation) evalColor(ctx *Context) ([]Vec3, error) {
	hue, err := e.Hue.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	sat, err := e.Saturation.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	val, err := e.Value.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	fac, err := e.Fac.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, ctx.Len())
	for i, c := range cols {
		h, s, v := colorspace.RGBToHSV(c[0], c[1], c[2])
		h = colorspace.Fract(h + hue[i] + 0.5)
		s = colorspace.Clamp01(s * sat[i])
		v *= val[i]
		r, g, b := colorspace.HSVToRGB(h, s, v)
		f := fac[i]
		facm := 1 - f
		out[i] = Vec3{
			math.Max(f*r+facm*c[0], 0),
			math.Max(f*g+facm*c[1], 0),
			math.Max(f*b+facm*c[2], 0),
		}
	}
	return out, nil
}

func (e *HueSaturation) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}
