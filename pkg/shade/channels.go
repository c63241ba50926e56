package shade

import "github.com/okani/shadebake/pkg/colorspace"

// Channel indices for the split variants.
const (
	ChannelR = 0
	ChannelG = 1
	ChannelB = 2
)

// SeparateRGB extracts one RGB channel as a scalar.
type SeparateRGB struct {
	Channel int
	Color   Expr
}

func (e *SeparateRGB) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *SeparateRGB) evalScalar(ctx *Context) ([]float32, error) {
	return splitChannel(ctx, e.Color, e.Channel)
}

// SeparateXYZ extracts one vector component as a scalar.
type SeparateXYZ struct {
	Channel int
	Vector  Expr
}

func (e *SeparateXYZ) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *SeparateXYZ) evalScalar(ctx *Context) ([]float32, error) {
	return splitChannel(ctx, e.Vector, e.Channel)
}

// SeparateHSV converts a color to HSV and extracts one channel.
type SeparateHSV struct {
	Channel int
	Color   Expr
}

func (e *SeparateHSV) evalColor(ctx *Context) ([]Vec3, error) {
	vals, err := e.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	return broadcast(vals), nil
}

func (e *SeparateHSV) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.Color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, ctx.Len())
	for i, c := range cols {
		h, s, v := colorspace.RGBToHSV(c[0], c[1], c[2])
		switch e.Channel {
		case 0:
			out[i] = h
		case 1:
			out[i] = s
		default:
			out[i] = v
		}
	}
	return out, nil
}

// CombineRGB assembles a color from three scalar channels.
type CombineRGB struct {
	R, G, B Expr
}

func (e *CombineRGB) evalColor(ctx *Context) ([]Vec3, error) {
	return combineTriple(ctx, e.R, e.G, e.B)
}

func (e *CombineRGB) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// CombineXYZ assembles a vector from three scalar components.
type CombineXYZ struct {
	X, Y, Z Expr
}

func (e *CombineXYZ) evalColor(ctx *Context) ([]Vec3, error) {
	return combineTriple(ctx, e.X, e.Y, e.Z)
}

func (e *CombineXYZ) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

// CombineHSV assembles a color from hue, saturation, and value scalars.
type CombineHSV struct {
	H, S, V Expr
}

func (e *CombineHSV) evalColor(ctx *Context) ([]Vec3, error) {
	cols, err := combineTriple(ctx, e.H, e.S, e.V)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, len(cols))
	for i, c := range cols {
		r, g, b := colorspace.HSVToRGB(c[0], c[1], c[2])
		out[i] = Vec3{r, g, b}
	}
	return out, nil
}

func (e *CombineHSV) evalScalar(ctx *Context) ([]float32, error) {
	cols, err := e.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	return luminance(cols), nil
}

func splitChannel(ctx *Context, color Expr, ch int) ([]float32, error) {
	cols, err := color.evalColor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(cols))
	for i, c := range cols {
		out[i] = c[ch]
	}
	return out, nil
}

func combineTriple(ctx *Context, a, b, c Expr) ([]Vec3, error) {
	x, err := a.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	y, err := b.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	z, err := c.evalScalar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, len(x))
	for i := range out {
		out[i] = Vec3{x[i], y[i], z[i]}
	}
	return out, nil
}
