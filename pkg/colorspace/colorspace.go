// Package colorspace provides the scalar color-science helpers shared by the
// shading evaluator: sRGB transfer functions, RGB/HSV conversion, and the
// small numeric kernels (clamp, safe division, smoothstep, smooth-min)
// the node formulas are defined in terms of. All math is float32 to match
// shading-language arithmetic.
package colorspace

import (
	math "github.com/chewxy/math32"
)

// Rec. 709 luma weights. These are exact contract constants: they sum to
// 1.0 in float32, so Luminance of pure white is exactly 1.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Luminance returns the Rec. 709 luma of a linear RGB triple.
func Luminance(r, g, b float32) float32 {
	return r*LumaR + g*LumaG + b*LumaB
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 limits x to the unit interval.
func Clamp01(x float32) float32 {
	return Clamp(x, 0, 1)
}

// SafeDivide returns a/b, or 0 when b is 0.
func SafeDivide(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Fract returns the fractional part of x (x - floor(x)), always in [0, 1).
func Fract(x float32) float32 {
	return x - math.Floor(x)
}

// Smoothstep is the classic Hermite interpolation: 0 below edge0, 1 above
// edge1, 3t²-2t³ in between. Returns 0 when the edges coincide.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		return 0
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Smootherstep is Perlin's quintic variant of Smoothstep (6t⁵-15t⁴+10t³),
// with zero second derivative at both edges.
func Smootherstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		return 0
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * t * (t*(t*6-15) + 10)
}

// SmoothMin blends min(a, b) with a cubic smoothing kernel of width k.
// k = 0 degenerates to the plain minimum.
func SmoothMin(a, b, k float32) float32 {
	if k == 0 {
		return math.Min(a, b)
	}
	h := math.Max(k-math.Abs(a-b), 0) / k
	return math.Min(a, b) - h*h*h*k*(1.0/6.0)
}

// SmoothMax is the mirrored SmoothMin.
func SmoothMax(a, b, k float32) float32 {
	return -SmoothMin(-a, -b, k)
}

// SRGBToLinear converts one sRGB-encoded channel to linear light.
func SRGBToLinear(c float32) float32 {
	if c < 0.04045 {
		if c < 0 {
			return 0
		}
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB converts one linear channel to its sRGB encoding.
func LinearToSRGB(c float32) float32 {
	if c < 0.0031308 {
		if c < 0 {
			return 0
		}
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

// RGBToHSV converts a linear RGB triple to hue/saturation/value.
// Hue is in [0, 1); an achromatic input yields hue 0 and saturation 0.
func RGBToHSV(r, g, b float32) (h, s, v float32) {
	cMax := math.Max(r, math.Max(g, b))
	cMin := math.Min(r, math.Min(g, b))
	delta := cMax - cMin

	v = cMax
	if cMax != 0 {
		s = delta / cMax
	}
	if s == 0 {
		return 0, 0, v
	}

	switch cMax {
	case r:
		h = (g - b) / delta
	case g:
		h = 2 + (b-r)/delta
	default:
		h = 4 + (r-g)/delta
	}
	h /= 6
	if h < 0 {
		h += 1
	}
	return h, s, v
}

// HSVToRGB converts hue/saturation/value back to RGB. Hue wraps modulo 1.
func HSVToRGB(h, s, v float32) (r, g, b float32) {
	if s == 0 {
		return v, v, v
	}

	h = Fract(h) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch int(i) {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
