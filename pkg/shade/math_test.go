package shade

import (
	"errors"
	"testing"

	math "github.com/chewxy/math32"
)

func evalMathOp(t *testing.T, op string, a, b, c float32) float32 {
	t.Helper()
	ctx := NewContext(1)
	e := &Math{
		Op: op,
		A:  &ConstScalar{Value: a},
		B:  &ConstScalar{Value: b},
		C:  &ConstScalar{Value: c},
	}
	vals, err := EvalScalar(e, ctx)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", op, err)
	}
	return vals[0]
}

func TestMathOperations(t *testing.T) {
	tests := []struct {
		op      string
		a, b, c float32
		want    float32
	}{
		{"ADD", 2, 3, 0, 5},
		{"SUBTRACT", 2, 3, 0, -1},
		{"MULTIPLY", 4, 0.5, 0, 2},
		{"DIVIDE", 1, 4, 0, 0.25},
		{"DIVIDE", 1, 0, 0, 0}, // division by zero is total
		{"MULTIPLY_ADD", 2, 3, 4, 10},
		{"POWER", 2, 10, 0, 1024},
		{"POWER", -2, 2, 0, 4},   // integral exponent on negative base
		{"POWER", -2, 0.5, 0, 0}, // fractional exponent on negative base
		{"LOGARITHM", 8, 2, 0, 3},
		{"LOGARITHM", -1, 2, 0, 0},
		{"SQRT", 9, 0, 0, 3},
		{"SQRT", -1, 0, 0, 0},
		{"INVERSE_SQRT", 4, 0, 0, 0.5},
		{"ABSOLUTE", -3, 0, 0, 3},
		{"MINIMUM", 2, -1, 0, -1},
		{"MAXIMUM", 2, -1, 0, 2},
		{"LESS_THAN", 1, 2, 0, 1},
		{"GREATER_THAN", 1, 2, 0, 0},
		{"SIGN", -7, 0, 0, -1},
		{"SIGN", 0, 0, 0, 0},
		{"COMPARE", 1, 1.000001, 0, 1}, // within the 1e-5 floor
		{"COMPARE", 1, 2, 0.5, 0},
		{"COMPARE", 1, 1.4, 0.5, 1},
		{"ROUND", 0.5, 0, 0, 1},
		{"ROUND", -0.5, 0, 0, -1}, // half away from zero
		{"FLOOR", -1.5, 0, 0, -2},
		{"CEIL", -1.5, 0, 0, -1},
		{"TRUNC", -1.5, 0, 0, -1},
		{"FRACT", 2.75, 0, 0, 0.75},
		{"FRACT", -0.25, 0, 0, 0.75},
		{"MODULO", 7, 3, 0, 1},
		{"MODULO", 7, 0, 0, 0},
		{"MODULO", -7, 3, 0, -1}, // truncated, sign follows the dividend
		{"WRAP", 5, 4, 0, 1},
		{"WRAP", -1, 4, 0, 3},
		{"WRAP", 5, 2, 2, 2}, // zero-width interval
		{"SNAP", 7.3, 2, 0, 6},
		{"SNAP", 7.3, 0, 0, 0},
		{"PINGPONG", 3, 2, 0, 1},
		{"PINGPONG", 5, 2, 0, 1},
		{"PINGPONG", 3, 0, 0, 0},
		{"RADIANS", 180, 0, 0, math.Pi},
		{"DEGREES", math.Pi, 0, 0, 180},
	}
	for _, tc := range tests {
		got := evalMathOp(t, tc.op, tc.a, tc.b, tc.c)
		if math.Abs(got-tc.want) > 1e-5 {
			t.Errorf("%s(%v, %v, %v) = %v, want %v", tc.op, tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}

func TestMathTrig(t *testing.T) {
	if got := evalMathOp(t, "SINE", math.Pi/2, 0, 0); math.Abs(got-1) > 1e-6 {
		t.Errorf("SINE(pi/2) = %v", got)
	}
	if got := evalMathOp(t, "ARCTAN2", 1, 1, 0); math.Abs(got-math.Pi/4) > 1e-6 {
		t.Errorf("ARCTAN2(1, 1) = %v", got)
	}
	// Out-of-domain arcsine keeps the NaN rather than inventing a value.
	if got := evalMathOp(t, "ARCSINE", 2, 0, 0); !math.IsNaN(got) {
		t.Errorf("ARCSINE(2) = %v, want NaN", got)
	}
}

func TestMathSmoothMin(t *testing.T) {
	// Distant operands degrade to plain min; zero smoothing is exact min.
	if got := evalMathOp(t, "SMOOTH_MIN", 0, 10, 1); got != 0 {
		t.Errorf("SMOOTH_MIN distant = %v", got)
	}
	if got := evalMathOp(t, "SMOOTH_MIN", 3, 7, 0); got != 3 {
		t.Errorf("SMOOTH_MIN k=0 = %v", got)
	}
	// Near operands dip below both.
	if got := evalMathOp(t, "SMOOTH_MIN", 1, 1.1, 1); got >= 1 {
		t.Errorf("SMOOTH_MIN near = %v, want < 1", got)
	}
}

func TestMathClampFlag(t *testing.T) {
	ctx := NewContext(1)
	e := &Math{
		Op:    "ADD",
		Clamp: true,
		A:     &ConstScalar{Value: 2},
		B:     &ConstScalar{Value: 3},
		C:     &ConstScalar{},
	}
	vals, err := EvalScalar(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vals[0] != 1 {
		t.Errorf("clamped 2+3 = %v, want 1", vals[0])
	}
}

func TestMathAddBroadcast(t *testing.T) {
	ctx := NewContext(4)
	e := &Math{
		Op: "ADD",
		A:  &ConstScalar{Value: 2},
		B:  &ConstScalar{Value: 3},
		C:  &ConstScalar{},
	}
	cols, err := EvalColor(e, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(cols))
	}
	for i, c := range cols {
		if c != (Vec3{5, 5, 5}) {
			t.Errorf("element %d = %v, want (5,5,5)", i, c)
		}
	}
}

func TestMathUnknownOperation(t *testing.T) {
	ctx := NewContext(1)
	e := &Math{Op: "BOGUS", A: &ConstScalar{}, B: &ConstScalar{}, C: &ConstScalar{}}
	_, err := EvalScalar(e, ctx)
	var unhandled *UnhandledOperationError
	if !errors.As(err, &unhandled) {
		t.Fatalf("expected UnhandledOperationError, got %v", err)
	}
	if unhandled.Op != "BOGUS" {
		t.Errorf("error names op %q", unhandled.Op)
	}
}
