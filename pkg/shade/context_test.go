package shade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRejectsMismatchedLengths(t *testing.T) {
	ctx := NewContext(3)
	assert.Error(t, ctx.SetColorAttr("c", make([]Vec3, 2)))
	assert.Error(t, ctx.SetScalarAttr("s", make([]float32, 4)))
	assert.Error(t, ctx.SetPosition(make([]Vec3, 1)))
	assert.Error(t, ctx.SetNormal(nil))
	assert.NoError(t, ctx.SetScalarAttr("s", make([]float32, 3)))
}

func TestColorBufferShadowsScalar(t *testing.T) {
	// When a name exists in both maps the color buffer wins color reads
	// and the scalar buffer wins scalar reads; no coercion happens.
	ctx := NewContext(1)
	require.NoError(t, ctx.SetColorAttr("x", []Vec3{{1, 0, 0}}))
	require.NoError(t, ctx.SetScalarAttr("x", []float32{0.5}))

	cols, err := ctx.colorAttr("x")
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, 0, 0}, cols[0])

	vals, err := ctx.scalarAttr("x")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), vals[0])
}

func TestExpandToCorners(t *testing.T) {
	perVertex := []float32{10, 20, 30}
	corners := []int{0, 1, 2, 2, 1, 0}

	out, err := ExpandToCorners(perVertex, corners)
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 20, 30, 30, 20, 10}, out)
}

func TestExpandToCornersOutOfRange(t *testing.T) {
	_, err := ExpandToCorners([]float32{1}, []int{0, 1})
	assert.Error(t, err)
	_, err = ExpandToCorners([]float32{1}, []int{-1})
	assert.Error(t, err)
}
