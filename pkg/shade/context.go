package shade

import "fmt"

// Context holds the per-element data one bake evaluates against: the element
// count, named attribute buffers, and the geometry-derived position and
// normal arrays. A Context is built once per mesh, is read-only for the
// duration of a bake, and may serve any number of concurrent evaluations.
type Context struct {
	n        int
	colors   map[string][]Vec3
	scalars  map[string][]float32
	position []Vec3
	normal   []Vec3
}

// NewContext creates an empty context for n elements.
func NewContext(n int) *Context {
	return &Context{
		n:       n,
		colors:  make(map[string][]Vec3),
		scalars: make(map[string][]float32),
	}
}

// Len returns the element count.
func (c *Context) Len() int {
	return c.n
}

// SetColorAttr registers a color attribute buffer. The buffer length must
// match the element count.
func (c *Context) SetColorAttr(name string, data []Vec3) error {
	if len(data) != c.n {
		return fmt.Errorf("shade: attribute %q has %d elements, context has %d", name, len(data), c.n)
	}
	c.colors[name] = data
	return nil
}

// SetScalarAttr registers a scalar attribute buffer.
func (c *Context) SetScalarAttr(name string, data []float32) error {
	if len(data) != c.n {
		return fmt.Errorf("shade: attribute %q has %d elements, context has %d", name, len(data), c.n)
	}
	c.scalars[name] = data
	return nil
}

// SetPosition registers the per-element position array.
func (c *Context) SetPosition(data []Vec3) error {
	if len(data) != c.n {
		return fmt.Errorf("shade: position array has %d elements, context has %d", len(data), c.n)
	}
	c.position = data
	return nil
}

// SetNormal registers the per-element normal array.
func (c *Context) SetNormal(data []Vec3) error {
	if len(data) != c.n {
		return fmt.Errorf("shade: normal array has %d elements, context has %d", len(data), c.n)
	}
	c.normal = data
	return nil
}

// colorAttr resolves a named attribute as colors. A buffer registered as
// scalars satisfies a color read by broadcasting; only a name absent from
// both maps is an error.
func (c *Context) colorAttr(name string) ([]Vec3, error) {
	if data, ok := c.colors[name]; ok {
		return data, nil
	}
	if data, ok := c.scalars[name]; ok {
		return broadcast(data), nil
	}
	return nil, &MissingAttributeError{Name: name}
}

// scalarAttr resolves a named attribute as scalars, collapsing a color
// buffer through luminance when needed.
func (c *Context) scalarAttr(name string) ([]float32, error) {
	if data, ok := c.scalars[name]; ok {
		return data, nil
	}
	if data, ok := c.colors[name]; ok {
		return luminance(data), nil
	}
	return nil, &MissingAttributeError{Name: name}
}

func (c *Context) positionArray() ([]Vec3, error) {
	if c.position == nil {
		return nil, &MissingAttributeError{Name: "position"}
	}
	return c.position, nil
}

func (c *Context) normalArray() ([]Vec3, error) {
	if c.normal == nil {
		return nil, &MissingAttributeError{Name: "normal"}
	}
	return c.normal, nil
}

// ExpandToCorners re-indexes a per-vertex buffer into the per-corner domain
// using the corner-to-vertex table supplied by the mesh provider.
func ExpandToCorners[T any](perVertex []T, cornerVertex []int) ([]T, error) {
	out := make([]T, len(cornerVertex))
	for i, v := range cornerVertex {
		if v < 0 || v >= len(perVertex) {
			return nil, fmt.Errorf("shade: corner %d references vertex %d of %d", i, v, len(perVertex))
		}
		out[i] = perVertex[v]
	}
	return out, nil
}
