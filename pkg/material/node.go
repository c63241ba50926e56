package material

// NodeKind enumerates the shading node types the engine models.
type NodeKind int

const (
	KindRGB            NodeKind = iota // constant color
	KindValue                          // constant scalar
	KindAttribute                      // named attribute lookup
	KindGeometry                       // position/normal outputs
	KindMath                           // scalar arithmetic
	KindVectorMath                     // vector arithmetic
	KindMix                            // color blend
	KindInvert                         // channel complement
	KindShadeToBW                      // luminance
	KindClamp                          // scalar clamp
	KindBrightContrast                 // brightness/contrast
	KindGamma                          // per-channel power
	KindSeparateRGB                    // channel splits
	KindSeparateXYZ
	KindSeparateHSV
	KindCombineRGB // channel combines
	KindCombineXYZ
	KindCombineHSV
	KindRamp          // color gradient
	KindMapRange      // interval remap
	KindHueSaturation // HSV adjust
	KindReroute       // passthrough
	KindGroup         // sub-graph instance
	KindGroupInput    // sub-graph boundary in
	KindGroupOutput   // sub-graph boundary out
)

func (k NodeKind) String() string {
	switch k {
	case KindRGB:
		return "rgb"
	case KindValue:
		return "value"
	case KindAttribute:
		return "attribute"
	case KindGeometry:
		return "geometry"
	case KindMath:
		return "math"
	case KindVectorMath:
		return "vector-math"
	case KindMix:
		return "mix"
	case KindInvert:
		return "invert"
	case KindShadeToBW:
		return "shade-to-bw"
	case KindClamp:
		return "clamp"
	case KindBrightContrast:
		return "bright-contrast"
	case KindGamma:
		return "gamma"
	case KindSeparateRGB:
		return "separate-rgb"
	case KindSeparateXYZ:
		return "separate-xyz"
	case KindSeparateHSV:
		return "separate-hsv"
	case KindCombineRGB:
		return "combine-rgb"
	case KindCombineXYZ:
		return "combine-xyz"
	case KindCombineHSV:
		return "combine-hsv"
	case KindRamp:
		return "ramp"
	case KindMapRange:
		return "map-range"
	case KindHueSaturation:
		return "hue-saturation"
	case KindReroute:
		return "reroute"
	case KindGroup:
		return "group"
	case KindGroupInput:
		return "group-input"
	case KindGroupOutput:
		return "group-output"
	default:
		return "unknown"
	}
}

// Node is one shading node: a kind tag, kind-specific parameters, and its
// input and output sockets.
type Node struct {
	ID      NodeID    `json:"id"`
	Kind    NodeKind  `json:"kind"`
	Name    string    `json:"name,omitempty"`
	Inputs  []*Socket `json:"inputs,omitempty"`
	Outputs []*Socket `json:"outputs,omitempty"`
	Data    NodeData  `json:"data,omitempty"`
}

// NodeData is the interface for kind-specific node parameters.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Input returns the input socket with the given name, or nil.
func (n *Node) Input(name string) *Socket {
	for _, s := range n.Inputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Output returns the output socket with the given name, or nil.
func (n *Node) Output(name string) *Socket {
	for _, s := range n.Outputs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddInput appends an input socket. Used by the socket catalogs and by
// group boundary authoring.
func (n *Node) AddInput(name string, kind SocketKind) *Socket {
	s := &Socket{Node: n.ID, Name: name, Kind: kind}
	if kind == SocketColor {
		s.DefaultColor = Color{0, 0, 0, 1}
	}
	n.Inputs = append(n.Inputs, s)
	return s
}

// AddOutput appends an output socket.
func (n *Node) AddOutput(name string, kind SocketKind) *Socket {
	s := &Socket{Node: n.ID, Name: name, Kind: kind, IsOutput: true}
	n.Outputs = append(n.Outputs, s)
	return s
}

// ---------------------------------------------------------------------------
// Kind-specific parameters
// ---------------------------------------------------------------------------

// RGBData holds a constant color.
type RGBData struct {
	Color Color `json:"color"`
}

func (RGBData) nodeData() {}

// ValueData holds a constant scalar.
type ValueData struct {
	Value float32 `json:"value"`
}

func (ValueData) nodeData() {}

// AttributeData names the mesh attribute the node reads.
type AttributeData struct {
	AttrName string `json:"attr_name"`
}

func (AttributeData) nodeData() {}

// MathData selects a scalar operation.
type MathData struct {
	Op    string `json:"op"`
	Clamp bool   `json:"clamp"`
}

func (MathData) nodeData() {}

// VectorMathData selects a vector operation.
type VectorMathData struct {
	Op string `json:"op"`
}

func (VectorMathData) nodeData() {}

// MixData selects a blend mode.
type MixData struct {
	Mode  string `json:"mode"`
	Clamp bool   `json:"clamp"`
}

func (MixData) nodeData() {}

// ClampData selects the clamp mode. Only "MINMAX" has a lowering.
type ClampData struct {
	Mode string `json:"mode"`
}

func (ClampData) nodeData() {}

// RampStop is one gradient control point (RGBA).
type RampStop struct {
	Pos   float32 `json:"pos"`
	Color Color   `json:"color"`
}

// RampData holds the gradient stops and interpolation mode.
type RampData struct {
	Interp string     `json:"interp"` // "LINEAR" or "CONSTANT"
	Stops  []RampStop `json:"stops"`
}

func (RampData) nodeData() {}

// MapRangeData selects the remap interpolation kind.
type MapRangeData struct {
	Interp string `json:"interp"` // LINEAR, STEPPED, SMOOTHSTEP, SMOOTHERSTEP
	Clamp  bool   `json:"clamp"`
}

func (MapRangeData) nodeData() {}

// GroupData references the instanced sub-graph.
type GroupData struct {
	Graph *Graph `json:"graph"`
}

func (GroupData) nodeData() {}
