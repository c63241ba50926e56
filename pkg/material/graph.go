// Package material defines the shading node graph: nodes, typed sockets,
// links, and reusable sub-graphs (groups). Graphs are authored by the host
// layer (or the Lisp engine) and consumed read-only by the reifier.
package material

import "fmt"

// Graph is the set of nodes and links owned by one material. A sub-graph
// used by group instances is itself an ordinary Graph whose boundary is
// marked by GroupInput/GroupOutput nodes.
type Graph struct {
	Name      string           `json:"name"`
	Nodes     map[NodeID]*Node `json:"nodes"`
	Links     []*Link          `json:"links"`
	NameIndex map[string]NodeID `json:"name_index"`
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:      name,
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *Graph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// Connect links an output socket to an input socket. An existing link into
// the same input is replaced, preserving the one-link-per-input invariant.
func (g *Graph) Connect(from *Node, fromSocket string, to *Node, toSocket string) error {
	if from.Output(fromSocket) == nil {
		return fmt.Errorf("material: node %s has no output socket %q", from.ID.Short(), fromSocket)
	}
	if to.Input(toSocket) == nil {
		return fmt.Errorf("material: node %s has no input socket %q", to.ID.Short(), toSocket)
	}
	for i, l := range g.Links {
		if l.ToNode == to.ID && l.ToSocket == toSocket {
			g.Links = append(g.Links[:i], g.Links[i+1:]...)
			break
		}
	}
	g.Links = append(g.Links, &Link{
		FromNode:   from.ID,
		FromSocket: fromSocket,
		ToNode:     to.ID,
		ToSocket:   toSocket,
	})
	return nil
}

// LinkInto returns the link terminating at the given input socket, or nil
// when the socket is unconnected.
func (g *Graph) LinkInto(node NodeID, socket string) *Link {
	for _, l := range g.Links {
		if l.ToNode == node && l.ToSocket == socket {
			return l
		}
	}
	return nil
}

// GroupOutputNode returns the graph's boundary output node, or nil. A graph
// used as a group template has exactly one (enforced by Validate).
func (g *Graph) GroupOutputNode() *Node {
	for _, n := range g.Nodes {
		if n.Kind == KindGroupOutput {
			return n
		}
	}
	return nil
}

// GroupInputNode returns the graph's boundary input node, or nil.
func (g *Graph) GroupInputNode() *Node {
	for _, n := range g.Nodes {
		if n.Kind == KindGroupInput {
			return n
		}
	}
	return nil
}

// NewNode creates a node of the given kind with its full socket catalog and
// default parameters, and adds it to the graph.
func (g *Graph) NewNode(kind NodeKind, name string) *Node {
	n := &Node{ID: NewNodeID(name), Kind: kind, Name: name}
	switch kind {
	case KindRGB:
		n.AddOutput("Color", SocketColor)
		n.Data = RGBData{Color: Color{0.5, 0.5, 0.5, 1}}
	case KindValue:
		n.AddOutput("Value", SocketScalar)
		n.Data = ValueData{}
	case KindAttribute:
		n.AddOutput("Color", SocketColor)
		n.AddOutput("Fac", SocketScalar)
		n.Data = AttributeData{}
	case KindGeometry:
		n.AddOutput("Position", SocketColor)
		n.AddOutput("Normal", SocketColor)
	case KindMath:
		n.AddInput("Value1", SocketScalar).DefaultValue = 0.5
		n.AddInput("Value2", SocketScalar).DefaultValue = 0.5
		n.AddInput("Value3", SocketScalar).DefaultValue = 0.5
		n.AddOutput("Value", SocketScalar)
		n.Data = MathData{Op: "ADD"}
	case KindVectorMath:
		n.AddInput("Vector1", SocketColor).DefaultColor = Color{}
		n.AddInput("Vector2", SocketColor).DefaultColor = Color{}
		n.AddInput("Vector3", SocketColor).DefaultColor = Color{}
		n.AddInput("Scale", SocketScalar).DefaultValue = 1
		n.AddOutput("Vector", SocketColor)
		n.AddOutput("Value", SocketScalar)
		n.Data = VectorMathData{Op: "ADD"}
	case KindMix:
		n.AddInput("Fac", SocketScalar).DefaultValue = 0.5
		n.AddInput("Color1", SocketColor)
		n.AddInput("Color2", SocketColor)
		n.AddOutput("Color", SocketColor)
		n.Data = MixData{Mode: "MIX"}
	case KindInvert:
		n.AddInput("Fac", SocketScalar).DefaultValue = 1
		n.AddInput("Color", SocketColor)
		n.AddOutput("Color", SocketColor)
	case KindShadeToBW:
		n.AddInput("Color", SocketColor)
		n.AddOutput("Val", SocketScalar)
	case KindClamp:
		n.AddInput("Value", SocketScalar).DefaultValue = 1
		n.AddInput("Min", SocketScalar)
		n.AddInput("Max", SocketScalar).DefaultValue = 1
		n.AddOutput("Result", SocketScalar)
		n.Data = ClampData{Mode: "MINMAX"}
	case KindBrightContrast:
		n.AddInput("Color", SocketColor)
		n.AddInput("Bright", SocketScalar)
		n.AddInput("Contrast", SocketScalar)
		n.AddOutput("Color", SocketColor)
	case KindGamma:
		n.AddInput("Color", SocketColor)
		n.AddInput("Gamma", SocketScalar).DefaultValue = 1
		n.AddOutput("Color", SocketColor)
	case KindSeparateRGB:
		n.AddInput("Image", SocketColor)
		n.AddOutput("R", SocketScalar)
		n.AddOutput("G", SocketScalar)
		n.AddOutput("B", SocketScalar)
	case KindSeparateXYZ:
		n.AddInput("Vector", SocketColor)
		n.AddOutput("X", SocketScalar)
		n.AddOutput("Y", SocketScalar)
		n.AddOutput("Z", SocketScalar)
	case KindSeparateHSV:
		n.AddInput("Color", SocketColor)
		n.AddOutput("H", SocketScalar)
		n.AddOutput("S", SocketScalar)
		n.AddOutput("V", SocketScalar)
	case KindCombineRGB:
		n.AddInput("R", SocketScalar)
		n.AddInput("G", SocketScalar)
		n.AddInput("B", SocketScalar)
		n.AddOutput("Image", SocketColor)
	case KindCombineXYZ:
		n.AddInput("X", SocketScalar)
		n.AddInput("Y", SocketScalar)
		n.AddInput("Z", SocketScalar)
		n.AddOutput("Vector", SocketColor)
	case KindCombineHSV:
		n.AddInput("H", SocketScalar)
		n.AddInput("S", SocketScalar)
		n.AddInput("V", SocketScalar)
		n.AddOutput("Color", SocketColor)
	case KindRamp:
		n.AddInput("Fac", SocketScalar).DefaultValue = 0.5
		n.AddOutput("Color", SocketColor)
		n.AddOutput("Alpha", SocketScalar)
		n.Data = RampData{
			Interp: "LINEAR",
			Stops: []RampStop{
				{Pos: 0, Color: Color{0, 0, 0, 1}},
				{Pos: 1, Color: Color{1, 1, 1, 1}},
			},
		}
	case KindMapRange:
		n.AddInput("Value", SocketScalar).DefaultValue = 1
		n.AddInput("FromMin", SocketScalar)
		n.AddInput("FromMax", SocketScalar).DefaultValue = 1
		n.AddInput("ToMin", SocketScalar)
		n.AddInput("ToMax", SocketScalar).DefaultValue = 1
		n.AddInput("Steps", SocketScalar).DefaultValue = 4
		n.AddOutput("Result", SocketScalar)
		n.Data = MapRangeData{Interp: "LINEAR", Clamp: true}
	case KindHueSaturation:
		n.AddInput("Hue", SocketScalar).DefaultValue = 0.5
		n.AddInput("Saturation", SocketScalar).DefaultValue = 1
		n.AddInput("Value", SocketScalar).DefaultValue = 1
		n.AddInput("Fac", SocketScalar).DefaultValue = 1
		n.AddInput("Color", SocketColor)
		n.AddOutput("Color", SocketColor)
	case KindReroute:
		n.AddInput("Input", SocketColor)
		n.AddOutput("Output", SocketColor)
	case KindGroupInput, KindGroupOutput:
		// Boundary sockets are authored per group via AddInput/AddOutput.
	}
	g.AddNode(n)
	return n
}

// NewGroupNode creates a group-instance node bound to the given sub-graph.
// Its inputs mirror the sub-graph's GroupInput outputs and its outputs
// mirror the sub-graph's GroupOutput inputs, so the instance exposes
// exactly the template's boundary.
func (g *Graph) NewGroupNode(name string, sub *Graph) *Node {
	n := &Node{ID: NewNodeID(name), Kind: KindGroup, Name: name, Data: GroupData{Graph: sub}}
	if in := sub.GroupInputNode(); in != nil {
		for _, s := range in.Outputs {
			mirrored := n.AddInput(s.Name, s.Kind)
			mirrored.DefaultColor = s.DefaultColor
			mirrored.DefaultValue = s.DefaultValue
		}
	}
	if out := sub.GroupOutputNode(); out != nil {
		for _, s := range out.Inputs {
			n.AddOutput(s.Name, s.Kind)
		}
	}
	g.AddNode(n)
	return n
}
