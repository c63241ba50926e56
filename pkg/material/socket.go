package material

import (
	"fmt"
	"sync/atomic"
)

// NodeID identifies a node. IDs are unique across all graphs built in one
// process, so traversal state can safely span group boundaries.
type NodeID string

// ZeroID is the empty node ID.
const ZeroID NodeID = ""

var idCounter uint64

// NewNodeID derives a fresh node ID from a human-readable seed.
func NewNodeID(seed string) NodeID {
	n := atomic.AddUint64(&idCounter, 1)
	return NodeID(fmt.Sprintf("%s#%04x", seed, n))
}

// IsZero reports whether the ID is empty.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns a truncated form for error messages.
func (id NodeID) Short() string {
	if len(id) <= 16 {
		return string(id)
	}
	return string(id[:16]) + "…"
}

// Color is an RGBA socket constant.
type Color [4]float32

// SocketKind distinguishes color-valued from scalar-valued sockets. Vector
// sockets are modeled as color sockets: both are per-element triples.
type SocketKind int

const (
	SocketColor SocketKind = iota
	SocketScalar
)

func (k SocketKind) String() string {
	switch k {
	case SocketColor:
		return "color"
	case SocketScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Socket is an addressable input or output on a node. Unconnected inputs
// fall back to their default constant.
type Socket struct {
	Node         NodeID     `json:"node"`
	Name         string     `json:"name"`
	Kind         SocketKind `json:"kind"`
	IsOutput     bool       `json:"is_output,omitempty"`
	DefaultColor Color      `json:"default_color,omitempty"`
	DefaultValue float32    `json:"default_value,omitempty"`
}

// Link is a directed edge from one node's output socket to another node's
// input socket. At most one link terminates at a given input socket.
type Link struct {
	FromNode   NodeID `json:"from_node"`
	FromSocket string `json:"from_socket"`
	ToNode     NodeID `json:"to_node"`
	ToSocket   string `json:"to_socket"`
}
