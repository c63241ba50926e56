package reify

import (
	"fmt"

	"github.com/okani/shadebake/pkg/material"
)

// CycleError reports that traversal revisited a node already on the current
// path. Only true cycles trigger it; a node reachable through two
// independent branches of a DAG reifies once per branch instead.
type CycleError struct {
	Node material.NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reify: cycle through node %s", e.Node.Short())
}

// UnsupportedNodeError reports a node kind (or node parameterization) the
// engine has no lowering for.
type UnsupportedNodeError struct {
	Node   material.NodeID
	Kind   material.NodeKind
	Reason string
}

func (e *UnsupportedNodeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("reify: unsupported %s node %s: %s", e.Kind, e.Node.Short(), e.Reason)
	}
	return fmt.Sprintf("reify: unsupported node kind %s at %s", e.Kind, e.Node.Short())
}

// UnsupportedSocketError reports a socket name with no lowering on its node.
type UnsupportedSocketError struct {
	Node   material.NodeID
	Socket string
}

func (e *UnsupportedSocketError) Error() string {
	return fmt.Sprintf("reify: node %s has no supported socket %q", e.Node.Short(), e.Socket)
}
