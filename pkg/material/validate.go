package material

import (
	"fmt"

	"go.uber.org/multierr"
)

// ValidationSeverity indicates whether a finding blocks reification or is
// merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks reification
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs all structural checks on the graph and the sub-graphs it
// references. An empty slice means the graph is well formed. Validation is
// read-only and never mutates the graph.
func Validate(g *Graph) []ValidationError {
	return validate(g, make(map[*Graph]bool))
}

// ValidateErr is Validate collapsed into a single error (nil when clean),
// combining the blocking findings with multierr.
func ValidateErr(g *Graph) error {
	var err error
	for _, e := range Validate(g) {
		if e.Severity == SeverityError {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func validate(g *Graph, seen map[*Graph]bool) []ValidationError {
	if seen[g] {
		return nil
	}
	seen[g] = true

	var errs []ValidationError
	errs = append(errs, validateLinks(g)...)
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateNodes(g)...)

	// Recurse into group templates.
	for _, n := range g.Nodes {
		if n.Kind != KindGroup {
			continue
		}
		data, ok := n.Data.(GroupData)
		if !ok || data.Graph == nil {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "group node has no sub-graph",
				Severity: SeverityError,
			})
			continue
		}
		if data.Graph.GroupOutputNode() == nil {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("sub-graph %q has no group-output node", data.Graph.Name),
				Severity: SeverityError,
			})
		}
		errs = append(errs, validate(data.Graph, seen)...)
	}
	return errs
}

// validateLinks checks that every link references existing nodes and
// sockets, and that no input socket terminates more than one link.
func validateLinks(g *Graph) []ValidationError {
	var errs []ValidationError
	inputsSeen := make(map[string]bool)
	for _, l := range g.Links {
		from := g.Get(l.FromNode)
		if from == nil {
			errs = append(errs, ValidationError{
				NodeID:   l.FromNode,
				Message:  "link source node does not exist",
				Severity: SeverityError,
			})
			continue
		}
		if from.Output(l.FromSocket) == nil {
			errs = append(errs, ValidationError{
				NodeID:   l.FromNode,
				Message:  fmt.Sprintf("link source socket %q does not exist", l.FromSocket),
				Severity: SeverityError,
			})
		}
		to := g.Get(l.ToNode)
		if to == nil {
			errs = append(errs, ValidationError{
				NodeID:   l.ToNode,
				Message:  "link target node does not exist",
				Severity: SeverityError,
			})
			continue
		}
		if to.Input(l.ToSocket) == nil {
			errs = append(errs, ValidationError{
				NodeID:   l.ToNode,
				Message:  fmt.Sprintf("link target socket %q does not exist", l.ToSocket),
				Severity: SeverityError,
			})
		}
		key := string(l.ToNode) + "\x00" + l.ToSocket
		if inputsSeen[key] {
			errs = append(errs, ValidationError{
				NodeID:   l.ToNode,
				Message:  fmt.Sprintf("input socket %q terminates more than one link", l.ToSocket),
				Severity: SeverityError,
			})
		}
		inputsSeen[key] = true
	}
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = on current DFS path, black (2) = fully
// explored. Encountering a gray node means a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	// Adjacency: node -> the source nodes feeding its inputs.
	sources := make(map[NodeID][]NodeID)
	for _, l := range g.Links {
		sources[l.ToNode] = append(sources[l.ToNode], l.FromNode)
	}

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // reports whether a cycle was found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "node is part of a cycle",
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		for _, src := range sources[id] {
			if visit(src) {
				break
			}
		}
		color[id] = black
		return false
	}

	for id := range g.Nodes {
		visit(id)
	}
	return errs
}

// validateNodes checks kind-specific parameter invariants.
func validateNodes(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes {
		switch n.Kind {
		case KindRamp:
			data, ok := n.Data.(RampData)
			if !ok || len(data.Stops) == 0 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  "ramp node has no stops",
					Severity: SeverityError,
				})
				continue
			}
			for i := 1; i < len(data.Stops); i++ {
				if data.Stops[i].Pos < data.Stops[i-1].Pos {
					errs = append(errs, ValidationError{
						NodeID:   n.ID,
						Message:  fmt.Sprintf("ramp stop %d is out of order", i),
						Severity: SeverityError,
					})
				}
			}
		case KindAttribute:
			data, ok := n.Data.(AttributeData)
			if !ok || data.AttrName == "" {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  "attribute node names no attribute",
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
