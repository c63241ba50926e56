package shade

import "fmt"

// MissingAttributeError reports that an attribute-read expression named a
// buffer the element context does not provide. This is the only
// evaluation-time failure driven by external data rather than the shape of
// the expression tree itself.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("shade: element context has no attribute %q", e.Name)
}

// UnhandledOperationError reports an operator name outside the known set for
// its family. A correct reifier never produces one; seeing this error means
// the reifier and evaluator catalogs have drifted apart.
type UnhandledOperationError struct {
	Family string // "math", "vector", "blend", "ramp", "map-range"
	Op     string
}

func (e *UnhandledOperationError) Error() string {
	return fmt.Sprintf("shade: unhandled %s operation %q", e.Family, e.Op)
}

// UnresolvedInputError reports a group-input placeholder that survived to
// evaluation. Like UnhandledOperationError it indicates a defect in the
// lowering pass, not bad user data.
type UnresolvedInputError struct {
	Socket string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("shade: unresolved group input %q", e.Socket)
}
