package mesh

import "fmt"

// ErrorKind classifies editing failures.
type ErrorKind int

const (
	// ErrStructural covers re-adding a stored object, invalid identifier
	// bounds, and mismatched mesh ownership on remove.
	ErrStructural ErrorKind = iota
	// ErrAdjacency covers non-contiguous shared boundary runs, non-adjacent
	// vertices during merge, and surfaces already bounded on both sides.
	ErrAdjacency
	// ErrArity covers coefficient count mismatches and coefficients outside
	// their permitted range.
	ErrArity
	// ErrDegeneracy covers zero-length reference edges and polygons below
	// the minimum vertex count.
	ErrDegeneracy
)

func (k ErrorKind) String() string {
	switch k {
	case ErrStructural:
		return "structural"
	case ErrAdjacency:
		return "adjacency"
	case ErrArity:
		return "arity"
	case ErrDegeneracy:
		return "degeneracy"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// OpError is the uniform failure result of mesh operations.
type OpError struct {
	Op      string    // operation that failed, e.g. "merge"
	Kind    ErrorKind // taxonomy class
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("mesh: %s: %s: %s", e.Op, e.Kind, e.Message)
}

func opErr(op string, kind ErrorKind, format string, args ...any) *OpError {
	return &OpError{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy class from an error produced by this
// package. The second return is false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	if oe, ok := err.(*OpError); ok {
		return oe.Kind, true
	}
	return 0, false
}
