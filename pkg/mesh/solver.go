package mesh

// EventKind tags a solver log entry.
type EventKind int

const (
	CreateEvent EventKind = iota
	DestroyEvent
)

func (k EventKind) String() string {
	if k == CreateEvent {
		return "create"
	}
	return "destroy"
}

// Solver is the external collaborator receiving structured change
// notifications from a Mesh. Hooks are invoked synchronously from editing
// operations while the caller holds exclusive access to the mesh; a Solver
// implementation must not re-enter the mesh from them.
type Solver interface {
	// Log records a structural change: the affected identifiers and their
	// kinds, plus an operation tag ("insert", "merge", ...) or "" for
	// plain inventory changes.
	Log(m *Mesh, kind EventKind, ids []int, kinds []ObjectKind, tag string)
	// SetDirty signals that mesh topology changed since the last solve.
	SetDirty(dirty bool)
	// PositionChanged signals that vertex positions moved outside of
	// integration.
	PositionChanged()
}
