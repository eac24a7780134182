package mesh

import "fmt"

// ValidationError describes a single structural finding on a stored
// object.
type ValidationError struct {
	Kind    ObjectKind
	ID      int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, e.Message)
}

// Validate runs all structural checks over the mesh and returns every
// finding. An empty result means the mesh satisfies its invariants. The
// check is read-only and is the caller's recovery check after a failed
// multi-step edit.
func (m *Mesh) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateInventory(m, &m.vertices, KindVertex)...)
	errs = append(errs, validateInventory(m, &m.surfaces, KindSurface)...)
	errs = append(errs, validateInventory(m, &m.bodies, KindBody)...)
	errs = append(errs, validateInventory(m, &m.structures, KindStructure)...)
	errs = append(errs, m.validateLinks()...)
	return errs
}

// validateInventory checks slot bookkeeping and per-object soundness for
// one inventory: a slot is either empty and in the available set, or
// holds exactly one object whose stored identifier and mesh back-reference
// match.
func validateInventory[T slotted](m *Mesh, inv *inventory[T], kind ObjectKind) []ValidationError {
	var errs []ValidationError
	var zero T

	avail := make(map[int]bool, len(inv.avail))
	for _, id := range inv.avail {
		if id < 0 || id >= len(inv.slots) {
			errs = append(errs, ValidationError{Kind: kind, ID: id,
				Message: "available id outside inventory bounds"})
			continue
		}
		if avail[id] {
			errs = append(errs, ValidationError{Kind: kind, ID: id,
				Message: "available id listed twice"})
		}
		avail[id] = true
	}

	for i, obj := range inv.slots {
		if obj == zero {
			if !avail[i] {
				errs = append(errs, ValidationError{Kind: kind, ID: i,
					Message: "empty slot missing from available set"})
			}
			continue
		}
		if avail[i] {
			errs = append(errs, ValidationError{Kind: kind, ID: i,
				Message: "occupied slot listed as available"})
		}
		if obj.ID() != i {
			errs = append(errs, ValidationError{Kind: kind, ID: i,
				Message: fmt.Sprintf("stored identifier %d does not match slot", obj.ID())})
		}
		if obj.Mesh() != m {
			errs = append(errs, ValidationError{Kind: kind, ID: i,
				Message: "mesh back-reference does not match owning mesh"})
		}
		if err := obj.Validate(); err != nil {
			errs = append(errs, ValidationError{Kind: kind, ID: i, Message: err.Error()})
		}
	}
	return errs
}

// validateLinks checks that every relation of a stored object points at an
// object stored in the same mesh with a matching back link. Dangling
// references left behind by removals are reported here.
func (m *Mesh) validateLinks() []ValidationError {
	var errs []ValidationError

	for _, v := range m.vertices.live() {
		for _, s := range v.surfaces {
			if !s.storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindVertex, ID: v.id,
					Message: "references an unstored surface (dangling)"})
			} else if s.VertexIndex(v) < 0 {
				errs = append(errs, ValidationError{Kind: KindVertex, ID: v.id,
					Message: fmt.Sprintf("surface %d does not list the vertex on its boundary", s.id)})
			}
		}
	}

	for _, s := range m.surfaces.live() {
		for _, v := range s.vertices {
			if !v.storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindSurface, ID: s.id,
					Message: "boundary references an unstored vertex"})
			} else if !v.In(s) {
				errs = append(errs, ValidationError{Kind: KindSurface, ID: s.id,
					Message: fmt.Sprintf("vertex %d does not link back to the surface", v.id)})
			}
		}
		for _, b := range s.Bodies() {
			if !b.storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindSurface, ID: s.id,
					Message: "references an unstored body (dangling)"})
			}
		}
	}

	for _, b := range m.bodies.live() {
		for _, s := range b.surfaces {
			if !s.storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindBody, ID: b.id,
					Message: "references an unstored surface"})
			}
		}
		for _, st := range b.structures {
			if !st.storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindBody, ID: b.id,
					Message: "references an unstored structure (dangling)"})
			}
		}
	}

	for _, st := range m.structures.live() {
		for _, p := range st.parents {
			if !p.ident().storedIn(m) {
				errs = append(errs, ValidationError{Kind: KindStructure, ID: st.id,
					Message: fmt.Sprintf("aggregates an unstored %s", p.Kind())})
			}
		}
	}

	return errs
}
