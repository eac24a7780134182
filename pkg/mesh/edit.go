package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Editing operations. Each leaves the mesh satisfying the structural
// invariants on success and reports the change to an attached solver.
// Multi-step operations validate what they can upfront but are not
// transactional: a failure partway through may leave partial mutations,
// and the caller should re-run Validate before trusting the mesh.
//
// Operations that splice vertices out of neighboring surfaces
// (ReplaceSurface, MergeVertices) can shrink a neighbor below the
// three-vertex minimum while it stays stored. Validate reports such
// survivors; callers merging near small faces should check for them.

// Insert splices toInsert between v1 and v2 on every surface where the
// two are cyclically adjacent, in either order, and registers it with the
// mesh. Fails if no such surface exists.
func (m *Mesh) Insert(toInsert, v1, v2 *Vertex) error {
	spliced := false
	for _, s := range v1.surfaces {
		for i := range s.vertices {
			a, b := s.vertices[i], s.Vertex(i+1)
			if (a == v1 && b == v2) || (a == v2 && b == v1) {
				s.insertVertexBefore((i+1)%len(s.vertices), toInsert)
				toInsert.addSurface(s)
				spliced = true
				break
			}
		}
	}
	if !spliced {
		err := opErr("insert", ErrAdjacency, "vertices share no surface edge")
		m.log.Error("insert rejected", zap.Error(err))
		return err
	}

	if err := m.AddVertex(toInsert); err != nil {
		return err
	}
	m.notifyOp(CreateEvent,
		[]int{v1.ID(), v2.ID()},
		[]ObjectKind{KindVertex, KindVertex}, "insert")
	return nil
}

// ReplaceSurface collapses toReplace into the single vertex toInsert.
// Every surface sharing a contiguous run of boundary vertices with
// toReplace has that run spliced out and replaced by toInsert; a shared
// run that is non-contiguous rejects the whole operation before any
// mutation. The replaced surface and every vertex left bounding no
// surface are removed, and toInsert is added. A neighbor whose shared
// run spans most of its boundary may be left below three vertices;
// Validate flags it as degenerate.
func (m *Mesh) ReplaceSurface(toInsert *Vertex, toReplace *Surface) error {
	// Gather every surface in contact with the replaced one.
	var connected []*Surface
	seen := map[*Surface]bool{toReplace: true}
	for _, v := range toReplace.vertices {
		for _, s := range v.surfaces {
			if !seen[s] {
				seen[s] = true
				connected = append(connected, s)
			}
		}
	}

	// Validate contiguity of every contact before mutating anything.
	type splice struct {
		s      *Surface
		detach []*Vertex
	}
	splices := make([]splice, 0, len(connected))
	for _, s := range connected {
		var detach []*Vertex
		for i, lab := range s.contiguousEdgeLabels(toReplace) {
			if lab > 1 {
				err := opErr("replace", ErrAdjacency,
					"surface %d shares a non-contiguous boundary run", s.id)
				m.log.Error("replace rejected", zap.Error(err))
				return err
			}
			if lab == 1 {
				detach = append(detach, s.vertices[i])
			}
		}
		splices = append(splices, splice{s: s, detach: detach})
	}

	// Splice the inserted vertex in place of each shared run.
	for _, sp := range splices {
		sp.s.insertVertexBefore(sp.s.VertexIndex(sp.detach[0]), toInsert)
		toInsert.addSurface(sp.s)
		for _, v := range sp.detach {
			sp.s.detachVertex(v)
		}
	}

	replacedID := toReplace.ID()
	boundary := append([]*Vertex(nil), toReplace.vertices...)
	if err := m.Remove(toReplace); err != nil {
		return err
	}
	for _, v := range boundary {
		v.removeSurface(toReplace)
		if len(v.surfaces) == 0 && v.ID() >= 0 {
			if err := m.Remove(v); err != nil {
				return err
			}
		}
	}

	if err := m.AddVertex(toInsert); err != nil {
		return err
	}
	m.notifyOp(CreateEvent,
		[]int{toInsert.ID(), replacedID},
		[]ObjectKind{KindVertex, KindSurface}, "replace")
	return nil
}

// ReplaceVertex fans toReplace out into a new surface of the given type.
// One coefficient is required per neighbor of toReplace, each strictly
// inside (0, 1); a new vertex is spliced in at the interpolated position
// toward every neighbor, the replaced vertex is detached and removed, and
// the new surface is built from the inserted vertices.
func (m *Mesh) ReplaceVertex(stype *SurfaceType, toReplace *Vertex, lenCfs []float64) (*Surface, error) {
	neighbors := toReplace.NeighborVertices()
	if len(lenCfs) != len(neighbors) {
		err := opErr("replace", ErrArity,
			"%d length coefficients for %d neighbors", len(lenCfs), len(neighbors))
		m.log.Error("replace rejected", zap.Error(err))
		return nil, err
	}
	for _, cf := range lenCfs {
		if cf <= 0 || cf >= 1 {
			err := opErr("replace", ErrArity,
				"length coefficient %g outside (0, 1)", cf)
			m.log.Error("replace rejected", zap.Error(err))
			return nil, err
		}
	}

	pos0 := toReplace.Position()
	inserted := make([]*Vertex, 0, len(neighbors))
	for i, nb := range neighbors {
		pos := pos0.Add(nb.Position().Sub(pos0).Mul(lenCfs[i]))
		v := NewVertex(m.particles.New(pos))
		if err := m.Insert(v, toReplace, nb); err != nil {
			return nil, err
		}
		inserted = append(inserted, v)
	}

	for _, s := range append([]*Surface(nil), toReplace.surfaces...) {
		s.detachVertex(toReplace)
	}

	s, err := stype.New(inserted)
	if err != nil {
		m.log.Error("replace failed to build surface", zap.Error(err))
		return nil, err
	}

	replacedID := toReplace.ID()
	if err := m.Remove(toReplace); err != nil {
		return nil, err
	}
	if err := m.AddSurface(s); err != nil {
		return nil, err
	}
	m.notifyOp(CreateEvent,
		[]int{s.ID(), replacedID},
		[]ObjectKind{KindSurface, KindVertex}, "replace")
	return s, nil
}

// MergeVertices collapses toRemove into toKeep. The two must share at
// least one surface and be cyclically adjacent on it. toKeep relocates to
// toKeep + (toRemove − toKeep) × lenCf, evaluated before the removal. A
// surface that loses toRemove may drop below three vertices; Validate
// flags it as degenerate.
func (m *Mesh) MergeVertices(toKeep, toRemove *Vertex, lenCf float64) error {
	shared := toKeep.SharedSurfaces(toRemove)
	if len(shared) == 0 {
		err := opErr("merge", ErrAdjacency, "vertices share no surface")
		m.log.Error("merge rejected", zap.Error(err))
		return err
	}
	s := shared[0]
	adjacent := false
	for i := range s.vertices {
		a, b := s.vertices[i], s.Vertex(i+1)
		if (a == toKeep && b == toRemove) || (a == toRemove && b == toKeep) {
			adjacent = true
			break
		}
	}
	if !adjacent {
		err := opErr("merge", ErrAdjacency,
			"vertices are not adjacent on shared surface %d", s.id)
		m.log.Error("merge rejected", zap.Error(err))
		return err
	}

	keepPos := toKeep.Position()
	newPos := keepPos.Add(toRemove.Position().Sub(keepPos).Mul(lenCf))
	removedID := toRemove.ID()

	for _, sv := range append([]*Surface(nil), toRemove.surfaces...) {
		sv.detachVertex(toRemove)
	}
	if err := m.Remove(toRemove); err != nil {
		return err
	}
	toKeep.SetPosition(newPos)

	m.notifyOp(CreateEvent,
		[]int{toKeep.ID(), removedID},
		[]ObjectKind{KindVertex, KindVertex}, "merge")
	return nil
}

// MergeSurfaces collapses toRemove into toKeep. The surfaces must have
// equal vertex counts. Kept vertices not shared with the removed surface
// are greedily matched to the nearest unmatched removed vertices; every
// other surface referencing a matched removed vertex is re-pointed to its
// kept partner, body ownership transfers to the kept surface, and each
// exclusive kept vertex relocates toward its partner by its coefficient
// (padded with 0.5 when lenCfs is short).
func (m *Mesh) MergeSurfaces(toKeep, toRemove *Surface, lenCfs []float64) error {
	if len(toKeep.vertices) != len(toRemove.vertices) {
		err := opErr("merge", ErrArity,
			"surfaces have %d and %d vertices", len(toKeep.vertices), len(toRemove.vertices))
		m.log.Error("merge rejected", zap.Error(err))
		return err
	}

	var keepExcl []*Vertex
	for _, v := range toKeep.vertices {
		if !v.In(toRemove) {
			keepExcl = append(keepExcl, v)
		}
	}

	cfs := append([]float64(nil), lenCfs...)
	if len(cfs) < len(keepExcl) {
		m.log.Debug("padding merge length coefficients",
			zap.Int("provided", len(cfs)), zap.Int("needed", len(keepExcl)))
		for len(cfs) < len(keepExcl) {
			cfs = append(cfs, 0.5)
		}
	}

	// Match each exclusive kept vertex to the nearest unmatched removed
	// vertex by Euclidean distance.
	matched := make([]*Vertex, 0, len(keepExcl))
	used := make(map[*Vertex]bool, len(keepExcl))
	for _, kv := range keepExcl {
		kp := kv.Position()
		var best *Vertex
		bestDist := 0.0
		for _, rv := range toRemove.vertices {
			if used[rv] {
				continue
			}
			if d := rv.Position().Sub(kp).Len(); best == nil || d < bestDist {
				best, bestDist = rv, d
			}
		}
		if best == nil {
			err := opErr("merge", ErrStructural, "could not match surface vertices")
			m.log.Error("merge failed", zap.Error(err))
			return err
		}
		used[best] = true
		matched = append(matched, best)
	}

	// Re-point every other surface from the matched removed vertices to
	// their kept partners.
	for i, rv := range matched {
		kv := keepExcl[i]
		for _, s := range append([]*Surface(nil), rv.surfaces...) {
			if s == toRemove {
				continue
			}
			if s.VertexIndex(rv) < 0 {
				err := opErr("merge", ErrStructural,
					"surface %d lost its link to a matched vertex", s.id)
				m.log.Error("merge failed", zap.Error(err))
				return err
			}
			s.replaceVertex(rv, kv)
			kv.addSurface(s)
		}
	}

	// Transfer body ownership from the removed surface to the kept one.
	for _, b := range toRemove.Bodies() {
		if !toKeep.In(b) {
			if err := b.addSurface(toKeep); err != nil {
				m.log.Error("merge failed", zap.Error(err))
				return err
			}
		}
		b.removeSurface(toRemove)
	}

	// Detach the matched removed vertices entirely, and drop the shared
	// vertices' back links to the surface about to disappear.
	for _, rv := range matched {
		rv.surfaces = nil
		if i := toRemove.VertexIndex(rv); i >= 0 {
			toRemove.vertices = append(toRemove.vertices[:i], toRemove.vertices[i+1:]...)
		}
	}
	for _, v := range toRemove.vertices {
		v.removeSurface(toRemove)
	}

	// Relocate the kept exclusive vertices toward their partners.
	for i, kv := range keepExcl {
		p := kv.Position()
		kv.SetPosition(p.Add(matched[i].Position().Sub(p).Mul(cfs[i])))
	}

	keptID, removedID := toKeep.ID(), toRemove.ID()
	if err := m.Remove(toRemove); err != nil {
		return err
	}
	for _, rv := range matched {
		if err := m.Remove(rv); err != nil {
			return err
		}
	}

	m.notifyOp(CreateEvent,
		[]int{keptID, removedID},
		[]ObjectKind{KindSurface, KindSurface}, "merge")
	return nil
}

// ExtendSurface builds a new triangular surface from the two vertices of
// the chosen boundary edge of base plus one new vertex at pos.
func (m *Mesh) ExtendSurface(base *Surface, edgeIndex int, pos mgl64.Vec3) (*Surface, error) {
	if edgeIndex < 0 || edgeIndex >= len(base.vertices) {
		err := opErr("extend", ErrArity,
			"edge index %d out of range (surface has %d edges)", edgeIndex, len(base.vertices))
		m.log.Error("extend rejected", zap.Error(err))
		return nil, err
	}
	v0 := base.vertices[edgeIndex]
	v1 := base.Vertex(edgeIndex + 1)
	vert := NewVertex(m.particles.New(pos))

	s, err := base.stype.New([]*Vertex{v0, v1, vert})
	if err != nil {
		return nil, err
	}
	if err := m.AddSurface(s); err != nil {
		return nil, err
	}
	m.notifyOp(CreateEvent,
		[]int{base.ID(), s.ID()},
		[]ObjectKind{KindSurface, KindSurface}, "extend")
	return s, nil
}

// ExtrudeSurface builds a new quadrilateral surface from the two vertices
// of the chosen boundary edge of base plus two new vertices offset from
// the edge endpoints along the surface normal by normLen.
func (m *Mesh) ExtrudeSurface(base *Surface, edgeIndex int, normLen float64) (*Surface, error) {
	if edgeIndex < 0 || edgeIndex >= len(base.vertices) {
		err := opErr("extrude", ErrArity,
			"edge index %d out of range (surface has %d edges)", edgeIndex, len(base.vertices))
		m.log.Error("extrude rejected", zap.Error(err))
		return nil, err
	}
	v0 := base.vertices[edgeIndex]
	v1 := base.Vertex(edgeIndex + 1)
	disp := base.Normal().Mul(normLen)
	v2 := NewVertex(m.particles.New(v0.Position().Add(disp)))
	v3 := NewVertex(m.particles.New(v1.Position().Add(disp)))

	s, err := base.stype.New([]*Vertex{v0, v1, v3, v2})
	if err != nil {
		return nil, err
	}
	if err := m.AddSurface(s); err != nil {
		return nil, err
	}
	m.notifyOp(CreateEvent,
		[]int{base.ID(), s.ID()},
		[]ObjectKind{KindSurface, KindSurface}, "extrude")
	return s, nil
}

// ExtendBody builds a body of the given type by coning base to one new
// apex vertex at pos: one triangular surface per boundary edge of base,
// assembled with base itself.
func (m *Mesh) ExtendBody(base *Surface, btype *BodyType, pos mgl64.Vec3) (*Body, error) {
	apex := NewVertex(m.particles.New(pos))
	surfaces := make([]*Surface, 0, len(base.vertices)+1)
	surfaces = append(surfaces, base)
	for i := range base.vertices {
		v0 := base.vertices[i]
		v1 := base.Vertex(i + 1)
		tri, err := base.stype.New([]*Vertex{v0, v1, apex})
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, tri)
	}

	b, err := btype.New(surfaces)
	if err != nil {
		m.log.Error("extend failed to build body", zap.Error(err))
		return nil, err
	}
	if err := m.AddBody(b); err != nil {
		return nil, err
	}
	m.notifyOp(CreateEvent,
		[]int{base.ID(), b.ID()},
		[]ObjectKind{KindSurface, KindBody}, "extend")
	return b, nil
}

// ExtrudeBody builds a body of the given type by offsetting every
// boundary vertex of base along its outward normal by normLen: one
// lateral surface per boundary edge, a capping surface from the new ring,
// and base itself. Fails if both sides of base already bound a body.
func (m *Mesh) ExtrudeBody(base *Surface, btype *BodyType, normLen float64) (*Body, error) {
	normal, err := base.outwardNormal()
	if err != nil {
		m.log.Error("extrude rejected", zap.Error(err))
		return nil, err
	}
	disp := normal.Mul(normLen)

	n := len(base.vertices)
	ring := make([]*Vertex, n)
	for i, v := range base.vertices {
		ring[i] = NewVertex(m.particles.New(v.Position().Add(disp)))
	}

	surfaces := make([]*Surface, 0, n+2)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		lateral, err := base.stype.New([]*Vertex{base.vertices[i], base.vertices[j], ring[j], ring[i]})
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, lateral)
	}
	capping, err := base.stype.New(ring)
	if err != nil {
		return nil, err
	}
	surfaces = append(surfaces, base, capping)

	b, err := btype.New(surfaces)
	if err != nil {
		m.log.Error("extrude failed to build body", zap.Error(err))
		return nil, err
	}
	if err := m.AddBody(b); err != nil {
		return nil, err
	}
	m.notifyOp(CreateEvent,
		[]int{base.ID(), b.ID()},
		[]ObjectKind{KindSurface, KindBody}, "extrude")
	return b, nil
}
