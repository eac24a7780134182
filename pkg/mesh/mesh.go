package mesh

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epimorph/epimorph/pkg/particle"
)

// blockIncrement is the fixed number of slots an inventory grows by when
// no recycled identifier is available.
const blockIncrement = 32

type slotted interface {
	Object
	comparable
}

// inventory is a per-variant slot array indexed by identifier, plus the
// set of currently-available slot indices kept in ascending order so the
// smallest recycled identifier is always preferred.
type inventory[T slotted] struct {
	slots []T
	avail []int
}

// allocate stores obj in the smallest available slot, growing the slot
// array by blockIncrement when none is free, and returns the identifier.
func (inv *inventory[T]) allocate(obj T) int {
	if len(inv.avail) > 0 {
		id := inv.avail[0]
		inv.avail = inv.avail[1:]
		inv.slots[id] = obj
		return id
	}
	id := len(inv.slots)
	var zero T
	for i := 0; i < blockIncrement; i++ {
		inv.slots = append(inv.slots, zero)
		if i > 0 {
			inv.avail = append(inv.avail, id+i)
		}
	}
	inv.slots[id] = obj
	return id
}

// release nulls the slot and returns its identifier to the available set.
func (inv *inventory[T]) release(id int) {
	var zero T
	inv.slots[id] = zero
	i := sort.SearchInts(inv.avail, id)
	inv.avail = append(inv.avail, 0)
	copy(inv.avail[i+1:], inv.avail[i:])
	inv.avail[i] = id
}

// get returns the object in slot id, or the zero value for empty or
// out-of-bounds slots.
func (inv *inventory[T]) get(id int) T {
	var zero T
	if id < 0 || id >= len(inv.slots) {
		return zero
	}
	return inv.slots[id]
}

// live returns all stored objects in identifier order.
func (inv *inventory[T]) live() []T {
	var zero T
	var objs []T
	for _, o := range inv.slots {
		if o != zero {
			objs = append(objs, o)
		}
	}
	return objs
}

func (inv *inventory[T]) count() int {
	return len(inv.slots) - len(inv.avail)
}

// Mesh owns four per-variant inventories and exposes all topology-editing
// operations. Mutation is single-writer: the caller must serialize every
// structural edit; there is no internal locking.
type Mesh struct {
	id        uuid.UUID
	log       *zap.Logger
	particles *particle.Store
	solver    Solver
	dirty     bool

	vertices   inventory[*Vertex]
	surfaces   inventory[*Surface]
	bodies     inventory[*Body]
	structures inventory[*Structure]
}

// New creates an empty mesh over the given particle store. A nil logger
// disables diagnostics.
func New(particles *particle.Store, logger *zap.Logger) *Mesh {
	if particles == nil {
		particles = particle.NewStore(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mesh{
		id:        uuid.New(),
		log:       logger,
		particles: particles,
	}
}

// ID returns the mesh instance identifier used to correlate solver log
// entries across meshes.
func (m *Mesh) ID() uuid.UUID { return m.id }

// Particles returns the particle store backing the mesh's vertices.
func (m *Mesh) Particles() *particle.Store { return m.particles }

// AttachSolver injects the solver collaborator notified of changes.
func (m *Mesh) AttachSolver(s Solver) { m.solver = s }

// DetachSolver removes the solver collaborator.
func (m *Mesh) DetachSolver() { m.solver = nil }

// Dirty reports whether topology changed since the flag was last cleared.
func (m *Mesh) Dirty() bool { return m.dirty }

// MakeDirty raises the dirty flag and forwards it to the solver.
func (m *Mesh) MakeDirty() {
	m.dirty = true
	if m.solver != nil {
		m.solver.SetDirty(true)
	}
}

// ClearDirty lowers the dirty flag and forwards it to the solver.
func (m *Mesh) ClearDirty() {
	m.dirty = false
	if m.solver != nil {
		m.solver.SetDirty(false)
	}
}

// Vertex returns the vertex with the given identifier, or nil.
func (m *Mesh) Vertex(id int) *Vertex { return m.vertices.get(id) }

// Surface returns the surface with the given identifier, or nil.
func (m *Mesh) Surface(id int) *Surface { return m.surfaces.get(id) }

// Body returns the body with the given identifier, or nil.
func (m *Mesh) Body(id int) *Body { return m.bodies.get(id) }

// Structure returns the structure with the given identifier, or nil.
func (m *Mesh) Structure(id int) *Structure { return m.structures.get(id) }

// Vertices returns all stored vertices in identifier order.
func (m *Mesh) Vertices() []*Vertex { return m.vertices.live() }

// Surfaces returns all stored surfaces in identifier order.
func (m *Mesh) Surfaces() []*Surface { return m.surfaces.live() }

// Bodies returns all stored bodies in identifier order.
func (m *Mesh) Bodies() []*Body { return m.bodies.live() }

// Structures returns all stored structures in identifier order.
func (m *Mesh) Structures() []*Structure { return m.structures.live() }

func (m *Mesh) VertexCount() int    { return m.vertices.count() }
func (m *Mesh) SurfaceCount() int   { return m.surfaces.count() }
func (m *Mesh) BodyCount() int      { return m.bodies.count() }
func (m *Mesh) StructureCount() int { return m.structures.count() }

// nilObject reports whether obj is nil, including a nil concrete
// pointer wrapped in a non-nil interface.
func nilObject(obj Object) bool {
	switch o := obj.(type) {
	case nil:
		return true
	case *Vertex:
		return o == nil
	case *Surface:
		return o == nil
	case *Body:
		return o == nil
	case *Structure:
		return o == nil
	}
	return false
}

// checkUnstored fails unless obj is freshly constructed or previously
// fully removed.
func (m *Mesh) checkUnstored(obj Object) error {
	if nilObject(obj) {
		return opErr("add", ErrStructural, "nil object")
	}
	if obj.ID() >= 0 || obj.Mesh() != nil {
		return opErr("add", ErrStructural,
			"%s %d is already stored", obj.Kind(), obj.ID())
	}
	return nil
}

// notifyCreate reports a freshly stored object together with the
// identifiers and kinds of all its current parents.
func (m *Mesh) notifyCreate(obj Object) {
	if m.solver == nil {
		return
	}
	parents := obj.Parents()
	ids := make([]int, 0, 1+len(parents))
	kinds := make([]ObjectKind, 0, 1+len(parents))
	ids = append(ids, obj.ID())
	kinds = append(kinds, obj.Kind())
	for _, p := range parents {
		ids = append(ids, p.ID())
		kinds = append(kinds, p.Kind())
	}
	m.solver.Log(m, CreateEvent, ids, kinds, "")
}

func (m *Mesh) notifyOp(kind EventKind, ids []int, kinds []ObjectKind, tag string) {
	if m.solver == nil {
		return
	}
	m.solver.PositionChanged()
	m.solver.Log(m, kind, ids, kinds, tag)
}

func addToInventory[T slotted](m *Mesh, inv *inventory[T], obj T) error {
	if err := m.checkUnstored(obj); err != nil {
		m.log.Error("add rejected", zap.Error(err))
		return err
	}
	if err := obj.Validate(); err != nil {
		m.log.Error("add rejected by validation",
			zap.Stringer("kind", obj.Kind()), zap.Error(err))
		return err
	}
	id := inv.allocate(obj)
	obj.ident().store(m, id)
	m.notifyCreate(obj)
	return nil
}

// AddVertex registers an unstored vertex with the mesh.
func (m *Mesh) AddVertex(v *Vertex) error {
	m.MakeDirty()
	if v == nil {
		return opErr("add", ErrStructural, "nil vertex")
	}
	return addToInventory(m, &m.vertices, v)
}

// AddSurface registers an unstored surface, first registering any of its
// vertices that are still unstored so notifications only ever reference
// valid identifiers.
func (m *Mesh) AddSurface(s *Surface) error {
	m.MakeDirty()
	if s == nil {
		return opErr("add", ErrStructural, "nil surface")
	}
	for _, v := range s.vertices {
		if v != nil && v.ID() == Unstored {
			if err := m.AddVertex(v); err != nil {
				return err
			}
		}
	}
	return addToInventory(m, &m.surfaces, s)
}

// AddBody registers an unstored body, first registering any of its
// surfaces that are still unstored.
func (m *Mesh) AddBody(b *Body) error {
	m.MakeDirty()
	if b == nil {
		return opErr("add", ErrStructural, "nil body")
	}
	for _, s := range b.surfaces {
		if s != nil && s.ID() == Unstored {
			if err := m.AddSurface(s); err != nil {
				return err
			}
		}
	}
	return addToInventory(m, &m.bodies, b)
}

// AddStructure registers an unstored structure, first registering any of
// its body or structure parents that are still unstored.
func (m *Mesh) AddStructure(st *Structure) error {
	m.MakeDirty()
	if st == nil {
		return opErr("add", ErrStructural, "nil structure")
	}
	for _, p := range st.parents {
		if p.ID() >= 0 {
			continue
		}
		switch o := p.(type) {
		case *Body:
			if err := m.AddBody(o); err != nil {
				return err
			}
		case *Structure:
			if err := m.AddStructure(o); err != nil {
				return err
			}
		default:
			return opErr("add", ErrStructural, "structure parent of kind %s", p.Kind())
		}
	}
	return addToInventory(m, &m.structures, st)
}

// Remove unregisters the object, frees its identifier for reuse, and
// recursively removes every current child. Parents keep their reference
// to the removed object; clearing those is the caller's responsibility.
func (m *Mesh) Remove(obj Object) error {
	m.MakeDirty()
	if nilObject(obj) || !obj.ident().storedIn(m) {
		err := opErr("remove", ErrStructural, "object is not stored in this mesh")
		m.log.Error("remove rejected", zap.Error(err))
		return err
	}

	id := obj.ID()
	switch o := obj.(type) {
	case *Vertex:
		if m.vertices.get(id) != o {
			return m.slotMismatch(obj)
		}
		m.vertices.release(id)
	case *Surface:
		if m.surfaces.get(id) != o {
			return m.slotMismatch(obj)
		}
		m.surfaces.release(id)
	case *Body:
		if m.bodies.get(id) != o {
			return m.slotMismatch(obj)
		}
		m.bodies.release(id)
	case *Structure:
		if m.structures.get(id) != o {
			return m.slotMismatch(obj)
		}
		m.structures.release(id)
	default:
		return opErr("remove", ErrStructural, "unknown object kind")
	}

	if m.solver != nil {
		m.solver.Log(m, DestroyEvent, []int{id}, []ObjectKind{obj.Kind()}, "")
	}
	obj.ident().clear()

	// Children already unstored by an earlier branch of the cascade (a
	// diamond in the dependency graph) are skipped, not failed.
	for _, c := range obj.Children() {
		if c == nil || c.ID() == Unstored {
			continue
		}
		if err := m.Remove(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mesh) slotMismatch(obj Object) error {
	err := opErr("remove", ErrStructural,
		"%s %d does not occupy its inventory slot", obj.Kind(), obj.ID())
	m.log.Error("remove rejected", zap.Error(err))
	return err
}

// FindVertex returns a stored vertex within tol of pos, or nil. The
// nearest candidate is located through a transient r-tree over the
// current vertices.
func (m *Mesh) FindVertex(pos mgl64.Vec3, tol float64) *Vertex {
	verts := m.vertices.live()
	if len(verts) == 0 {
		return nil
	}
	v := nearestVertex(newVertexIndex(verts), pos)
	if v == nil || v.Particle().Distance(pos) > tol {
		return nil
	}
	return v
}

// Adjacent reports whether the two vertices are cyclically adjacent on
// any surface.
func (m *Mesh) Adjacent(v1, v2 *Vertex) bool {
	for _, s := range v1.surfaces {
		for i := range s.vertices {
			a, b := s.Vertex(i), s.Vertex(i+1)
			if (a == v1 && b == v2) || (a == v2 && b == v1) {
				return true
			}
		}
	}
	return false
}

// SurfacesConnected reports whether the two surfaces share a vertex.
func (m *Mesh) SurfacesConnected(s1, s2 *Surface) bool {
	for _, v := range s1.vertices {
		if v.In(s2) {
			return true
		}
	}
	return false
}

// BodiesConnected reports whether the two bodies share a surface.
func (m *Mesh) BodiesConnected(b1, b2 *Body) bool {
	for _, s := range b1.surfaces {
		if s.In(b2) {
			return true
		}
	}
	return false
}
