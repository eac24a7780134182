package meshio

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/mesh"
	"github.com/epimorph/epimorph/pkg/particle"
)

// Snapshot converts the whole mesh into an element tree: the surface and
// body type descriptors with their actors, then every stored object with
// its geometry and relations. Type descriptors must carry unique names.
func Snapshot(m *mesh.Mesh, reg *Registry) (*Element, error) {
	root := NewElement("mesh").Add(StringField("id", m.ID().String()))

	stypes := make(map[string]*mesh.SurfaceType)
	for _, s := range m.Surfaces() {
		if err := noteType(stypes, s.Type().Name, s.Type()); err != nil {
			return nil, err
		}
	}
	btypes := make(map[string]*mesh.BodyType)
	for _, b := range m.Bodies() {
		if err := noteType(btypes, b.Type().Name, b.Type()); err != nil {
			return nil, err
		}
	}
	for name, st := range stypes {
		el, err := typeElement("surface-type", name, st.Actors, reg)
		if err != nil {
			return nil, err
		}
		root.Add(el)
	}
	for name, bt := range btypes {
		el, err := typeElement("body-type", name, bt.Actors, reg)
		if err != nil {
			return nil, err
		}
		root.Add(el)
	}

	for _, v := range m.Vertices() {
		pos := v.Position()
		root.Add(NewElement("vertex").Add(
			IntField("id", v.ID()),
			FloatField("x", pos.X()),
			FloatField("y", pos.Y()),
			FloatField("z", pos.Z()),
			FloatField("mass", v.Particle().Mass())))
	}
	for _, s := range m.Surfaces() {
		ids := make([]int, len(s.Vertices()))
		for i, v := range s.Vertices() {
			ids[i] = v.ID()
		}
		// Side order is claim order, not body id order; recording it keeps
		// the outward normal's sign stable across a round trip.
		sides := []int{mesh.Unstored, mesh.Unstored}
		b1, b2 := s.Sides()
		if b1 != nil {
			sides[0] = b1.ID()
		}
		if b2 != nil {
			sides[1] = b2.ID()
		}
		root.Add(NewElement("surface").Add(
			IntField("id", s.ID()),
			StringField("type", s.Type().Name),
			IntsField("vertices", ids),
			IntsField("sides", sides)))
	}
	for _, b := range m.Bodies() {
		ids := make([]int, len(b.Surfaces()))
		for i, s := range b.Surfaces() {
			ids[i] = s.ID()
		}
		root.Add(NewElement("body").Add(
			IntField("id", b.ID()),
			StringField("type", b.Type().Name),
			IntsField("surfaces", ids)))
	}
	for _, st := range m.Structures() {
		var bodies, structures []int
		for _, p := range st.Parents() {
			switch p.Kind() {
			case mesh.KindBody:
				bodies = append(bodies, p.ID())
			case mesh.KindStructure:
				structures = append(structures, p.ID())
			}
		}
		root.Add(NewElement("structure").Add(
			IntField("id", st.ID()),
			IntsField("bodies", bodies),
			IntsField("structures", structures)))
	}
	return root, nil
}

func noteType[T comparable](seen map[string]T, name string, t T) error {
	if name == "" {
		return fmt.Errorf("snapshot: type descriptor without a name")
	}
	if prev, ok := seen[name]; ok && prev != t {
		return fmt.Errorf("snapshot: two type descriptors named %q", name)
	}
	seen[name] = t
	return nil
}

func typeElement(typ, name string, actors []mesh.Actor, reg *Registry) (*Element, error) {
	el := NewElement(typ).Add(StringField("name", name))
	for _, a := range actors {
		ae, err := reg.EncodeActor(a)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
		el.Add(ae)
	}
	return el, nil
}

// Restore rebuilds a mesh from a snapshot tree, allocating particles from
// the given store. Identifiers are reassigned by the new mesh; relations,
// positions, and masses are preserved.
func Restore(root *Element, store *particle.Store, reg *Registry) (*mesh.Mesh, error) {
	if root == nil || root.Type != "mesh" {
		return nil, fmt.Errorf("restore: root element is not a mesh")
	}
	if store == nil {
		return nil, fmt.Errorf("restore: nil particle store")
	}
	m := mesh.New(store, nil)

	stypes := make(map[string]*mesh.SurfaceType)
	for _, te := range root.Typed("surface-type") {
		name, actors, err := decodeType(te, reg)
		if err != nil {
			return nil, err
		}
		stypes[name] = &mesh.SurfaceType{Name: name, Actors: actors}
	}
	btypes := make(map[string]*mesh.BodyType)
	for _, te := range root.Typed("body-type") {
		name, actors, err := decodeType(te, reg)
		if err != nil {
			return nil, err
		}
		btypes[name] = &mesh.BodyType{Name: name, Actors: actors}
	}

	verts := make(map[int]*mesh.Vertex)
	for _, ve := range root.Typed("vertex") {
		id, err := ve.Int("id")
		if err != nil {
			return nil, err
		}
		x, err := ve.Float("x")
		if err != nil {
			return nil, err
		}
		y, err := ve.Float("y")
		if err != nil {
			return nil, err
		}
		z, err := ve.Float("z")
		if err != nil {
			return nil, err
		}
		mass, err := ve.Float("mass")
		if err != nil {
			return nil, err
		}
		v := mesh.NewVertex(store.NewWithMass(mgl64.Vec3{x, y, z}, mass))
		if err := m.AddVertex(v); err != nil {
			return nil, fmt.Errorf("restore vertex %d: %w", id, err)
		}
		verts[id] = v
	}

	surfs := make(map[int]*mesh.Surface)
	for _, se := range root.Typed("surface") {
		id, err := se.Int("id")
		if err != nil {
			return nil, err
		}
		tname, err := se.Text("type")
		if err != nil {
			return nil, err
		}
		st, ok := stypes[tname]
		if !ok {
			return nil, fmt.Errorf("restore surface %d: unknown type %q", id, tname)
		}
		ids, err := se.Ints("vertices")
		if err != nil {
			return nil, err
		}
		boundary := make([]*mesh.Vertex, len(ids))
		for i, vid := range ids {
			v, ok := verts[vid]
			if !ok {
				return nil, fmt.Errorf("restore surface %d: unknown vertex %d", id, vid)
			}
			boundary[i] = v
		}
		s, err := st.New(boundary)
		if err != nil {
			return nil, fmt.Errorf("restore surface %d: %w", id, err)
		}
		if err := m.AddSurface(s); err != nil {
			return nil, fmt.Errorf("restore surface %d: %w", id, err)
		}
		surfs[id] = s
	}

	bodies := make(map[int]*mesh.Body)
	for _, be := range root.Typed("body") {
		id, err := be.Int("id")
		if err != nil {
			return nil, err
		}
		tname, err := be.Text("type")
		if err != nil {
			return nil, err
		}
		bt, ok := btypes[tname]
		if !ok {
			return nil, fmt.Errorf("restore body %d: unknown type %q", id, tname)
		}
		ids, err := be.Ints("surfaces")
		if err != nil {
			return nil, err
		}
		bounds := make([]*mesh.Surface, len(ids))
		for i, sid := range ids {
			s, ok := surfs[sid]
			if !ok {
				return nil, fmt.Errorf("restore body %d: unknown surface %d", id, sid)
			}
			bounds[i] = s
		}
		b, err := bt.New(bounds)
		if err != nil {
			return nil, fmt.Errorf("restore body %d: %w", id, err)
		}
		if err := m.AddBody(b); err != nil {
			return nil, fmt.Errorf("restore body %d: %w", id, err)
		}
		bodies[id] = b
	}

	// Bodies claim surface sides in restore order; reorder each surface's
	// sides to match the snapshot.
	for _, se := range root.Typed("surface") {
		id, _ := se.Int("id")
		sides, err := se.Ints("sides")
		if err != nil {
			return nil, err
		}
		if len(sides) != 2 {
			return nil, fmt.Errorf("restore surface %d: %d side entries, want 2", id, len(sides))
		}
		pair := make([]*mesh.Body, 2)
		for i, bid := range sides {
			if bid < 0 {
				continue
			}
			b, ok := bodies[bid]
			if !ok {
				return nil, fmt.Errorf("restore surface %d: unknown side body %d", id, bid)
			}
			pair[i] = b
		}
		if err := surfs[id].OrderSides(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("restore surface %d: %w", id, err)
		}
	}

	// Structures may reference each other in any order: register them all
	// empty, then link parents.
	structures := make(map[int]*mesh.Structure)
	for _, ste := range root.Typed("structure") {
		id, err := ste.Int("id")
		if err != nil {
			return nil, err
		}
		st, err := mesh.NewStructure()
		if err != nil {
			return nil, err
		}
		if err := m.AddStructure(st); err != nil {
			return nil, fmt.Errorf("restore structure %d: %w", id, err)
		}
		structures[id] = st
	}
	for _, ste := range root.Typed("structure") {
		id, _ := ste.Int("id")
		st := structures[id]
		bids, err := ste.Ints("bodies")
		if err != nil {
			return nil, err
		}
		for _, bid := range bids {
			b, ok := bodies[bid]
			if !ok {
				return nil, fmt.Errorf("restore structure %d: unknown body %d", id, bid)
			}
			if err := st.AddParent(b); err != nil {
				return nil, err
			}
		}
		sids, err := ste.Ints("structures")
		if err != nil {
			return nil, err
		}
		for _, sid := range sids {
			p, ok := structures[sid]
			if !ok {
				return nil, fmt.Errorf("restore structure %d: unknown structure %d", id, sid)
			}
			if err := st.AddParent(p); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func decodeType(te *Element, reg *Registry) (string, []mesh.Actor, error) {
	name, err := te.Text("name")
	if err != nil {
		return "", nil, err
	}
	var actors []mesh.Actor
	for _, c := range te.Children {
		if c.Name != "" {
			continue // scalar field, not an actor element
		}
		a, err := reg.DecodeActor(c)
		if err != nil {
			return "", nil, fmt.Errorf("type %q: %w", name, err)
		}
		actors = append(actors, a)
	}
	return name, actors, nil
}
