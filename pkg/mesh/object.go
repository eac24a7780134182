package mesh

// Unstored is the id carried by an object that is not registered with any
// Mesh. An object's id is valid only while it is registered.
const Unstored = -1

// ObjectKind enumerates the variants of the mesh object hierarchy.
type ObjectKind int

const (
	KindVertex    ObjectKind = iota // point-mass boundary point
	KindSurface                     // cyclically-ordered polygon of vertices
	KindBody                        // closed volume bounded by surfaces
	KindStructure                   // aggregate of bodies and structures
)

func (k ObjectKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindSurface:
		return "surface"
	case KindBody:
		return "body"
	case KindStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// Object is the capability interface shared by all mesh object variants.
// Parent links point at an object's constituents (a surface's vertices, a
// body's surfaces); child links point at its dependents (a vertex's
// surfaces, a surface's bodies). Removal cascades through children, never
// parents.
type Object interface {
	// ID returns the inventory slot index, or Unstored.
	ID() int
	// Kind returns the variant tag.
	Kind() ObjectKind
	// Mesh returns the owning mesh, or nil while unstored.
	Mesh() *Mesh
	// Parents returns the constituent objects, in order.
	Parents() []Object
	// Children returns the dependent objects, in order.
	Children() []Object
	// Validate checks variant-specific structural soundness.
	Validate() error

	ident() *identity // restricts implementations to this package
}

// identity is the common registration state embedded in every variant.
type identity struct {
	id   int
	mesh *Mesh
}

func unstored() identity {
	return identity{id: Unstored}
}

func (b *identity) ID() int        { return b.id }
func (b *identity) Mesh() *Mesh    { return b.mesh }
func (b *identity) ident() *identity { return b }

// stored reports whether the object is registered with the given mesh.
func (b *identity) storedIn(m *Mesh) bool {
	return b.id >= 0 && b.mesh == m
}

func (b *identity) store(m *Mesh, id int) {
	b.id = id
	b.mesh = m
}

func (b *identity) clear() {
	b.id = Unstored
	b.mesh = nil
}
