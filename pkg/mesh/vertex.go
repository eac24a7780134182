package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/particle"
)

// Vertex is a boundary point of one or more surfaces. Its position and
// mass live in an external point-mass particle; the vertex only holds the
// handle.
type Vertex struct {
	identity
	particle *particle.Handle
	surfaces []*Surface
}

// NewVertex creates an unregistered vertex wrapping the given particle.
func NewVertex(h *particle.Handle) *Vertex {
	return &Vertex{identity: unstored(), particle: h}
}

func (v *Vertex) Kind() ObjectKind { return KindVertex }

// Parents returns nil: a vertex has no constituents.
func (v *Vertex) Parents() []Object { return nil }

// Children returns the surfaces the vertex bounds.
func (v *Vertex) Children() []Object {
	objs := make([]Object, len(v.surfaces))
	for i, s := range v.surfaces {
		objs[i] = s
	}
	return objs
}

// Validate checks that the vertex wraps a live particle.
func (v *Vertex) Validate() error {
	if v.particle == nil || !v.particle.Live() {
		return opErr("validate", ErrStructural, "vertex has no live particle")
	}
	return nil
}

// Particle returns the backing particle handle.
func (v *Vertex) Particle() *particle.Handle { return v.particle }

// Position returns the particle position.
func (v *Vertex) Position() mgl64.Vec3 { return v.particle.Position() }

// SetPosition moves the particle.
func (v *Vertex) SetPosition(pos mgl64.Vec3) { v.particle.SetPosition(pos) }

// Surfaces returns the surfaces the vertex bounds.
func (v *Vertex) Surfaces() []*Surface { return v.surfaces }

// In reports whether the vertex bounds the given surface.
func (v *Vertex) In(s *Surface) bool {
	for _, vs := range v.surfaces {
		if vs == s {
			return true
		}
	}
	return false
}

// SharedSurfaces returns every surface both vertices bound, in this
// vertex's surface order.
func (v *Vertex) SharedSurfaces(o *Vertex) []*Surface {
	var shared []*Surface
	for _, s := range v.surfaces {
		if o.In(s) {
			shared = append(shared, s)
		}
	}
	return shared
}

// NeighborVertices returns the distinct cyclic neighbors of the vertex
// across all surfaces it bounds, in encounter order.
func (v *Vertex) NeighborVertices() []*Vertex {
	var neighbors []*Vertex
	seen := map[*Vertex]bool{v: true}
	for _, s := range v.surfaces {
		i := s.VertexIndex(v)
		if i < 0 {
			continue
		}
		for _, nb := range []*Vertex{s.Vertex(i - 1), s.Vertex(i + 1)} {
			if !seen[nb] {
				seen[nb] = true
				neighbors = append(neighbors, nb)
			}
		}
	}
	return neighbors
}

func (v *Vertex) addSurface(s *Surface) {
	v.surfaces = append(v.surfaces, s)
}

func (v *Vertex) removeSurface(s *Surface) {
	for i, vs := range v.surfaces {
		if vs == s {
			v.surfaces = append(v.surfaces[:i], v.surfaces[i+1:]...)
			return
		}
	}
}
