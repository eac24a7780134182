package mesh

import "github.com/go-gl/mathgl/mgl64"

// Actor is a pluggable geometric constraint contributing energy and force
// terms over a (geometric owner, incident vertex) pair. Actors are
// stateless with respect to any particular mesh: all state is the geometry
// they read plus the tunable parameters they hold, so one actor instance
// may serve every surface or body of a type.
type Actor interface {
	// Energy returns the constraint energy contribution for the pair.
	Energy(owner Object, v *Vertex) float64
	// Force returns the constraint force contribution on the vertex.
	Force(owner Object, v *Vertex) mgl64.Vec3
}

// SurfaceType describes a family of surfaces: a name, the constraint
// actors bound to every instance, and a constructor producing fully-linked
// instances from a vertex list.
type SurfaceType struct {
	Name   string
	Actors []Actor
}

// New constructs an unregistered surface from at least three vertices,
// linking every vertex back to the surface.
func (st *SurfaceType) New(vertices []*Vertex) (*Surface, error) {
	if len(vertices) < MinSurfaceVertices {
		return nil, opErr("surface", ErrDegeneracy,
			"%d vertices, need at least %d", len(vertices), MinSurfaceVertices)
	}
	for _, v := range vertices {
		if v == nil {
			return nil, opErr("surface", ErrStructural, "nil vertex")
		}
	}
	s := &Surface{
		identity: unstored(),
		stype:    st,
		vertices: append([]*Vertex(nil), vertices...),
	}
	for _, v := range s.vertices {
		v.addSurface(s)
	}
	return s, nil
}

// BodyType describes a family of bodies: a name, the constraint actors
// bound to every instance, and a constructor producing fully-linked
// instances from a surface list.
type BodyType struct {
	Name   string
	Actors []Actor
}

// New constructs an unregistered body from its bounding surfaces, claiming
// a free side of each. On failure the claimed sides are released again.
func (bt *BodyType) New(surfaces []*Surface) (*Body, error) {
	if len(surfaces) < MinBodySurfaces {
		return nil, opErr("body", ErrDegeneracy,
			"%d surfaces, need at least %d", len(surfaces), MinBodySurfaces)
	}
	b := &Body{identity: unstored(), btype: bt}
	for _, s := range surfaces {
		if s == nil {
			b.unlinkSurfaces()
			return nil, opErr("body", ErrStructural, "nil surface")
		}
		if err := b.addSurface(s); err != nil {
			b.unlinkSurfaces()
			return nil, err
		}
	}
	return b, nil
}

func (b *Body) unlinkSurfaces() {
	for _, s := range b.surfaces {
		s.releaseBody(b)
	}
	b.surfaces = nil
}
