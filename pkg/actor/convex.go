package actor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/mesh"
)

const lineEps = 1e-12

// ConvexPolygonConstraint penalizes reflex vertices of a surface polygon.
// For each vertex it measures the offset from the vertex to its projection
// onto the line through its two polygon neighbors; when the vertex and the
// leave-one-out centroid sit on the same side of that line the polygon is
// locally non-convex and the offset becomes the restoring displacement.
type ConvexPolygonConstraint struct {
	// Lam scales the restoring force.
	Lam float64
}

var _ mesh.Actor = (*ConvexPolygonConstraint)(nil)

func NewConvexPolygonConstraint(lam float64) *ConvexPolygonConstraint {
	return &ConvexPolygonConstraint{Lam: lam}
}

// offset reports the displacement that would move v onto the line through
// its neighbors, and whether the constraint is active at v. A triangle can
// never be non-convex, and a degenerate neighbor line yields no constraint.
func (c *ConvexPolygonConstraint) offset(s *mesh.Surface, v *mesh.Vertex) (mgl64.Vec3, bool) {
	if len(s.Vertices()) <= 3 {
		return mgl64.Vec3{}, false
	}
	va, vb, err := s.NeighborsOf(v)
	if err != nil {
		return mgl64.Vec3{}, false
	}
	posa := va.Position()
	posc := v.Position()
	line := vb.Position().Sub(posa)
	if line.Len() < lineEps {
		return mgl64.Vec3{}, false
	}
	line = line.Normalize()

	// Centroid of the polygon with v left out.
	n := float64(len(s.Vertices()))
	loo := s.Centroid().Mul(n).Sub(posc).Mul(1 / (n - 1))

	rel := func(p mgl64.Vec3) mgl64.Vec3 {
		return posa.Add(line.Mul(p.Sub(posa).Dot(line))).Sub(p)
	}
	offV := rel(posc)
	if offV.Dot(rel(loo)) > 0 {
		return offV, true
	}
	return mgl64.Vec3{}, false
}

func (c *ConvexPolygonConstraint) Energy(owner mesh.Object, v *mesh.Vertex) float64 {
	s, ok := owner.(*mesh.Surface)
	if !ok {
		return 0
	}
	off, active := c.offset(s, v)
	if !active {
		return 0
	}
	p := v.Particle()
	return p.Mass() / p.Store().Timestep() * c.Lam / 2 * off.Dot(off)
}

func (c *ConvexPolygonConstraint) Force(owner mesh.Object, v *mesh.Vertex) mgl64.Vec3 {
	s, ok := owner.(*mesh.Surface)
	if !ok {
		return mgl64.Vec3{}
	}
	off, active := c.offset(s, v)
	if !active {
		return mgl64.Vec3{}
	}
	p := v.Particle()
	return off.Mul(p.Mass() / p.Store().Timestep() * c.Lam)
}
