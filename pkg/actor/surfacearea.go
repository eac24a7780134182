package actor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/mesh"
)

// SurfaceAreaConstraint drives the total surface area of a body toward a
// target value with a quadratic penalty.
type SurfaceAreaConstraint struct {
	// Lam scales the penalty.
	Lam float64
	// Target is the preferred total surface area.
	Target float64
}

var _ mesh.Actor = (*SurfaceAreaConstraint)(nil)

func NewSurfaceAreaConstraint(lam, target float64) *SurfaceAreaConstraint {
	return &SurfaceAreaConstraint{Lam: lam, Target: target}
}

func (c *SurfaceAreaConstraint) Energy(owner mesh.Object, v *mesh.Vertex) float64 {
	b, ok := owner.(*mesh.Body)
	if !ok {
		return 0
	}
	d := b.Area() - c.Target
	return c.Lam * d * d
}

// Force is the area gradient at v over the body's surfaces that contain v,
// scaled by the deviation from the target area.
func (c *SurfaceAreaConstraint) Force(owner mesh.Object, v *mesh.Vertex) mgl64.Vec3 {
	b, ok := owner.(*mesh.Body)
	if !ok {
		return mgl64.Vec3{}
	}
	var total mgl64.Vec3
	for _, s := range v.Surfaces() {
		if !s.In(b) {
			continue
		}
		verts := s.Vertices()
		n := len(verts)
		at := -1
		var grad mgl64.Vec3
		for i := 0; i < n; i++ {
			if verts[i] == v {
				at = i
			}
			edge := verts[(i+1)%n].Position().Sub(verts[i].Position())
			grad = grad.Add(unit(s.TriangleNormal(i)).Cross(edge))
		}
		if at < 0 {
			continue
		}
		grad = grad.Mul(1 / float64(n))

		cent := s.Centroid()
		next := (at + 1) % n
		prev := (at - 1 + n) % n
		grad = grad.Add(unit(s.TriangleNormal(at)).Cross(cent.Sub(verts[next].Position())))
		grad = grad.Sub(unit(s.TriangleNormal(prev)).Cross(cent.Sub(verts[prev].Position())))

		total = total.Add(grad)
	}
	return total.Mul(c.Lam * (c.Target - b.Area()))
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	if l := v.Len(); l > lineEps {
		return v.Mul(1 / l)
	}
	return mgl64.Vec3{}
}
