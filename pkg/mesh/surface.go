package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MinSurfaceVertices is the minimum boundary length of a surface polygon.
const MinSurfaceVertices = 3

// Surface is a cyclically-ordered polygon of at least three vertices.
// It bounds at most two bodies, one per side. Derived geometry (centroid,
// normal, area) is computed on demand from current vertex positions.
type Surface struct {
	identity
	stype    *SurfaceType
	vertices []*Vertex
	b1, b2   *Body
}

func (s *Surface) Kind() ObjectKind { return KindSurface }

// Type returns the descriptor the surface was constructed from.
func (s *Surface) Type() *SurfaceType { return s.stype }

// Parents returns the boundary vertices, in cyclic order.
func (s *Surface) Parents() []Object {
	objs := make([]Object, len(s.vertices))
	for i, v := range s.vertices {
		objs[i] = v
	}
	return objs
}

// Children returns the bodies the surface bounds.
func (s *Surface) Children() []Object {
	var objs []Object
	if s.b1 != nil {
		objs = append(objs, s.b1)
	}
	if s.b2 != nil {
		objs = append(objs, s.b2)
	}
	return objs
}

// Validate checks the minimum boundary length and vertex links.
func (s *Surface) Validate() error {
	if len(s.vertices) < MinSurfaceVertices {
		return opErr("validate", ErrDegeneracy,
			"surface has %d vertices, need at least %d", len(s.vertices), MinSurfaceVertices)
	}
	for _, v := range s.vertices {
		if v == nil {
			return opErr("validate", ErrStructural, "surface has a nil vertex")
		}
	}
	return nil
}

// Vertices returns the boundary vertices, in cyclic order.
func (s *Surface) Vertices() []*Vertex { return s.vertices }

// Vertex returns the boundary vertex at index i, wrapping cyclically in
// both directions.
func (s *Surface) Vertex(i int) *Vertex {
	n := len(s.vertices)
	i %= n
	if i < 0 {
		i += n
	}
	return s.vertices[i]
}

// VertexIndex returns the boundary index of v, or -1.
func (s *Surface) VertexIndex(v *Vertex) int {
	for i, sv := range s.vertices {
		if sv == v {
			return i
		}
	}
	return -1
}

// Bodies returns the bodies bounding the surface (zero, one, or two).
func (s *Surface) Bodies() []*Body {
	var bodies []*Body
	if s.b1 != nil {
		bodies = append(bodies, s.b1)
	}
	if s.b2 != nil {
		bodies = append(bodies, s.b2)
	}
	return bodies
}

// In reports whether the surface bounds the given body.
func (s *Surface) In(b *Body) bool {
	return b != nil && (s.b1 == b || s.b2 == b)
}

// NeighborsOf returns the cyclic predecessor and successor of v on the
// surface boundary. Fails if v is not on the boundary.
func (s *Surface) NeighborsOf(v *Vertex) (prev, next *Vertex, err error) {
	i := s.VertexIndex(v)
	if i < 0 {
		return nil, nil, opErr("neighbors", ErrStructural, "vertex not on surface boundary")
	}
	return s.Vertex(i - 1), s.Vertex(i + 1), nil
}

// Centroid returns the mean of the boundary vertex positions.
func (s *Surface) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	for _, v := range s.vertices {
		c = c.Add(v.Position())
	}
	return c.Mul(1.0 / float64(len(s.vertices)))
}

// TriangleNormal returns the (unnormalized) normal of the i-th fan
// triangle (centroid, vertex i, vertex i+1). Its length is twice the
// triangle area.
func (s *Surface) TriangleNormal(i int) mgl64.Vec3 {
	c := s.Centroid()
	a := s.Vertex(i).Position().Sub(c)
	b := s.Vertex(i + 1).Position().Sub(c)
	return a.Cross(b)
}

// Normal returns the unit normal of the surface: the normalized sum of
// the fan triangle normals. Returns the zero vector for fully degenerate
// geometry.
func (s *Surface) Normal() mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range s.vertices {
		n = n.Add(s.TriangleNormal(i))
	}
	return safeNormalize(n)
}

// Area returns the total area of the fan triangles.
func (s *Surface) Area() float64 {
	var area float64
	for i := range s.vertices {
		area += 0.5 * s.TriangleNormal(i).Len()
	}
	return area
}

// Perimeter returns the total boundary edge length.
func (s *Surface) Perimeter() float64 {
	var p float64
	for i := range s.vertices {
		p += s.Vertex(i + 1).Position().Sub(s.Vertex(i).Position()).Len()
	}
	return p
}

// Sides returns the body bounding each side of the surface, nil for a
// free side. Which body holds which side follows claim order and fixes
// the sign of the outward normal.
func (s *Surface) Sides() (*Body, *Body) { return s.b1, s.b2 }

// OrderSides reassigns which claimed body holds which side. The pair
// must be a permutation of the current claims; OrderSides never adds or
// drops a claim.
func (s *Surface) OrderSides(first, second *Body) error {
	if !(first == s.b1 && second == s.b2) && !(first == s.b2 && second == s.b1) {
		return opErr("orient", ErrStructural,
			"bodies do not match the current claims of surface %d", s.id)
	}
	s.b1, s.b2 = first, second
	return nil
}

// outwardNormal returns the normal pointing away from the side already
// bounded by a body, or the surface normal if both sides are free. Fails
// if both sides bound a body.
func (s *Surface) outwardNormal() (mgl64.Vec3, error) {
	switch {
	case s.b1 != nil && s.b2 != nil:
		return mgl64.Vec3{}, opErr("extrude", ErrAdjacency, "surface %d is bounded on both sides", s.id)
	case s.b2 != nil:
		return s.Normal().Mul(-1), nil
	default:
		return s.Normal(), nil
	}
}

// contiguousEdgeLabels labels every boundary vertex of s by the contact
// run it belongs to with the other surface: 0 for vertices not shared with
// other, and 1, 2, ... for each cyclically-contiguous run of shared
// vertices. A result containing a label greater than 1 means the shared
// boundary is non-contiguous.
func (s *Surface) contiguousEdgeLabels(other *Surface) []int {
	n := len(s.vertices)
	shared := make([]bool, n)
	anyUnshared := false
	for i, v := range s.vertices {
		shared[i] = v.In(other)
		if !shared[i] {
			anyUnshared = true
		}
	}

	labels := make([]int, n)
	if !anyUnshared {
		for i := range labels {
			labels[i] = 1
		}
		return labels
	}

	// Walk the cycle starting just past an unshared vertex so a run that
	// wraps around index 0 is counted once.
	start := 0
	for i, sh := range shared {
		if !sh {
			start = i
			break
		}
	}
	run := 0
	inRun := false
	for k := 1; k <= n; k++ {
		i := (start + k) % n
		if shared[i] {
			if !inRun {
				run++
				inRun = true
			}
			labels[i] = run
		} else {
			inRun = false
		}
	}
	return labels
}

// detachVertex removes v from the boundary and drops the back link.
func (s *Surface) detachVertex(v *Vertex) {
	if i := s.VertexIndex(v); i >= 0 {
		s.vertices = append(s.vertices[:i], s.vertices[i+1:]...)
	}
	v.removeSurface(s)
}

// insertVertexBefore splices v into the boundary before index i.
func (s *Surface) insertVertexBefore(i int, v *Vertex) {
	s.vertices = append(s.vertices, nil)
	copy(s.vertices[i+1:], s.vertices[i:])
	s.vertices[i] = v
}

// replaceVertex swaps every occurrence of old for now on the boundary.
func (s *Surface) replaceVertex(old, now *Vertex) {
	for i, v := range s.vertices {
		if v == old {
			s.vertices[i] = now
		}
	}
}

// releaseBody clears the surface's link to b, whichever side holds it.
func (s *Surface) releaseBody(b *Body) {
	if s.b1 == b {
		s.b1 = nil
	}
	if s.b2 == b {
		s.b2 = nil
	}
}

// claimSide records b as an owner of a free side of the surface.
func (s *Surface) claimSide(b *Body) error {
	switch {
	case s.b1 == nil:
		s.b1 = b
	case s.b2 == nil:
		s.b2 = b
	default:
		return opErr("claim", ErrStructural, "surface %d already bounds two bodies", s.id)
	}
	return nil
}

// safeNormalize returns the unit vector of v, or the zero vector when v
// is too short to normalize meaningfully.
func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	const eps = 1e-12
	l := v.Len()
	if l < eps {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / l)
}
