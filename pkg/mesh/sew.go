package mesh

import "go.uber.org/zap"

// Sew merges near-coincident boundary geometry between two surfaces
// already owned by this mesh. A vertex of s2 merges into the nearest
// vertex of s1 when their separation is below distCf times the mean
// boundary-edge length of the two surfaces; the surviving vertex moves to
// the midpoint and is re-pointed into every surface of the merged one.
func (m *Mesh) Sew(s1, s2 *Surface, distCf float64) error {
	if s1 == nil || s2 == nil || s1.Mesh() != m || s2.Mesh() != m {
		err := opErr("sew", ErrStructural, "surface not in this mesh")
		m.log.Error("sew rejected", zap.Error(err))
		return err
	}
	if s1 == s2 {
		return nil
	}

	edges := float64(len(s1.vertices) + len(s2.vertices))
	threshold := distCf * (s1.Perimeter() + s2.Perimeter()) / edges

	s1ID, s2ID := s1.ID(), s2.ID()
	tree := newVertexIndex(s1.vertices)
	for _, v2 := range append([]*Vertex(nil), s2.vertices...) {
		if v2.In(s1) {
			continue
		}
		v1 := nearestVertex(tree, v2.Position())
		if v1 == nil || v1 == v2 {
			continue
		}
		if v1.Position().Sub(v2.Position()).Len() > threshold {
			continue
		}

		mid := v1.Position().Add(v2.Position()).Mul(0.5)
		for _, s := range append([]*Surface(nil), v2.surfaces...) {
			if s.VertexIndex(v1) >= 0 {
				// The survivor already bounds this surface; the merged
				// vertex simply drops out of its boundary.
				s.detachVertex(v2)
			} else {
				s.replaceVertex(v2, v1)
				v1.addSurface(s)
				v2.removeSurface(s)
			}
		}
		if v2.ID() >= 0 {
			if err := m.Remove(v2); err != nil {
				return err
			}
		}
		v1.SetPosition(mid)
	}

	m.notifyOp(CreateEvent,
		[]int{s1ID, s2ID},
		[]ObjectKind{KindSurface, KindSurface}, "sew")
	return nil
}

// SewAll sews every ordered pair of the given surfaces in both
// directions, so the outcome does not depend on slice order and a merge
// enabled by an earlier one is still picked up on the return visit.
func (m *Mesh) SewAll(surfaces []*Surface, distCf float64) error {
	for i, s1 := range surfaces {
		for j, s2 := range surfaces {
			if i == j {
				continue
			}
			if err := m.Sew(s1, s2, distCf); err != nil {
				return err
			}
		}
	}
	return nil
}
