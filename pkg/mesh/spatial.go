package mesh

import (
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

// indexEps is the half-extent of the degenerate rectangle a point vertex
// occupies in the r-tree.
const indexEps = 1e-9

type vertexEntry struct {
	v    *Vertex
	rect rtreego.Rect
}

func (e *vertexEntry) Bounds() rtreego.Rect { return e.rect }

// newVertexIndex builds a transient r-tree over the given vertices.
// Indexes are built per query batch and discarded: vertex positions move
// between editing calls, so a persistent index would go stale.
func newVertexIndex(verts []*Vertex) *rtreego.Rtree {
	tree := rtreego.NewTree(3, 8, 16)
	for _, v := range verts {
		p := v.Position()
		tree.Insert(&vertexEntry{
			v:    v,
			rect: rtreego.Point{p.X(), p.Y(), p.Z()}.ToRect(indexEps),
		})
	}
	return tree
}

// nearestVertex returns the indexed vertex nearest to pos, or nil for an
// empty index.
func nearestVertex(tree *rtreego.Rtree, pos mgl64.Vec3) *Vertex {
	hit := tree.NearestNeighbor(rtreego.Point{pos.X(), pos.Y(), pos.Z()})
	if hit == nil {
		return nil
	}
	return hit.(*vertexEntry).v
}
