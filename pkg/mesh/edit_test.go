package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestInsertSplicesSharedEdge(t *testing.T) {
	m := testMesh()
	st := &SurfaceType{Name: "membrane"}
	a := newVertexAt(m, 0, 0, 0)
	b := newVertexAt(m, 1, 0, 0)
	c := newVertexAt(m, 1, 1, 0)
	d := newVertexAt(m, 0, 1, 0)
	e := newVertexAt(m, 2, 0, 0)
	f := newVertexAt(m, 2, 1, 0)
	s1 := mustSurface(t, st, a, b, c, d)
	s2 := mustSurface(t, st, b, e, f, c)
	if err := m.AddSurface(s1); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	if err := m.AddSurface(s2); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	// b-c is an edge of both surfaces: the new vertex lands on both.
	mid := newVertexAt(m, 1, 0.5, 0)
	if err := m.Insert(mid, b, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if mid.ID() == Unstored {
		t.Fatal("inserted vertex left unstored")
	}
	if len(s1.Vertices()) != 5 || len(s2.Vertices()) != 5 {
		t.Errorf("boundary lengths = %d, %d, want 5, 5", len(s1.Vertices()), len(s2.Vertices()))
	}
	for _, s := range []*Surface{s1, s2} {
		i := s.VertexIndex(mid)
		if i < 0 {
			t.Fatalf("surface %d does not contain the inserted vertex", s.ID())
		}
		prev, next, _ := s.NeighborsOf(mid)
		if !(prev == b && next == c) && !(prev == c && next == b) {
			t.Errorf("surface %d: inserted vertex not between b and c", s.ID())
		}
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after insert: %v", errs)
	}
}

func TestInsertRejectsNonAdjacentVertices(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	verts := s.Vertices()

	mid := newVertexAt(m, 0.5, 0.5, 0)
	err := m.Insert(mid, verts[0], verts[2])
	if err == nil {
		t.Fatal("Insert between diagonal vertices succeeded, want error")
	}
	if kind, _ := KindOf(err); kind != ErrAdjacency {
		t.Errorf("error kind = %v, want %v", kind, ErrAdjacency)
	}
	if len(s.Vertices()) != 4 {
		t.Error("failed insert mutated the boundary")
	}
}

func TestMergeVerticesMidpoint(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	verts := s.Vertices()
	keep, drop := verts[0], verts[1]

	if err := m.MergeVertices(keep, drop, 0.5); err != nil {
		t.Fatalf("MergeVertices: %v", err)
	}
	if got, want := keep.Position(), (mgl64.Vec3{0.5, 0, 0}); !vecNear(got, want, 1e-12) {
		t.Errorf("kept position = %v, want midpoint %v", got, want)
	}
	if drop.ID() != Unstored {
		t.Error("merged vertex still stored")
	}
	if len(s.Vertices()) != 3 {
		t.Errorf("boundary length = %d, want 3", len(s.Vertices()))
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after merge: %v", errs)
	}
}

func TestMergeVerticesRequiresAdjacency(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	verts := s.Vertices()

	err := m.MergeVertices(verts[0], verts[2], 0.5)
	if err == nil {
		t.Fatal("merge of diagonal vertices succeeded, want error")
	}
	if kind, _ := KindOf(err); kind != ErrAdjacency {
		t.Errorf("error kind = %v, want %v", kind, ErrAdjacency)
	}
	if m.VertexCount() != 4 || len(s.Vertices()) != 4 {
		t.Error("failed merge mutated the mesh")
	}
}

func TestReplaceVertexRejectsBadCoefficients(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	v := s.Vertices()[0]
	st := &SurfaceType{Name: "membrane"}

	cases := []struct {
		name string
		cfs  []float64
	}{
		{"wrong count", []float64{0.5}},
		{"zero coefficient", []float64{0, 0.5}},
		{"unit coefficient", []float64{0.5, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.ReplaceVertex(st, v, tc.cfs)
			if err == nil {
				t.Fatal("ReplaceVertex succeeded, want error")
			}
			if kind, _ := KindOf(err); kind != ErrArity {
				t.Errorf("error kind = %v, want %v", kind, ErrArity)
			}
			if m.VertexCount() != 4 || m.SurfaceCount() != 1 {
				t.Error("failed replace mutated the mesh")
			}
		})
	}
}

func TestReplaceVertexFansOut(t *testing.T) {
	m := testMesh()
	st := &SurfaceType{Name: "membrane"}

	// Three triangles fanning around a hub vertex.
	hub := newVertexAt(m, 0, 0, 0)
	rim := []*Vertex{
		newVertexAt(m, 2, 0, 0),
		newVertexAt(m, -1, 2, 0),
		newVertexAt(m, -1, -2, 0),
	}
	for i := range rim {
		s := mustSurface(t, st, hub, rim[i], rim[(i+1)%len(rim)])
		if err := m.AddSurface(s); err != nil {
			t.Fatalf("AddSurface: %v", err)
		}
	}

	created, err := m.ReplaceVertex(st, hub, []float64{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatalf("ReplaceVertex: %v", err)
	}
	if hub.ID() != Unstored {
		t.Error("replaced vertex still stored")
	}
	if created == nil || created.ID() == Unstored {
		t.Fatal("fan surface not created and stored")
	}
	if got := len(created.Vertices()); got != 3 {
		t.Errorf("fan surface has %d vertices, want 3", got)
	}
	// Each inserted vertex sits halfway between the hub and a rim vertex.
	for _, v := range created.Vertices() {
		if got := v.Position().Len(); math.Abs(got-1) > 0.2 {
			t.Errorf("inserted vertex at %v, want roughly halfway to the rim", v.Position())
		}
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after replace: %v", errs)
	}
}

func TestReplaceSurfaceCollapsesToVertex(t *testing.T) {
	m := testMesh()
	st := &SurfaceType{Name: "membrane"}
	a := newVertexAt(m, 0, 0, 0)
	b := newVertexAt(m, 1, 0, 0)
	c := newVertexAt(m, 1, 1, 0)
	d := newVertexAt(m, 0, 1, 0)
	e := newVertexAt(m, 2, 0, 0)
	f := newVertexAt(m, 2, 1, 0)
	inner := mustSurface(t, st, a, b, c, d)
	outer := mustSurface(t, st, b, e, f, c)
	if err := m.AddSurface(inner); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	if err := m.AddSurface(outer); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	center := newVertexAt(m, 0.5, 0.5, 0)
	if err := m.ReplaceSurface(center, inner); err != nil {
		t.Fatalf("ReplaceSurface: %v", err)
	}
	if inner.ID() != Unstored {
		t.Error("replaced surface still stored")
	}
	if center.ID() == Unstored {
		t.Error("inserted vertex left unstored")
	}
	// The neighbor lost its shared run {b, c} and gained the center.
	if got := len(outer.Vertices()); got != 3 {
		t.Errorf("neighbor boundary length = %d, want 3", got)
	}
	if outer.VertexIndex(center) < 0 {
		t.Error("neighbor does not contain the inserted vertex")
	}
	// Vertices bounding nothing anymore are gone with the surface.
	for _, v := range []*Vertex{a, d} {
		if v.ID() != Unstored {
			t.Errorf("orphaned vertex %v still stored", v.Position())
		}
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after replace: %v", errs)
	}
}

func TestMergeSurfacesRequiresEqualCounts(t *testing.T) {
	m := testMesh()
	st := &SurfaceType{Name: "membrane"}
	square := unitSquare(t, m)
	tri := mustSurface(t, st,
		newVertexAt(m, 3, 0, 0),
		newVertexAt(m, 4, 0, 0),
		newVertexAt(m, 3, 1, 0))
	if err := m.AddSurface(square); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	if err := m.AddSurface(tri); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	err := m.MergeSurfaces(square, tri, nil)
	if err == nil {
		t.Fatal("merge of unequal surfaces succeeded, want error")
	}
	if kind, _ := KindOf(err); kind != ErrArity {
		t.Errorf("error kind = %v, want %v", kind, ErrArity)
	}
}

func TestMergeSurfacesCollapsesTwins(t *testing.T) {
	m := testMesh()
	st := &SurfaceType{Name: "membrane"}

	keep := mustSurface(t, st,
		newVertexAt(m, 0, 0, 0),
		newVertexAt(m, 1, 0, 0),
		newVertexAt(m, 1, 1, 0),
		newVertexAt(m, 0, 1, 0))
	drop := mustSurface(t, st,
		newVertexAt(m, 0, 0, 0.2),
		newVertexAt(m, 1, 0, 0.2),
		newVertexAt(m, 1, 1, 0.2),
		newVertexAt(m, 0, 1, 0.2))
	if err := m.AddSurface(keep); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	if err := m.AddSurface(drop); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	if err := m.MergeSurfaces(keep, drop, nil); err != nil {
		t.Fatalf("MergeSurfaces: %v", err)
	}
	if drop.ID() != Unstored {
		t.Error("merged surface still stored")
	}
	if got := m.SurfaceCount(); got != 1 {
		t.Errorf("SurfaceCount = %d, want 1", got)
	}
	if got := m.VertexCount(); got != 4 {
		t.Errorf("VertexCount = %d, want 4", got)
	}
	// Default coefficient pads to 0.5: the kept corners settle halfway.
	if got := keep.Vertices()[0].Position().Z(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("kept corner z = %v, want 0.1", got)
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after merge: %v", errs)
	}
}

func TestExtendSurface(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	grown, err := m.ExtendSurface(s, 0, mgl64.Vec3{0.5, -1, 0})
	if err != nil {
		t.Fatalf("ExtendSurface: %v", err)
	}
	if got := len(grown.Vertices()); got != 3 {
		t.Errorf("extension has %d vertices, want 3", got)
	}
	if m.SurfaceCount() != 2 || m.VertexCount() != 5 {
		t.Errorf("counts = %d surfaces, %d vertices, want 2, 5", m.SurfaceCount(), m.VertexCount())
	}
	if !m.SurfacesConnected(s, grown) {
		t.Error("extension not connected to its base")
	}

	if _, err := m.ExtendSurface(s, 9, mgl64.Vec3{}); err == nil {
		t.Error("out-of-range edge index accepted")
	}
}

func TestExtrudeSurfaceBuildsPlanarQuad(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}

	quad, err := m.ExtrudeSurface(s, 0, 2)
	if err != nil {
		t.Fatalf("ExtrudeSurface: %v", err)
	}
	if got := len(quad.Vertices()); got != 4 {
		t.Errorf("extrusion has %d vertices, want 4", got)
	}
	// The base edge has length 1 and is offset by 2 along the normal; a
	// well-ordered quad has exactly that area, a bowtie half of it.
	if got := quad.Area(); math.Abs(got-2) > 1e-9 {
		t.Errorf("extruded area = %v, want 2", got)
	}
}

func TestExtendBodyConesToApex(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	bt := &BodyType{Name: "cell"}

	b, err := m.ExtendBody(s, bt, mgl64.Vec3{0.5, 0.5, 3})
	if err != nil {
		t.Fatalf("ExtendBody: %v", err)
	}
	if got := len(b.Surfaces()); got != 5 {
		t.Errorf("body has %d surfaces, want base + 4 sides", got)
	}
	if m.VertexCount() != 5 {
		t.Errorf("VertexCount = %d, want 5", m.VertexCount())
	}
	// Pyramid over a unit square with height 3.
	if got := b.Volume(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Volume = %v, want 1", got)
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after extend: %v", errs)
	}
}

func TestExtrudeBody(t *testing.T) {
	m := testMesh()
	s := unitSquare(t, m)
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	bt := &BodyType{Name: "cell"}

	b, err := m.ExtrudeBody(s, bt, 2)
	if err != nil {
		t.Fatalf("ExtrudeBody: %v", err)
	}
	if got := len(b.Surfaces()); got != 6 {
		t.Errorf("body has %d surfaces, want 6", got)
	}
	if m.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", m.VertexCount())
	}
	if got := b.Volume(); math.Abs(got-2) > 1e-9 {
		t.Errorf("Volume = %v, want 2", got)
	}

	// A second extrusion from the same base claims its free side.
	if _, err := m.ExtrudeBody(s, bt, -2); err != nil {
		t.Fatalf("second ExtrudeBody: %v", err)
	}
	if _, err := m.ExtrudeBody(s, bt, 2); err == nil {
		t.Error("extrusion from a fully bounded surface accepted")
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("Validate after extrude: %v", errs)
	}
}
