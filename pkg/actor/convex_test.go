package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/mesh"
	"github.com/epimorph/epimorph/pkg/particle"
)

func buildSurface(t *testing.T, store *particle.Store, positions []mgl64.Vec3) (*mesh.Surface, []*mesh.Vertex) {
	t.Helper()
	verts := make([]*mesh.Vertex, len(positions))
	for i, p := range positions {
		verts[i] = mesh.NewVertex(store.New(p))
	}
	stype := &mesh.SurfaceType{Name: "test"}
	s, err := stype.New(verts)
	if err != nil {
		t.Fatalf("SurfaceType.New: %v", err)
	}
	return s, verts
}

func TestConvexPolygonConstraintTriangleInactive(t *testing.T) {
	store := particle.NewStore(0.01)
	s, verts := buildSurface(t, store, []mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
	})
	c := NewConvexPolygonConstraint(1)
	for i, v := range verts {
		if e := c.Energy(s, v); e != 0 {
			t.Errorf("vertex %d: energy = %v, want 0", i, e)
		}
		if f := c.Force(s, v); f != (mgl64.Vec3{}) {
			t.Errorf("vertex %d: force = %v, want zero", i, f)
		}
	}
}

func TestConvexPolygonConstraintConvexSquareInactive(t *testing.T) {
	store := particle.NewStore(0.01)
	s, verts := buildSurface(t, store, []mgl64.Vec3{
		{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	})
	c := NewConvexPolygonConstraint(1)
	for i, v := range verts {
		if f := c.Force(s, v); f.Len() > 1e-12 {
			t.Errorf("vertex %d: force = %v, want zero", i, f)
		}
	}
}

func TestConvexPolygonConstraintReflexVertex(t *testing.T) {
	store := particle.NewStore(0.01)
	// Square with one edge vertex poked inward toward the centroid.
	s, verts := buildSurface(t, store, []mgl64.Vec3{
		{0, 0, 0}, {1, 0.5, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
	})
	c := NewConvexPolygonConstraint(2)
	reflex := verts[1]

	f := c.Force(s, reflex)
	if f.Y() >= 0 {
		t.Errorf("force.Y = %v, want negative (back toward the neighbor line)", f.Y())
	}
	if math.Abs(f.X()) > 1e-12 || math.Abs(f.Z()) > 1e-12 {
		t.Errorf("force = %v, want purely along y", f)
	}

	// Offset is (0, -0.5, 0): energy = m/dt * lam/2 * |off|^2.
	wantE := 1.0 / 0.01 * 2 / 2 * 0.25
	if e := c.Energy(s, reflex); math.Abs(e-wantE) > 1e-9 {
		t.Errorf("energy = %v, want %v", e, wantE)
	}

	// The convex corners stay unconstrained.
	for _, i := range []int{3, 4} {
		if f := c.Force(s, verts[i]); f.Len() > 1e-12 {
			t.Errorf("vertex %d: force = %v, want zero", i, f)
		}
	}
}

func TestConvexPolygonConstraintIgnoresNonSurfaceOwner(t *testing.T) {
	store := particle.NewStore(0.01)
	v := mesh.NewVertex(store.New(mgl64.Vec3{}))
	c := NewConvexPolygonConstraint(1)
	if e := c.Energy(v, v); e != 0 {
		t.Errorf("energy = %v, want 0 for non-surface owner", e)
	}
}
