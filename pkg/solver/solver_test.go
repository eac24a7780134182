package solver

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/epimorph/epimorph/pkg/actor"
	"github.com/epimorph/epimorph/pkg/mesh"
	"github.com/epimorph/epimorph/pkg/particle"
)

// constantActor contributes a fixed force and energy per evaluation.
type constantActor struct {
	f mgl64.Vec3
	e float64
}

func (a constantActor) Energy(owner mesh.Object, v *mesh.Vertex) float64 { return a.e }
func (a constantActor) Force(owner mesh.Object, v *mesh.Vertex) mgl64.Vec3 {
	return a.f
}

func addSquare(t *testing.T, m *mesh.Mesh, st *mesh.SurfaceType) *mesh.Surface {
	t.Helper()
	verts := []*mesh.Vertex{
		mesh.NewVertex(m.Particles().New(mgl64.Vec3{0, 0, 0})),
		mesh.NewVertex(m.Particles().New(mgl64.Vec3{1, 0, 0})),
		mesh.NewVertex(m.Particles().New(mgl64.Vec3{1, 1, 0})),
		mesh.NewVertex(m.Particles().New(mgl64.Vec3{0, 1, 0})),
	}
	s, err := st.New(verts)
	if err != nil {
		t.Fatalf("SurfaceType.New: %v", err)
	}
	if err := m.AddSurface(s); err != nil {
		t.Fatalf("AddSurface: %v", err)
	}
	return s
}

func TestEnergyAggregation(t *testing.T) {
	m := mesh.New(particle.NewStore(0.01), nil)
	st := &mesh.SurfaceType{
		Name:   "membrane",
		Actors: []mesh.Actor{constantActor{e: 2}},
	}
	addSquare(t, m, st)

	// One actor over four boundary vertices.
	if got, want := Energy(m), 8.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %v, want %v", got, want)
	}
}

func TestStepIntegratesForces(t *testing.T) {
	m := mesh.New(particle.NewStore(0.05), nil)
	f := mgl64.Vec3{0, 0, 2}
	st := &mesh.SurfaceType{
		Name:   "membrane",
		Actors: []mesh.Actor{constantActor{f: f}},
	}
	addSquare(t, m, st)

	e := New(nil, WithWorkers(4))
	e.Step(m)

	// dx = f/m * dt with unit mass and dt = 0.05.
	for i, v := range m.Vertices() {
		if got := v.Position().Z(); math.Abs(got-0.1) > 1e-12 {
			t.Errorf("vertex %d z = %v, want 0.1", i, got)
		}
		if got := v.Particle().Force(); got != (mgl64.Vec3{}) {
			t.Errorf("vertex %d force = %v, want cleared accumulator", i, got)
		}
	}

	e.Step(m)
	for i, v := range m.Vertices() {
		if got := v.Position().Z(); math.Abs(got-0.2) > 1e-12 {
			t.Errorf("vertex %d z after second step = %v, want 0.2", i, got)
		}
	}
}

func TestHistoryBounded(t *testing.T) {
	m := mesh.New(particle.NewStore(0.01), nil)
	e := New(nil, WithHistoryLimit(3))
	m.AttachSolver(e)

	var last *mesh.Vertex
	for i := 0; i < 5; i++ {
		last = mesh.NewVertex(m.Particles().New(mgl64.Vec3{float64(i), 0, 0}))
		if err := m.AddVertex(last); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}

	h := e.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	tail := h[len(h)-1]
	if tail.Event != mesh.CreateEvent {
		t.Errorf("last event = %v, want create", tail.Event)
	}
	if len(tail.IDs) == 0 || tail.IDs[0] != last.ID() {
		t.Errorf("last record ids = %v, want leading id %d", tail.IDs, last.ID())
	}
	if tail.MeshID != m.ID() {
		t.Error("record does not carry the mesh identifier")
	}
}

func TestDirtyTracking(t *testing.T) {
	m := mesh.New(particle.NewStore(0.01), nil)
	e := New(nil)
	m.AttachSolver(e)

	v := mesh.NewVertex(m.Particles().New(mgl64.Vec3{}))
	if err := m.AddVertex(v); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if !e.Dirty() {
		t.Error("add did not mark the engine dirty")
	}
	e.Step(m)
	if e.Dirty() {
		t.Error("Step left the engine dirty")
	}
}

func TestRelaxReducesAreaPenalty(t *testing.T) {
	store := particle.NewStore(0.01)
	m := mesh.New(store, nil)

	sc := actor.NewSurfaceAreaConstraint(0.01, 25)
	st := &mesh.SurfaceType{Name: "face"}
	bt := &mesh.BodyType{Name: "cell", Actors: []mesh.Actor{sc}}

	var verts []*mesh.Vertex
	for _, z := range []float64{0, 2} {
		for _, p := range []mgl64.Vec3{
			{0, 0, z}, {2, 0, z}, {2, 2, z}, {0, 2, z},
		} {
			verts = append(verts, mesh.NewVertex(store.New(p)))
		}
	}
	quads := [][4]int{
		{0, 1, 2, 3}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
	}
	var faces []*mesh.Surface
	for _, q := range quads {
		s, err := st.New([]*mesh.Vertex{verts[q[0]], verts[q[1]], verts[q[2]], verts[q[3]]})
		if err != nil {
			t.Fatalf("SurfaceType.New: %v", err)
		}
		faces = append(faces, s)
	}
	b, err := bt.New(faces)
	if err != nil {
		t.Fatalf("BodyType.New: %v", err)
	}
	if err := m.AddBody(b); err != nil {
		t.Fatalf("AddBody: %v", err)
	}

	before := Energy(m)
	if before <= 0 {
		t.Fatalf("energy before relaxation = %v, want positive", before)
	}
	e := New(nil, WithWorkers(2))
	after := e.Relax(m, 20)
	if after >= before {
		t.Errorf("energy after relaxation = %v, want below %v", after, before)
	}
}
