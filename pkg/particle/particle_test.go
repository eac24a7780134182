package particle

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore(0)
	if s.Timestep() != DefaultTimestep {
		t.Errorf("timestep = %f, want %f", s.Timestep(), DefaultTimestep)
	}
	if s.Len() != 0 {
		t.Errorf("empty store has %d particles", s.Len())
	}
}

func TestCreateAndQuery(t *testing.T) {
	s := NewStore(0.01)
	h := s.NewWithMass(mgl64.Vec3{1, 2, 3}, 2.5)

	if !h.Live() {
		t.Fatal("fresh particle should be live")
	}
	if got := h.Position(); got != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position = %v, want {1 2 3}", got)
	}
	if h.Mass() != 2.5 {
		t.Errorf("mass = %f, want 2.5", h.Mass())
	}
	if got := h.RelativePosition(mgl64.Vec3{1, 2, 7}); got != (mgl64.Vec3{0, 0, 4}) {
		t.Errorf("relative position = %v, want {0 0 4}", got)
	}
	if d := h.Distance(mgl64.Vec3{1, 2, 7}); d != 4 {
		t.Errorf("distance = %f, want 4", d)
	}
}

func TestForceAccumulation(t *testing.T) {
	s := NewStore(0.01)
	h := s.New(mgl64.Vec3{})

	h.AddForce(mgl64.Vec3{1, 0, 0})
	h.AddForce(mgl64.Vec3{0, 2, 0})
	if got := h.Force(); got != (mgl64.Vec3{1, 2, 0}) {
		t.Errorf("force = %v, want {1 2 0}", got)
	}

	h.ClearForce()
	if got := h.Force(); got != (mgl64.Vec3{}) {
		t.Errorf("force after clear = %v, want zero", got)
	}
}

func TestDestroyAndRecycle(t *testing.T) {
	s := NewStore(0.01)
	a := s.New(mgl64.Vec3{1, 0, 0})
	b := s.New(mgl64.Vec3{2, 0, 0})

	if err := s.Destroy(a); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if a.Live() {
		t.Error("destroyed particle reports live")
	}
	if s.Len() != 1 {
		t.Errorf("store has %d particles, want 1", s.Len())
	}

	// Slot is recycled; the stale handle must not alias the new particle's state
	// through its own accessors beyond sharing the slot index.
	c := s.New(mgl64.Vec3{9, 9, 9})
	if c.ID() != a.ID() {
		t.Errorf("recycled id = %d, want %d", c.ID(), a.ID())
	}
	if b.Position() != (mgl64.Vec3{2, 0, 0}) {
		t.Error("unrelated particle disturbed by recycle")
	}

	// Double destroy fails.
	if err := s.Destroy(a); err == nil {
		t.Error("double destroy should fail")
	}
}
