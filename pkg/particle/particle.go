// Package particle implements the point-mass backend that vertex-model
// meshes are built on. A Store owns the particle state (position, mass,
// accumulated force) and hands out Handles; the mesh core treats a Handle
// as an opaque reference supplying mass and position. Time integration of
// the stored state is driven elsewhere; the Store only carries the
// overdamped integration timestep that constraint kernels scale by.
package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMass is assigned to particles created without an explicit mass.
const DefaultMass = 1.0

// DefaultTimestep is the overdamped integration timestep used when a Store
// is created with a non-positive timestep.
const DefaultTimestep = 0.01

type state struct {
	pos   mgl64.Vec3
	force mgl64.Vec3
	mass  float64
	gen   uint32
	live  bool
}

// Store owns all particle state for one simulation. Slots are recycled
// through a free list, so a Handle to a destroyed particle must never be
// reused. Mutation assumes a single writer; concurrent force accumulation
// is safe only across distinct particles.
type Store struct {
	parts    []state
	free     []int
	timestep float64
}

// NewStore creates an empty particle store with the given overdamped
// integration timestep. A non-positive timestep falls back to
// DefaultTimestep.
func NewStore(timestep float64) *Store {
	if timestep <= 0 {
		timestep = DefaultTimestep
	}
	return &Store{timestep: timestep}
}

// Timestep returns the overdamped integration timestep.
func (s *Store) Timestep() float64 { return s.timestep }

// Len returns the number of live particles.
func (s *Store) Len() int {
	return len(s.parts) - len(s.free)
}

// New creates a particle at the given position with DefaultMass.
func (s *Store) New(pos mgl64.Vec3) *Handle {
	return s.NewWithMass(pos, DefaultMass)
}

// NewWithMass creates a particle at the given position with the given mass.
func (s *Store) NewWithMass(pos mgl64.Vec3, mass float64) *Handle {
	var id int
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = len(s.parts)
		s.parts = append(s.parts, state{})
	}
	gen := s.parts[id].gen
	s.parts[id] = state{pos: pos, mass: mass, gen: gen, live: true}
	return &Handle{id: id, gen: gen, store: s}
}

// Destroy frees the particle behind the handle. The handle and any copies
// of it report not-live afterwards; the slot may be reassigned. The slot
// generation increments so a stale handle can never alias the reassigned
// particle.
func (s *Store) Destroy(h *Handle) error {
	if h == nil || h.store != s || !h.Live() {
		return fmt.Errorf("particle: destroy of invalid handle")
	}
	gen := s.parts[h.id].gen
	s.parts[h.id] = state{gen: gen + 1}
	s.free = append(s.free, h.id)
	return nil
}

// Handle is a reference to one particle in a Store.
type Handle struct {
	id    int
	gen   uint32
	store *Store
}

// ID returns the particle's slot index within its store.
func (h *Handle) ID() int { return h.id }

// Store returns the owning store.
func (h *Handle) Store() *Store { return h.store }

// Live reports whether the particle still exists and the handle refers to
// the same incarnation of its slot.
func (h *Handle) Live() bool {
	p := &h.store.parts[h.id]
	return p.live && p.gen == h.gen
}

// Position returns the particle position.
func (h *Handle) Position() mgl64.Vec3 { return h.store.parts[h.id].pos }

// SetPosition moves the particle.
func (h *Handle) SetPosition(pos mgl64.Vec3) {
	h.store.parts[h.id].pos = pos
}

// Mass returns the particle mass.
func (h *Handle) Mass() float64 { return h.store.parts[h.id].mass }

// SetMass sets the particle mass.
func (h *Handle) SetMass(mass float64) {
	h.store.parts[h.id].mass = mass
}

// RelativePosition returns the displacement from the particle to pos.
func (h *Handle) RelativePosition(pos mgl64.Vec3) mgl64.Vec3 {
	return pos.Sub(h.store.parts[h.id].pos)
}

// Distance returns the Euclidean distance from the particle to pos.
func (h *Handle) Distance(pos mgl64.Vec3) float64 {
	return h.RelativePosition(pos).Len()
}

// Force returns the accumulated force on the particle.
func (h *Handle) Force() mgl64.Vec3 { return h.store.parts[h.id].force }

// AddForce accumulates a force contribution on the particle.
func (h *Handle) AddForce(f mgl64.Vec3) {
	p := &h.store.parts[h.id]
	p.force = p.force.Add(f)
}

// ClearForce zeroes the particle's force accumulator.
func (h *Handle) ClearForce() {
	h.store.parts[h.id].force = mgl64.Vec3{}
}
