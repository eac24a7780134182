package solver

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epimorph/epimorph/pkg/mesh"
)

// DefaultHistoryLimit bounds the retained change log when no limit is
// configured.
const DefaultHistoryLimit = 1024

// Record is one retained mesh change notification.
type Record struct {
	Time   time.Time
	MeshID uuid.UUID
	Event  mesh.EventKind
	IDs    []int
	Kinds  []mesh.ObjectKind
	Tag    string
}

// Engine is the reference mesh.Solver. It is safe to share one engine
// across meshes; notification hooks and queries may run concurrently, but
// Step requires the same exclusive mesh access as any editing operation.
type Engine struct {
	log     *zap.Logger
	limit   int
	workers int

	mu      sync.Mutex
	history []Record
	dirty   bool
	moves   int
}

var _ mesh.Solver = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryLimit bounds the retained change log; older records are
// discarded first. A limit of zero disables retention.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) { e.limit = n }
}

// WithWorkers sets the number of goroutines used for force aggregation.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an engine. A nil logger disables diagnostics.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		log:     logger,
		limit:   DefaultHistoryLimit,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Log retains the notification and emits a structured diagnostic.
func (e *Engine) Log(m *mesh.Mesh, kind mesh.EventKind, ids []int, kinds []mesh.ObjectKind, tag string) {
	e.log.Debug("mesh change",
		zap.Stringer("mesh", m.ID()),
		zap.Stringer("event", kind),
		zap.Ints("ids", ids),
		zap.String("tag", tag))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.limit == 0 {
		return
	}
	e.history = append(e.history, Record{
		Time:   time.Now(),
		MeshID: m.ID(),
		Event:  kind,
		IDs:    append([]int(nil), ids...),
		Kinds:  append([]mesh.ObjectKind(nil), kinds...),
		Tag:    tag,
	})
	if over := len(e.history) - e.limit; over > 0 {
		e.history = append(e.history[:0], e.history[over:]...)
	}
}

// SetDirty records the topology-changed flag.
func (e *Engine) SetDirty(dirty bool) {
	e.mu.Lock()
	e.dirty = dirty
	e.mu.Unlock()
}

// PositionChanged counts out-of-band position updates.
func (e *Engine) PositionChanged() {
	e.mu.Lock()
	e.moves++
	e.mu.Unlock()
}

// Dirty reports the last flag received from the mesh.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// PositionChanges returns the number of out-of-band position updates seen.
func (e *Engine) PositionChanges() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// History returns a copy of the retained records, oldest first.
func (e *Engine) History() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Record(nil), e.history...)
}

// Energy sums every actor contribution over the mesh: each surface actor
// over the surface's boundary vertices, each body actor over the body's
// distinct vertices.
func Energy(m *mesh.Mesh) float64 {
	var total float64
	for _, s := range m.Surfaces() {
		st := s.Type()
		if st == nil {
			continue
		}
		for _, a := range st.Actors {
			for _, v := range s.Vertices() {
				total += a.Energy(s, v)
			}
		}
	}
	for _, b := range m.Bodies() {
		bt := b.Type()
		if bt == nil {
			continue
		}
		for _, a := range bt.Actors {
			for _, v := range b.Vertices() {
				total += a.Energy(b, v)
			}
		}
	}
	return total
}

// pair is one (owner, vertex) force evaluation.
type pair struct {
	owner mesh.Object
	actor mesh.Actor
	v     *mesh.Vertex
}

// ApplyForces evaluates every actor force and accumulates it on the
// vertex particles, fanning the evaluations out over the engine's worker
// pool. Evaluations only read shared geometry; each vertex's accumulator
// is touched by exactly one worker.
func (e *Engine) ApplyForces(m *mesh.Mesh) {
	byVertex := make(map[*mesh.Vertex][]pair)
	for _, s := range m.Surfaces() {
		st := s.Type()
		if st == nil {
			continue
		}
		for _, a := range st.Actors {
			for _, v := range s.Vertices() {
				byVertex[v] = append(byVertex[v], pair{owner: s, actor: a, v: v})
			}
		}
	}
	for _, b := range m.Bodies() {
		bt := b.Type()
		if bt == nil {
			continue
		}
		for _, a := range bt.Actors {
			for _, v := range b.Vertices() {
				byVertex[v] = append(byVertex[v], pair{owner: b, actor: a, v: v})
			}
		}
	}

	groups := make([][]pair, 0, len(byVertex))
	for _, ps := range byVertex {
		groups = append(groups, ps)
	}

	workers := e.workers
	if workers > len(groups) {
		workers = len(groups)
	}
	if workers <= 1 {
		for _, ps := range groups {
			applyGroup(ps)
		}
		return
	}

	var wg sync.WaitGroup
	ch := make(chan []pair)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ps := range ch {
				applyGroup(ps)
			}
		}()
	}
	for _, ps := range groups {
		ch <- ps
	}
	close(ch)
	wg.Wait()
}

func applyGroup(ps []pair) {
	for _, p := range ps {
		p.v.Particle().AddForce(p.actor.Force(p.owner, p.v))
	}
}

// Step advances vertex positions by one overdamped forward-Euler step:
// forces are aggregated, each vertex moves by force/mass times the store
// timestep, and the accumulators are cleared.
func (e *Engine) Step(m *mesh.Mesh) {
	e.ApplyForces(m)
	dt := m.Particles().Timestep()
	for _, v := range m.Vertices() {
		p := v.Particle()
		p.SetPosition(p.Position().Add(p.Force().Mul(dt / p.Mass())))
		p.ClearForce()
	}
	e.SetDirty(false)
}

// Relax runs Step repeatedly and returns the final total energy.
func (e *Engine) Relax(m *mesh.Mesh, steps int) float64 {
	for i := 0; i < steps; i++ {
		e.Step(m)
	}
	return Energy(m)
}
