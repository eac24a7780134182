package meshio

import (
	"fmt"

	"github.com/epimorph/epimorph/pkg/actor"
	"github.com/epimorph/epimorph/pkg/mesh"
)

// ActorCodec converts one actor kind to and from its element form. Encode
// reports false when the actor is not of the codec's kind.
type ActorCodec struct {
	Kind   string
	Encode func(mesh.Actor) (*Element, bool)
	Decode func(*Element) (mesh.Actor, error)
}

// Registry maps actor element types to codecs.
type Registry struct {
	codecs map[string]ActorCodec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]ActorCodec)}
}

// Register adds or replaces a codec under its kind.
func (r *Registry) Register(c ActorCodec) {
	r.codecs[c.Kind] = c
}

// EncodeActor converts the actor through the first codec that claims it.
func (r *Registry) EncodeActor(a mesh.Actor) (*Element, error) {
	for _, c := range r.codecs {
		if e, ok := c.Encode(a); ok {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no codec registered for actor %T", a)
}

// DecodeActor converts an element back into an actor by its type tag.
func (r *Registry) DecodeActor(e *Element) (mesh.Actor, error) {
	c, ok := r.codecs[e.Type]
	if !ok {
		return nil, fmt.Errorf("no codec registered for actor element %q", e.Type)
	}
	return c.Decode(e)
}

// Element type tags of the built-in actor codecs.
const (
	ConvexPolygonKind = "convex-polygon-constraint"
	SurfaceAreaKind   = "surface-area-constraint"
)

// DefaultRegistry returns a registry holding the built-in constraint
// codecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ActorCodec{
		Kind: ConvexPolygonKind,
		Encode: func(a mesh.Actor) (*Element, bool) {
			c, ok := a.(*actor.ConvexPolygonConstraint)
			if !ok {
				return nil, false
			}
			return NewElement(ConvexPolygonKind).Add(FloatField("lam", c.Lam)), true
		},
		Decode: func(e *Element) (mesh.Actor, error) {
			lam, err := e.Float("lam")
			if err != nil {
				return nil, err
			}
			return actor.NewConvexPolygonConstraint(lam), nil
		},
	})
	r.Register(ActorCodec{
		Kind: SurfaceAreaKind,
		Encode: func(a mesh.Actor) (*Element, bool) {
			c, ok := a.(*actor.SurfaceAreaConstraint)
			if !ok {
				return nil, false
			}
			return NewElement(SurfaceAreaKind).Add(
				FloatField("lam", c.Lam),
				FloatField("target", c.Target)), true
		},
		Decode: func(e *Element) (mesh.Actor, error) {
			lam, err := e.Float("lam")
			if err != nil {
				return nil, err
			}
			target, err := e.Float("target")
			if err != nil {
				return nil, err
			}
			return actor.NewSurfaceAreaConstraint(lam, target), nil
		},
	})
	return r
}
