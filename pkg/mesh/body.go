package mesh

// MinBodySurfaces is the minimum number of surfaces bounding a body. No
// editing operation produces fewer; full closure is a geometric property
// left to the caller.
const MinBodySurfaces = 3

// Body is a closed volume bounded by a set of surfaces.
type Body struct {
	identity
	btype      *BodyType
	surfaces   []*Surface
	structures []*Structure
}

func (b *Body) Kind() ObjectKind { return KindBody }

// Type returns the descriptor the body was constructed from.
func (b *Body) Type() *BodyType { return b.btype }

// Parents returns the bounding surfaces.
func (b *Body) Parents() []Object {
	objs := make([]Object, len(b.surfaces))
	for i, s := range b.surfaces {
		objs[i] = s
	}
	return objs
}

// Children returns the structures aggregating the body.
func (b *Body) Children() []Object {
	objs := make([]Object, len(b.structures))
	for i, st := range b.structures {
		objs[i] = st
	}
	return objs
}

// Validate checks the minimum surface count and surface links.
func (b *Body) Validate() error {
	if len(b.surfaces) < MinBodySurfaces {
		return opErr("validate", ErrDegeneracy,
			"body has %d surfaces, need at least %d", len(b.surfaces), MinBodySurfaces)
	}
	for _, s := range b.surfaces {
		if s == nil {
			return opErr("validate", ErrStructural, "body has a nil surface")
		}
		if !s.In(b) {
			return opErr("validate", ErrStructural, "surface %d does not link back to body", s.id)
		}
	}
	return nil
}

// Surfaces returns the bounding surfaces.
func (b *Body) Surfaces() []*Surface { return b.surfaces }

// Structures returns the structures aggregating the body.
func (b *Body) Structures() []*Structure { return b.structures }

// In reports whether the body belongs to the given structure.
func (b *Body) In(st *Structure) bool {
	for _, bs := range b.structures {
		if bs == st {
			return true
		}
	}
	return false
}

// Vertices returns the distinct vertices of all bounding surfaces, in
// encounter order.
func (b *Body) Vertices() []*Vertex {
	var verts []*Vertex
	seen := make(map[*Vertex]bool)
	for _, s := range b.surfaces {
		for _, v := range s.vertices {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	return verts
}

// Area returns the total area of the bounding surfaces.
func (b *Body) Area() float64 {
	var area float64
	for _, s := range b.surfaces {
		area += s.Area()
	}
	return area
}

// Volume returns the enclosed volume, computed by the divergence theorem
// over the outward-oriented fan triangles of every bounding surface.
func (b *Body) Volume() float64 {
	var vol float64
	for _, s := range b.surfaces {
		sign := 1.0
		if s.b2 == b {
			sign = -1.0
		}
		c := s.Centroid()
		for i := range s.vertices {
			p1 := s.Vertex(i).Position()
			p2 := s.Vertex(i + 1).Position()
			vol += sign * c.Dot(p1.Cross(p2)) / 6.0
		}
	}
	if vol < 0 {
		vol = -vol
	}
	return vol
}

// addSurface links a surface into the body and claims a free side of it.
func (b *Body) addSurface(s *Surface) error {
	if err := s.claimSide(b); err != nil {
		return err
	}
	b.surfaces = append(b.surfaces, s)
	return nil
}

// removeSurface drops the surface from the body and releases its side.
func (b *Body) removeSurface(s *Surface) {
	for i, bs := range b.surfaces {
		if bs == s {
			b.surfaces = append(b.surfaces[:i], b.surfaces[i+1:]...)
			break
		}
	}
	s.releaseBody(b)
}
