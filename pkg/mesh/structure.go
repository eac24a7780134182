package mesh

// Structure is a recursive aggregate of bodies and other structures. It
// has no geometry of its own.
type Structure struct {
	identity
	parents  []Object // *Body or *Structure
	children []*Structure
}

// NewStructure creates an unregistered structure aggregating the given
// bodies and structures. Parents of any other kind are rejected.
func NewStructure(parents ...Object) (*Structure, error) {
	st := &Structure{identity: unstored()}
	for _, p := range parents {
		if err := st.AddParent(p); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (st *Structure) Kind() ObjectKind { return KindStructure }

// Parents returns the aggregated bodies and structures.
func (st *Structure) Parents() []Object {
	return append([]Object(nil), st.parents...)
}

// Children returns the structures aggregating this one.
func (st *Structure) Children() []Object {
	objs := make([]Object, len(st.children))
	for i, c := range st.children {
		objs[i] = c
	}
	return objs
}

// Validate checks that every parent is a body or structure.
func (st *Structure) Validate() error {
	for _, p := range st.parents {
		switch p.Kind() {
		case KindBody, KindStructure:
		default:
			return opErr("validate", ErrStructural,
				"structure aggregates a %s", p.Kind())
		}
	}
	return nil
}

// AddParent aggregates a body or structure into this structure, linking
// both directions.
func (st *Structure) AddParent(p Object) error {
	switch o := p.(type) {
	case *Body:
		o.structures = append(o.structures, st)
	case *Structure:
		o.children = append(o.children, st)
	default:
		return opErr("structure", ErrStructural, "cannot aggregate a %s", p.Kind())
	}
	st.parents = append(st.parents, p)
	return nil
}
