package meshio

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Element is one node of a generic structured tree: a type tag, an
// optional field name within its parent, an optional scalar value, and
// ordered children.
type Element struct {
	Type     string     `json:"type"`
	Name     string     `json:"name,omitempty"`
	Value    string     `json:"value,omitempty"`
	Children []*Element `json:"children,omitempty"`
}

// NewElement creates a childless element of the given type.
func NewElement(typ string) *Element {
	return &Element{Type: typ}
}

// Add appends children and returns the element for chaining.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Named returns the first child carrying the field name, or nil.
func (e *Element) Named(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Typed returns all children of the given type, in order.
func (e *Element) Typed(typ string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// FloatField builds a named scalar child holding a float.
func FloatField(name string, v float64) *Element {
	return &Element{Type: "float", Name: name, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// IntField builds a named scalar child holding an integer.
func IntField(name string, v int) *Element {
	return &Element{Type: "int", Name: name, Value: strconv.Itoa(v)}
}

// StringField builds a named scalar child holding a string.
func StringField(name, v string) *Element {
	return &Element{Type: "string", Name: name, Value: v}
}

// IntsField builds a named scalar child holding a list of integers.
func IntsField(name string, vs []int) *Element {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return &Element{Type: "ints", Name: name, Value: strings.Join(parts, " ")}
}

// Float reads the named float child.
func (e *Element) Float(name string) (float64, error) {
	c := e.Named(name)
	if c == nil {
		return 0, fmt.Errorf("element %q: no field %q", e.Type, name)
	}
	v, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("element %q: field %q: %w", e.Type, name, err)
	}
	return v, nil
}

// Int reads the named integer child.
func (e *Element) Int(name string) (int, error) {
	c := e.Named(name)
	if c == nil {
		return 0, fmt.Errorf("element %q: no field %q", e.Type, name)
	}
	v, err := strconv.Atoi(c.Value)
	if err != nil {
		return 0, fmt.Errorf("element %q: field %q: %w", e.Type, name, err)
	}
	return v, nil
}

// Text reads the named string child.
func (e *Element) Text(name string) (string, error) {
	c := e.Named(name)
	if c == nil {
		return "", fmt.Errorf("element %q: no field %q", e.Type, name)
	}
	return c.Value, nil
}

// Ints reads the named integer-list child. A missing field reads as an
// empty list.
func (e *Element) Ints(name string) ([]int, error) {
	c := e.Named(name)
	if c == nil {
		return nil, nil
	}
	fields := strings.Fields(c.Value)
	vs := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("element %q: field %q: %w", e.Type, name, err)
		}
		vs[i] = v
	}
	return vs, nil
}

// Encode writes the tree as JSON.
func (e *Element) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// Decode reads a JSON element tree.
func Decode(r io.Reader) (*Element, error) {
	var e Element
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decoding element tree: %w", err)
	}
	return &e, nil
}
