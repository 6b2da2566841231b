package space

import "fmt"

// Descriptor is the serializable form of a Space, used by job files and the
// tensor file header.
//
// Kind is one of "vector", "tensor", "symmetric", "exterior", "diagonal",
// "scalar" or "field". Ref names a space defined elsewhere (config files);
// Dual on a ref or a vector selects the dual space.
type Descriptor struct {
	Kind    string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Ref     string       `json:"ref,omitempty" yaml:"ref,omitempty"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Field   string       `json:"field,omitempty" yaml:"field,omitempty"`
	Dim     int          `json:"dim,omitempty" yaml:"dim,omitempty"`
	Dual    bool         `json:"dual,omitempty" yaml:"dual,omitempty"`
	Order   int          `json:"order,omitempty" yaml:"order,omitempty"`
	Factors []Descriptor `json:"factors,omitempty" yaml:"factors,omitempty"`
}

// Describe returns the self-contained descriptor of s (no refs).
func (s *Space) Describe() Descriptor {
	switch {
	case s.kind == Vector:
		return Descriptor{Kind: "vector", Name: s.name, Field: string(s.field), Dim: s.dim, Dual: s.dual}
	case len(s.factors) == 0:
		return Descriptor{Kind: "field", Field: string(s.field)}
	case s.kind == SymmetricPower || s.kind == ExteriorPower:
		return Descriptor{Kind: s.kind.String(), Order: len(s.factors), Factors: []Descriptor{s.factors[0].Describe()}}
	}
	d := Descriptor{Kind: s.kind.String(), Factors: make([]Descriptor, len(s.factors))}
	for i, f := range s.factors {
		d.Factors[i] = f.Describe()
	}
	return d
}

// Build constructs the Space described by d. refs resolves Ref entries and
// may be nil when d is self-contained.
func (d Descriptor) Build(refs map[string]*Space) (*Space, error) {
	if d.Ref != "" {
		s, ok := refs[d.Ref]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRef, d.Ref)
		}
		if d.Dual {
			return s.Dual(), nil
		}
		return s, nil
	}

	field := Field(d.Field)
	if field == "" {
		field = Real
	}

	switch d.Kind {
	case "vector", "":
		v, err := NewVector(d.Name, field, d.Dim)
		if err != nil {
			return nil, err
		}
		if d.Dual {
			return v.Dual(), nil
		}
		return v, nil
	case "field":
		return ScalarField(field), nil
	}

	factors := make([]*Space, len(d.Factors))
	for i, fd := range d.Factors {
		f, err := fd.Build(refs)
		if err != nil {
			return nil, fmt.Errorf("factor %d of %s: %w", i, d.Kind, err)
		}
		factors[i] = f
	}

	switch d.Kind {
	case "tensor":
		return NewTensorProduct(factors...)
	case "symmetric", "exterior":
		if len(factors) != 1 {
			return nil, fmt.Errorf("%w: %s power takes one base space, got %d", ErrBadOrder, d.Kind, len(factors))
		}
		if d.Kind == "symmetric" {
			return NewSymmetricPower(factors[0], d.Order)
		}
		return NewExteriorPower(factors[0], d.Order)
	case "diagonal", "scalar":
		if len(factors) != 2 {
			return nil, fmt.Errorf("%w: %s 2-tensor takes two factors, got %d", ErrBadOrder, d.Kind, len(factors))
		}
		if d.Kind == "diagonal" {
			return NewDiagonal2(factors[0], factors[1])
		}
		return NewScalar2(factors[0], factors[1])
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
}
