// Package space describes based vector spaces and the tensor spaces built
// from them: tensor products, symmetric and exterior powers, and diagonal and
// scalar-diagonal 2-tensor products.
//
// A Space is an immutable, validated shape descriptor. It carries everything
// the evaluator needs: the scalar field, the per-slot dimensions, the
// symmetry class of its compact storage and the list of factors it is built
// from. Spaces are compared structurally via Key.
package space

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/tensoralg/internal/storage"
)

// Field identifies the scalar field of a space.
type Field string

// Real is the default scalar field.
const Real Field = "R"

// Kind enumerates the space constructors.
type Kind int

// Space kinds.
const (
	Vector Kind = iota
	TensorProduct
	SymmetricPower
	ExteriorPower
	Diagonal2
	Scalar2
)

// String returns the descriptor name of the kind.
func (k Kind) String() string {
	switch k {
	case Vector:
		return "vector"
	case TensorProduct:
		return "tensor"
	case SymmetricPower:
		return "symmetric"
	case ExteriorPower:
		return "exterior"
	case Diagonal2:
		return "diagonal"
	case Scalar2:
		return "scalar"
	default:
		return "unknown"
	}
}

// Space is a based vector space or a tensor space derived from based vector spaces.
type Space struct {
	kind    Kind
	field   Field
	name    string
	dim     int
	dual    bool
	factors []*Space
	scheme  storage.Scheme
	flat    storage.Scheme
	key     string
}

// NewVector creates a based vector space of dimension dim over field.
func NewVector(name string, field Field, dim int) (*Space, error) {
	if dim < 0 {
		return nil, fmt.Errorf("%w: %s has dimension %d", ErrBadDimension, name, dim)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: vector space needs a name", ErrBadName)
	}
	if strings.ContainsAny(name, "(),*") {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	sc, err := storage.NewGeneral(dim)
	if err != nil {
		return nil, err
	}
	return &Space{
		kind:   Vector,
		field:  field,
		name:   name,
		dim:    dim,
		scheme: sc,
		flat:   sc,
		key:    fmt.Sprintf("%s:%s(%d)", field, name, dim),
	}, nil
}

// ScalarField returns the order-0 space of field: one component, no slots.
func ScalarField(field Field) *Space {
	sc, _ := storage.NewGeneral()
	return &Space{
		kind:   TensorProduct,
		field:  field,
		scheme: sc,
		flat:   sc,
		key:    fmt.Sprintf("%s:field", field),
	}
}

// NewTensorProduct creates the tensor product of factors, stored without symmetry.
func NewTensorProduct(factors ...*Space) (*Space, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("%w: tensor product needs at least one factor", ErrBadOrder)
	}
	field, err := commonField(factors)
	if err != nil {
		return nil, err
	}
	dims := make([]int, len(factors))
	for i, f := range factors {
		dims[i] = f.Dim()
	}
	sc, err := storage.NewGeneral(dims...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDimension, err)
	}
	return compose(TensorProduct, field, factors, sc)
}

// NewSymmetricPower creates the order-k symmetric power of base.
func NewSymmetricPower(base *Space, k int) (*Space, error) {
	sc, err := storage.NewSymmetric(base.Dim(), k)
	if err != nil {
		return nil, powerErr(err)
	}
	return compose(SymmetricPower, base.field, repeat(base, k), sc)
}

// NewExteriorPower creates the order-k exterior power of base.
func NewExteriorPower(base *Space, k int) (*Space, error) {
	sc, err := storage.NewAntisymmetric(base.Dim(), k)
	if err != nil {
		return nil, powerErr(err)
	}
	return compose(ExteriorPower, base.field, repeat(base, k), sc)
}

// NewAntisymmetric2 is the space of antisymmetric 2-tensors over base.
func NewAntisymmetric2(base *Space) (*Space, error) {
	return NewExteriorPower(base, 2)
}

// NewDiagonal2 creates the diagonal 2-tensor product of a and b.
func NewDiagonal2(a, b *Space) (*Space, error) {
	field, err := commonField([]*Space{a, b})
	if err != nil {
		return nil, err
	}
	sc, err := storage.NewDiagonal(a.Dim(), b.Dim())
	if err != nil {
		return nil, err
	}
	return compose(Diagonal2, field, []*Space{a, b}, sc)
}

// NewScalar2 creates the scalar-diagonal 2-tensor product of a and b: the
// one-dimensional space spanned by the identity-like tensor.
func NewScalar2(a, b *Space) (*Space, error) {
	field, err := commonField([]*Space{a, b})
	if err != nil {
		return nil, err
	}
	sc, err := storage.NewScalarDiagonal(a.Dim(), b.Dim())
	if err != nil {
		return nil, err
	}
	return compose(Scalar2, field, []*Space{a, b}, sc)
}

// powerErr maps a storage error from a power constructor to the space sentinel.
func powerErr(err error) error {
	if errors.Is(err, storage.ErrBadDimension) {
		return fmt.Errorf("%w: %w", ErrBadDimension, err)
	}
	return fmt.Errorf("%w: %w", ErrBadOrder, err)
}

func compose(kind Kind, field Field, factors []*Space, sc storage.Scheme) (*Space, error) {
	s := &Space{kind: kind, field: field, factors: factors, scheme: sc}

	parts := make([]string, len(factors))
	allVectors := true
	inners := make([]storage.Scheme, len(factors))
	for i, f := range factors {
		parts[i] = f.key
		inners[i] = f.flat
		allVectors = allVectors && f.kind == Vector
	}
	switch kind {
	case SymmetricPower, ExteriorPower:
		s.key = fmt.Sprintf("%s%d(%s)", kind, len(factors), factors[0].key)
	default:
		s.key = fmt.Sprintf("%s(%s)", kind, strings.Join(parts, ","))
	}

	if allVectors {
		s.flat = sc
		return s, nil
	}
	flat, err := storage.NewNested(sc, inners...)
	if err != nil {
		return nil, err
	}
	s.flat = flat
	return s, nil
}

func commonField(factors []*Space) (Field, error) {
	field := factors[0].field
	for _, f := range factors[1:] {
		if f.field != field {
			return "", fmt.Errorf("%w: %s vs %s", ErrFieldMismatch, field, f.field)
		}
	}
	return field, nil
}

func repeat(base *Space, k int) []*Space {
	out := make([]*Space, max(k, 0))
	for i := range out {
		out[i] = base
	}
	return out
}

// Kind returns the constructor kind.
func (s *Space) Kind() Kind { return s.kind }

// Field returns the scalar field.
func (s *Space) Field() Field { return s.field }

// Name returns the name of a vector space ("" for composite spaces).
func (s *Space) Name() string { return s.name }

// IsDual reports whether a vector space is a dual space.
func (s *Space) IsDual() bool { return s.dual }

// Dim returns the number of stored components.
func (s *Space) Dim() int { return s.scheme.Size() }

// Order returns the number of tensor-product factors: 1 for a vector space,
// 0 for the scalar field.
func (s *Space) Order() int {
	if s.kind == Vector {
		return 1
	}
	return len(s.factors)
}

// Factors returns the factor spaces (nil for a vector space).
func (s *Space) Factors() []*Space { return s.factors }

// Slots returns the spaces indexed by one label each when a tensor of this
// space is indexed in an expression: the factors of a tensor product, or the
// space itself for every other kind.
func (s *Space) Slots() []*Space {
	if s.kind == TensorProduct {
		return s.factors
	}
	return []*Space{s}
}

// Scheme returns the compact storage scheme over the factor dimensions.
func (s *Space) Scheme() storage.Scheme { return s.scheme }

// Flat returns the storage scheme over the leaf vector-space dimensions.
func (s *Space) Flat() storage.Scheme { return s.flat }

// LeafFactors returns the vector spaces this space is ultimately built from, in order.
func (s *Space) LeafFactors() []*Space {
	if s.kind == Vector {
		return []*Space{s}
	}
	var out []*Space
	for _, f := range s.factors {
		out = append(out, f.LeafFactors()...)
	}
	return out
}

// Key returns a structural identifier: equal spaces have equal keys.
func (s *Space) Key() string { return s.key }

// String implements fmt.Stringer.
func (s *Space) String() string { return s.key }

// Equal reports structural equality.
func (s *Space) Equal(other *Space) bool {
	return s != nil && other != nil && s.key == other.key
}

// IsDualOf reports whether other is the algebraic dual of s.
func (s *Space) IsDualOf(other *Space) bool {
	return s.Dual().Equal(other)
}

// Dual returns the dual space. The dual of a composite space is the same
// construction over the dual factors.
func (s *Space) Dual() *Space {
	if s.kind == Vector {
		d := *s
		d.dual = !s.dual
		if d.dual {
			d.key = s.key + "*"
		} else {
			d.key = strings.TrimSuffix(s.key, "*")
		}
		return &d
	}
	if len(s.factors) == 0 {
		return s
	}
	duals := make([]*Space, len(s.factors))
	for i, f := range s.factors {
		duals[i] = f.Dual()
	}
	// Rebuilding over factors of identical dimensions cannot fail.
	d, err := compose(s.kind, s.field, duals, s.scheme)
	if err != nil {
		panic(fmt.Sprintf("space: dual of %s: %v", s.key, err))
	}
	return d
}
