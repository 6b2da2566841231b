package tensor

import (
	"fmt"

	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/storage"
)

// Tensor is an element of a Space, stored compactly: one scalar per storage
// index of the space's symmetry class.
//
// Tensors are the leaves of indexed expressions. Expressions borrow them:
// the caller keeps a tensor alive and unmodified while an expression that
// reads it is being evaluated. Concurrent evaluation of expressions that
// read the same tensor is safe; writing a tensor while another goroutine
// reads it is a data race.
type Tensor[T Scalar] struct {
	space *space.Space
	data  []T
}

// Zeros creates the zero tensor of s.
func Zeros[T Scalar](s *space.Space) *Tensor[T] {
	return &Tensor[T]{space: s, data: make([]T, s.Dim())}
}

// Full creates a tensor of s whose stored components all equal value.
func Full[T Scalar](s *space.Space, value T) *Tensor[T] {
	t := Zeros[T](s)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// FromSlice creates a tensor of s from compact storage.
// The slice is copied into the tensor's memory.
func FromSlice[T Scalar](s *space.Space, data []T) (*Tensor[T], error) {
	if len(data) != s.Dim() {
		return nil, fmt.Errorf("%w: space %s stores %d components, got %d", ErrSizeMismatch, s, s.Dim(), len(data))
	}
	t := Zeros[T](s)
	copy(t.data, data)
	return t, nil
}

// Wrap creates a tensor of s that uses data as its storage without copying.
func Wrap[T Scalar](s *space.Space, data []T) (*Tensor[T], error) {
	if len(data) != s.Dim() {
		return nil, fmt.Errorf("%w: space %s stores %d components, got %d", ErrSizeMismatch, s, s.Dim(), len(data))
	}
	return &Tensor[T]{space: s, data: data}, nil
}

// Space returns the tensor's space.
func (t *Tensor[T]) Space() *space.Space {
	return t.space
}

// Len returns the number of stored components.
func (t *Tensor[T]) Len() int {
	return len(t.data)
}

// Data returns the compact storage.
// The slice directly accesses the underlying memory (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// Component returns stored component c.
func (t *Tensor[T]) Component(c int) (T, error) {
	if c < 0 || c >= len(t.data) {
		return 0, fmt.Errorf("tensor: component %d of %d: %w", c, len(t.data), multiindex.ErrOutOfRange)
	}
	return t.data[c], nil
}

// ComponentUnchecked returns stored component c without a bound check.
func (t *Tensor[T]) ComponentUnchecked(c int) T {
	return t.data[c]
}

// SetComponent writes stored component c.
func (t *Tensor[T]) SetComponent(c int, v T) error {
	if c < 0 || c >= len(t.data) {
		return fmt.Errorf("tensor: component %d of %d: %w", c, len(t.data), multiindex.ErrOutOfRange)
	}
	t.data[c] = v
	return nil
}

// SetComponentUnchecked writes stored component c without a bound check.
func (t *Tensor[T]) SetComponentUnchecked(c int, v T) {
	t.data[c] = v
}

// At returns the logical component at a multi-index over the leaf vector
// factors of the space. Procedural zeros read as 0; other components are the
// stored value times the scale factor.
//
// Example:
//
//	sym := tensor.Zeros[float64](sym2V) // symmetric 3x3
//	v, _ := sym.At(0, 2)                // == sym.At(2, 0)
func (t *Tensor[T]) At(indices ...int) (T, error) {
	flat := t.space.Flat()
	if err := flat.Dims().Check(indices); err != nil {
		return 0, fmt.Errorf("tensor: %s: %w", t.space, err)
	}
	if flat.IsProceduralZero(indices) {
		return 0, nil
	}
	return T(flat.ScaleFactor(indices)) * t.data[flat.ToStorage(indices)], nil
}

// ToGeneral expands the tensor into the general tensor product of its leaf
// factors, row-major with the first factor most significant.
func (t *Tensor[T]) ToGeneral() (*Tensor[T], error) {
	leaves := t.space.LeafFactors()
	var target *space.Space
	if len(leaves) == 0 {
		target = space.ScalarField(t.space.Field())
	} else {
		var err error
		if target, err = space.NewTensorProduct(leaves...); err != nil {
			return nil, err
		}
	}
	out := Zeros[T](target)
	storage.Expand(t.space.Flat(), t.ComponentUnchecked, out.data)
	return out, nil
}

// Clone returns a deep copy.
func (t *Tensor[T]) Clone() *Tensor[T] {
	c := Zeros[T](t.space)
	copy(c.data, t.data)
	return c
}

// SameStorage reports whether t and other share underlying memory, i.e.
// whether writing one can change the other.
func (t *Tensor[T]) SameStorage(other *Tensor[T]) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || len(t.data) == 0 || len(other.data) == 0 {
		return false
	}
	a0, a1 := &t.data[0], &t.data[len(t.data)-1]
	b0, b1 := &other.data[0], &other.data[len(other.data)-1]
	return overlaps(a0, a1, b0, b1)
}

// String renders the space and the stored components.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("%s%v", t.space, t.data)
}
