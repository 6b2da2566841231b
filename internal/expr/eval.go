package expr

import (
	"fmt"
	"slices"

	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/parallel"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

type options struct {
	parallel parallel.Config
}

// Option configures Materialize, MaterializeAs and Assign.
type Option func(*options)

// WithParallel sets the parallel config used to compute output components.
// Each component is computed independently, so results do not depend on it.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) { o.parallel = cfg }
}

func buildOptions(opts []Option) options {
	o := options{parallel: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FreeDims returns the dimension of each free slot of n.
func FreeDims[T tensor.Scalar](n Node[T]) multiindex.Dims {
	free := n.Free()
	dims := make(multiindex.Dims, len(free))
	for i, s := range free {
		dims[i] = s.Space.Dim()
	}
	return dims
}

// Evaluate returns the component of n at vals, one value per free slot.
// It wraps multiindex.ErrArity or multiindex.ErrOutOfRange for bad vals.
func Evaluate[T tensor.Scalar](n Node[T], vals ...int) (T, error) {
	if err := FreeDims(n).Check(vals); err != nil {
		return 0, fmt.Errorf("expr: evaluate: %w", err)
	}
	return n.eval(slices.Clone(vals)), nil
}

// EvaluateUnchecked is Evaluate without validation. The caller must pass one
// in-range value per free slot.
func EvaluateUnchecked[T tensor.Scalar](n Node[T], vals ...int) T {
	return n.eval(vals)
}

// Materialize computes every component of n into a new tensor whose slots are
// n's free slots in order. See MaterializeAs for the result space.
func Materialize[T tensor.Scalar](n Node[T], opts ...Option) (*tensor.Tensor[T], error) {
	return MaterializeAs(n, index.Labels(n.Free()), opts...)
}

// MaterializeAs computes every component of n into a new tensor whose slots
// are n's free slots reordered to labels. The result space is the scalar field
// for no labels, the slot's own space for a single slot that is not a tensor
// product, and the tensor product of the slot spaces otherwise.
func MaterializeAs[T tensor.Scalar](n Node[T], labels []index.Label, opts ...Option) (*tensor.Tensor[T], error) {
	free := n.Free()
	if len(labels) != len(free) {
		return nil, buildErr("materialize", ErrFreeMismatch, "%v vs free %v", labels, free)
	}
	perm, err := index.Permutation(free, labels)
	if err != nil {
		return nil, &BuildError{Op: "materialize", Details: err.Error(), Err: ErrFreeMismatch}
	}
	slots := make([]index.Slot, len(labels))
	for i, p := range perm {
		slots[i] = free[p]
	}
	if err := index.CheckDistinct(slots); err != nil {
		return nil, &BuildError{Op: "materialize", Details: err.Error(), Err: ErrFreeMismatch}
	}

	sp, err := resultSpace(slots, Field(n))
	if err != nil {
		return nil, err
	}
	out := tensor.Zeros[T](sp)
	fill(out, n, perm, buildOptions(opts))
	return out, nil
}

// Assign evaluates rhs into target, whose slots are labelled by labels. The
// label sets of both sides must agree (ErrFreeMismatch). If rhs reads
// target's storage anywhere, Assign returns ErrAliasing and leaves target
// unmodified.
func Assign[T tensor.Scalar](target *tensor.Tensor[T], labels []index.Label, rhs Node[T], opts ...Option) error {
	const op = "assign"
	spaces := target.Space().Slots()
	if len(labels) != len(spaces) {
		return buildErr(op, ErrArity, "%s has %d slots, got %d labels", target.Space(), len(spaces), len(labels))
	}
	slots := make([]index.Slot, len(labels))
	for i, l := range labels {
		slots[i] = index.Slot{Label: l, Space: spaces[i]}
	}
	if err := index.CheckDistinct(slots); err != nil {
		return &BuildError{Op: op, Details: err.Error(), Err: ErrLabelCollision}
	}
	if !index.SameSet(slots, rhs.Free()) {
		return buildErr(op, ErrFreeMismatch, "target %v, right-hand side %v", slots, rhs.Free())
	}
	for leaf := range Leaves(rhs) {
		if leaf.SameStorage(target) {
			return fmt.Errorf("%w: %s", ErrAliasing, target.Space())
		}
	}

	perm, err := index.Permutation(rhs.Free(), labels)
	if err != nil {
		return &BuildError{Op: op, Details: err.Error(), Err: ErrFreeMismatch}
	}
	fill(target, rhs, perm, buildOptions(opts))
	return nil
}

// fill writes every stored component of out: slot i of out reads free slot
// perm[i] of n.
func fill[T tensor.Scalar](out *tensor.Tensor[T], n Node[T], perm []int, o options) {
	data := out.Data()
	sp := out.Space()
	product := sp.Kind() == space.TensorProduct
	scheme := sp.Scheme()

	parallel.ForChunks(len(data), func(start, end int) {
		mo := make([]int, len(perm))
		m := make([]int, len(perm))
		for c := start; c < end; c++ {
			if product {
				scheme.ToMultiIndex(c, mo)
			} else {
				mo[0] = c
			}
			for i, p := range perm {
				m[p] = mo[i]
			}
			data[c] = n.eval(m)
		}
	}, o.parallel)
}

func resultSpace(slots []index.Slot, field space.Field) (*space.Space, error) {
	switch {
	case len(slots) == 0:
		return space.ScalarField(field), nil
	case len(slots) == 1 && slots[0].Space.Kind() != space.TensorProduct:
		return slots[0].Space, nil
	}
	spaces := make([]*space.Space, len(slots))
	for i, s := range slots {
		spaces[i] = s.Space
	}
	return space.NewTensorProduct(spaces...)
}
