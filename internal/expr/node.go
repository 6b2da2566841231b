// Package expr builds and evaluates indexed tensor expressions.
//
// An expression is a tree of nodes built with the functions of this package
// (Index, Mul, Add, Bundle, Split, Embed, ...). Every builder validates its
// inputs and returns a *BuildError for malformed expressions, so a node that
// exists is well formed. Nodes are immutable and may be evaluated from many
// goroutines at once; leaf tensors are borrowed and must not be written while
// an evaluation is in flight.
//
// Each node has an ordered list of free slots. Evaluating a node at a value of
// its free multi-index returns one output component:
//
//	a, _ := expr.Index(ta, "i", "j")
//	b, _ := expr.Index(tb, "j", "k")
//	ab, _ := expr.Mul(a, b)           // free (i, k), summed j
//	out, _ := expr.Materialize(ab)    // tensor over the free slots
package expr

import (
	"iter"
	"slices"

	"github.com/born-ml/tensoralg/internal/contract"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// Node is an indexed expression.
type Node[T tensor.Scalar] interface {
	// Free returns the free slots in evaluation order.
	Free() []index.Slot

	// Summed returns every label contracted somewhere inside the node.
	Summed() []index.Label

	// eval returns the component at m, one in-range value per free slot.
	// Implementations must not retain or modify m.
	eval(m []int) T

	// leaves yields every leaf tensor; it returns false if yield stopped.
	leaves(yield func(*tensor.Tensor[T]) bool) bool
}

// Leaves returns the leaf tensors of n, in tree order.
func Leaves[T tensor.Scalar](n Node[T]) iter.Seq[*tensor.Tensor[T]] {
	return func(yield func(*tensor.Tensor[T]) bool) {
		n.leaves(yield)
	}
}

// Field returns the scalar field of n's leaves.
func Field[T tensor.Scalar](n Node[T]) space.Field {
	for t := range Leaves(n) {
		return t.Space().Field()
	}
	return space.Real
}

// leafOperand adapts a tensor to contract.Operand: one value per slot of its
// space.
type leafOperand[T tensor.Scalar] struct {
	t      *tensor.Tensor[T]
	labels []index.Label
	data   []T
	slots  bool
}

func (o *leafOperand[T]) Labels() []index.Label { return o.labels }

func (o *leafOperand[T]) At(m []int) T {
	if !o.slots {
		return o.data[m[0]]
	}
	return o.data[o.t.Space().Scheme().ToStorage(m)]
}

// nodeOperand adapts a node to contract.Operand.
type nodeOperand[T tensor.Scalar] struct {
	n      Node[T]
	labels []index.Label
}

func (o nodeOperand[T]) Labels() []index.Label { return o.labels }

func (o nodeOperand[T]) At(m []int) T { return o.n.eval(m) }

// leafNode is an indexed tensor t(i, j, ...), possibly with traces.
type leafNode[T tensor.Scalar] struct {
	t      *tensor.Tensor[T]
	free   []index.Slot
	summed []index.Label
	sum    *contract.Summation[T]
}

// Index labels the slots of t. A tensor-product space takes one label per
// factor; every other space (including symmetry-reduced ones) takes a single
// label ranging over its stored components. A label repeated within t is
// summed, which requires the two slots to be dual to each other.
func Index[T tensor.Scalar](t *tensor.Tensor[T], labels ...index.Label) (Node[T], error) {
	sp := t.Space()
	spaces := sp.Slots()
	if len(labels) != len(spaces) {
		return nil, buildErr("index", ErrArity, "%s has %d slots, got %d labels", sp, len(spaces), len(labels))
	}
	slots := make([]index.Slot, len(labels))
	for i, l := range labels {
		slots[i] = index.Slot{Label: l, Space: spaces[i]}
	}
	p, err := index.Classify(slots)
	if err != nil {
		return nil, &BuildError{Op: "index", Details: sp.String(), Err: err}
	}
	op := &leafOperand[T]{
		t:      t,
		labels: slices.Clone(labels),
		data:   t.Data(),
		slots:  sp.Kind() == space.TensorProduct,
	}
	sum, err := contract.NewUnary[T](p, op)
	if err != nil {
		return nil, &BuildError{Op: "index", Details: sp.String(), Err: err}
	}
	return &leafNode[T]{t: t, free: p.Free, summed: p.SummedLabels(), sum: sum}, nil
}

func (n *leafNode[T]) Free() []index.Slot    { return n.free }
func (n *leafNode[T]) Summed() []index.Label { return n.summed }
func (n *leafNode[T]) eval(m []int) T        { return n.sum.At(m) }

func (n *leafNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return yield(n.t)
}
