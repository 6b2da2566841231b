package expr

import (
	"slices"

	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// sumNode is left + right or left - right.
type sumNode[T tensor.Scalar] struct {
	left, right Node[T]
	perm        []int // right position of each left free slot
	sub         bool
	summed      []index.Label
}

// Add returns left + right. Both operands must have the same set of free
// labels over equal spaces; the result keeps left's free order.
func Add[T tensor.Scalar](left, right Node[T]) (Node[T], error) {
	return add("add", left, right, false)
}

// Sub returns left - right under the same rules as Add.
func Sub[T tensor.Scalar](left, right Node[T]) (Node[T], error) {
	return add("sub", left, right, true)
}

func add[T tensor.Scalar](op string, left, right Node[T], sub bool) (Node[T], error) {
	lf, rf := left.Free(), right.Free()
	for _, f := range [][]index.Slot{lf, rf} {
		if err := index.CheckDistinct(f); err != nil {
			return nil, &BuildError{Op: op, Details: err.Error(), Err: ErrLabelCollision}
		}
	}
	if !index.SameSet(lf, rf) {
		return nil, buildErr(op, ErrFreeMismatch, "%v vs %v", lf, rf)
	}
	perm, err := index.Permutation(rf, index.Labels(lf))
	if err != nil {
		return nil, &BuildError{Op: op, Details: err.Error(), Err: ErrFreeMismatch}
	}
	return &sumNode[T]{
		left:   left,
		right:  right,
		perm:   perm,
		sub:    sub,
		summed: unionLabels(left.Summed(), right.Summed()),
	}, nil
}

func (n *sumNode[T]) Free() []index.Slot    { return n.left.Free() }
func (n *sumNode[T]) Summed() []index.Label { return n.summed }

func (n *sumNode[T]) eval(m []int) T {
	buf := multiindex.GetBuffer(len(m))
	defer multiindex.PutBuffer(buf)
	rm := *buf
	for i, p := range n.perm {
		rm[p] = m[i]
	}
	if n.sub {
		return n.left.eval(m) - n.right.eval(rm)
	}
	return n.left.eval(m) + n.right.eval(rm)
}

func (n *sumNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return n.left.leaves(yield) && n.right.leaves(yield)
}

type scaleOp int

const (
	opScale scaleOp = iota
	opDiv
	opNegate
)

// scaleNode multiplies, divides or negates every component of its operand.
type scaleNode[T tensor.Scalar] struct {
	n  Node[T]
	s  T
	op scaleOp
}

// Scale returns s * n.
func Scale[T tensor.Scalar](n Node[T], s T) Node[T] {
	return &scaleNode[T]{n: n, s: s, op: opScale}
}

// Div returns n / s. A zero divisor is rejected with ErrDivisionByZero.
func Div[T tensor.Scalar](n Node[T], s T) (Node[T], error) {
	if s == 0 {
		return nil, buildErr("div", ErrDivisionByZero, "divisor is zero")
	}
	return &scaleNode[T]{n: n, s: s, op: opDiv}, nil
}

// Negate returns -n.
func Negate[T tensor.Scalar](n Node[T]) Node[T] {
	return &scaleNode[T]{n: n, op: opNegate}
}

func (n *scaleNode[T]) Free() []index.Slot    { return n.n.Free() }
func (n *scaleNode[T]) Summed() []index.Label { return n.n.Summed() }

func (n *scaleNode[T]) eval(m []int) T {
	v := n.n.eval(m)
	switch n.op {
	case opDiv:
		return v / n.s
	case opNegate:
		return -v
	default:
		return n.s * v
	}
}

func (n *scaleNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return n.n.leaves(yield)
}

func unionLabels(a, b []index.Label) []index.Label {
	out := make([]index.Label, 0, len(a)+len(b))
	seen := make(map[index.Label]bool, len(a)+len(b))
	for _, l := range slices.Concat(a, b) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
