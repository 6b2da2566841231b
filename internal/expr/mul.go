package expr

import (
	"fmt"
	"slices"

	"github.com/born-ml/tensoralg/internal/contract"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// mulNode is the product of two operands summed over their shared labels.
type mulNode[T tensor.Scalar] struct {
	left, right Node[T]
	free        []index.Slot
	summed      []index.Label
	sum         *contract.Summation[T]
}

// Mul returns left * right. A free label of left that is also free in right
// is summed, which requires the two slots to be dual; the remaining labels are
// free in first-occurrence order. With no shared labels Mul is the outer
// product, with all labels shared it is a full contraction.
//
// A label summed inside one operand may not appear anywhere in the other.
func Mul[T tensor.Scalar](left, right Node[T]) (Node[T], error) {
	lf, rf := left.Free(), right.Free()
	if err := checkInnerLabels(left, right); err != nil {
		return nil, err
	}
	if err := checkInnerLabels(right, left); err != nil {
		return nil, err
	}

	slots := append(slices.Clone(lf), rf...)
	p, err := index.Classify(slots)
	if err != nil {
		return nil, &BuildError{Op: "mul", Details: fmt.Sprintf("%v * %v", lf, rf), Err: err}
	}
	sum, err := contract.NewBinary[T](p,
		nodeOperand[T]{n: left, labels: index.Labels(lf)},
		nodeOperand[T]{n: right, labels: index.Labels(rf)},
	)
	if err != nil {
		return nil, &BuildError{Op: "mul", Details: fmt.Sprintf("%v * %v", lf, rf), Err: err}
	}

	summed := unionLabels(left.Summed(), right.Summed())
	summed = append(summed, p.SummedLabels()...)
	return &mulNode[T]{left: left, right: right, free: p.Free, summed: summed, sum: sum}, nil
}

// checkInnerLabels rejects labels summed inside a that are used by b.
func checkInnerLabels[T tensor.Scalar](a, b Node[T]) error {
	for _, l := range a.Summed() {
		if index.Find(b.Free(), l) >= 0 || slices.Contains(b.Summed(), l) {
			return buildErr("mul", ErrLabelCollision, "label %q is summed inside one operand and used by the other", l)
		}
	}
	return nil
}

func (n *mulNode[T]) Free() []index.Slot    { return n.free }
func (n *mulNode[T]) Summed() []index.Label { return n.summed }
func (n *mulNode[T]) eval(m []int) T        { return n.sum.At(m) }

func (n *mulNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return n.left.leaves(yield) && n.right.leaves(yield)
}
