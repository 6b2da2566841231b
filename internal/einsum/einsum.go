// Package einsum is a textual front end for indexed expressions.
//
// An equation names the slots of each operand with single-letter labels,
// operands separated by "," and the output after "->":
//
//	"ij,jk->ik"   matrix product
//	"i,i->"       dot product
//	"ii"          trace (implicit output)
//	"i,j->ij"     outer product
//
// Without "->" the output is every label occurring exactly once, in order of
// first occurrence. A label occurring twice is summed, which requires the two
// slots to be dual spaces. A label that occurs once must appear in the output:
// summing a single free slot is not a tensor operation.
package einsum

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/born-ml/tensoralg/internal/expr"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/tensor"
)

var (
	// ErrSyntax is returned for malformed equations.
	ErrSyntax = errors.New("einsum: syntax error")

	// ErrOperandCount is returned when the number of tensors differs from the
	// number of operands in the equation.
	ErrOperandCount = errors.New("einsum: wrong number of operands")

	// ErrOutputMismatch is returned when the output labels are not exactly
	// the free labels of the product.
	ErrOutputMismatch = errors.New("einsum: output does not match free labels")
)

// Equation is a parsed einsum equation.
type Equation struct {
	Inputs   [][]index.Label
	Output   []index.Label
	Explicit bool // Output was given after "->"
}

// Parse parses an equation. Spaces are ignored.
func Parse(equation string) (*Equation, error) {
	eq := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, equation)

	parts := strings.Split(eq, "->")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q has more than one \"->\"", ErrSyntax, equation)
	}
	if parts[0] == "" {
		return nil, fmt.Errorf("%w: %q has no operands", ErrSyntax, equation)
	}

	out := &Equation{}
	for i, op := range strings.Split(parts[0], ",") {
		labels, err := parseLabels(op)
		if err != nil {
			return nil, fmt.Errorf("%w (operand %d of %q)", err, i, equation)
		}
		out.Inputs = append(out.Inputs, labels)
	}

	counts := make(map[index.Label]int)
	var order []index.Label
	for _, labels := range out.Inputs {
		for _, l := range labels {
			if counts[l] == 0 {
				order = append(order, l)
			}
			counts[l]++
		}
	}

	if len(parts) == 1 {
		for _, l := range order {
			if counts[l] == 1 {
				out.Output = append(out.Output, l)
			}
		}
		return out, nil
	}

	out.Explicit = true
	labels, err := parseLabels(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w (output of %q)", err, equation)
	}
	seen := make(map[index.Label]bool, len(labels))
	for _, l := range labels {
		if counts[l] == 0 {
			return nil, fmt.Errorf("%w: output label %q of %q is not used by any operand", ErrSyntax, l, equation)
		}
		if seen[l] {
			return nil, fmt.Errorf("%w: output label %q of %q repeated", ErrSyntax, l, equation)
		}
		seen[l] = true
	}
	out.Output = labels
	return out, nil
}

func parseLabels(s string) ([]index.Label, error) {
	labels := make([]index.Label, 0, len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: invalid label %q", ErrSyntax, r)
		}
		labels = append(labels, index.Label(string(r)))
	}
	return labels, nil
}

// String renders the equation in explicit form.
func (e *Equation) String() string {
	var b strings.Builder
	for i, labels := range e.Inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		for _, l := range labels {
			b.WriteString(string(l))
		}
	}
	b.WriteString("->")
	for _, l := range e.Output {
		b.WriteString(string(l))
	}
	return b.String()
}

// Build indexes each operand with its labels and multiplies them left to
// right. It returns the expression and the output label order.
func Build[T tensor.Scalar](e *Equation, operands ...*tensor.Tensor[T]) (expr.Node[T], []index.Label, error) {
	if len(operands) != len(e.Inputs) {
		return nil, nil, fmt.Errorf("%w: %s has %d operands, got %d tensors",
			ErrOperandCount, e, len(e.Inputs), len(operands))
	}

	var node expr.Node[T]
	for i, t := range operands {
		leaf, err := expr.Index(t, e.Inputs[i]...)
		if err != nil {
			return nil, nil, fmt.Errorf("einsum: operand %d: %w", i, err)
		}
		if node == nil {
			node = leaf
			continue
		}
		if node, err = expr.Mul(node, leaf); err != nil {
			return nil, nil, fmt.Errorf("einsum: operand %d: %w", i, err)
		}
	}

	free := index.Labels(node.Free())
	if !sameLabels(free, e.Output) {
		return nil, nil, fmt.Errorf("%w: %s leaves %v free", ErrOutputMismatch, e, free)
	}
	return node, e.Output, nil
}

// Evaluate parses equation, builds it over operands and materializes the
// result in output order.
func Evaluate[T tensor.Scalar](equation string, operands []*tensor.Tensor[T], opts ...expr.Option) (*tensor.Tensor[T], error) {
	e, err := Parse(equation)
	if err != nil {
		return nil, err
	}
	node, out, err := Build(e, operands...)
	if err != nil {
		return nil, err
	}
	return expr.MaterializeAs(node, out, opts...)
}

func sameLabels(a, b []index.Label) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[index.Label]bool, len(a))
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		if !set[l] {
			return false
		}
	}
	return true
}
