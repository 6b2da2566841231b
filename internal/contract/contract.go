// Package contract implements the summation evaluator: given operands whose
// axes are named by labels and a free/summed partition of those labels, it
// computes one output component at a time by summing over every combination
// of the summed labels.
//
// The concatenated index space is Total = Free ++ Summed. Each operand reads
// its own axes out of Total through a label-based gather map, so the order in
// which labels appear in an expression is decoupled from each operand's
// storage order. Summation steps a multiindex.MultiIndex over the summed
// labels, last axis fastest, and accumulates in that order, so results are
// reproducible bit for bit.
package contract

import (
	"fmt"
	"sync"

	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// Operand is one factor of a summation.
type Operand[T tensor.Scalar] interface {
	// Labels names each axis of the operand. A label repeated within one
	// operand is a trace.
	Labels() []index.Label

	// At returns the component at m (one value per label). Values are in range.
	At(m []int) T
}

// Summation evaluates the product of its operands summed over the summed labels.
// A Summation is immutable and safe for concurrent use.
type Summation[T tensor.Scalar] struct {
	free       []index.Slot
	summed     []index.Contraction
	freeDims   multiindex.Dims
	summedDims multiindex.Dims
	operands   []Operand[T]
	gather     [][]int
	empty      bool
	scratch    sync.Pool
}

// New builds the summation of the product of operands under partition p.
// Every operand label must be a free or summed label of p.
func New[T tensor.Scalar](p index.Partition, operands ...Operand[T]) (*Summation[T], error) {
	if len(operands) == 0 {
		return nil, ErrNoOperands
	}
	s := &Summation[T]{
		free:       p.Free,
		summed:     p.Summed,
		freeDims:   make(multiindex.Dims, len(p.Free)),
		summedDims: make(multiindex.Dims, len(p.Summed)),
		operands:   operands,
		gather:     make([][]int, len(operands)),
	}

	pos := make(map[index.Label]int, len(p.Free)+len(p.Summed))
	for i, f := range p.Free {
		s.freeDims[i] = f.Space.Dim()
		pos[f.Label] = i
	}
	for i, c := range p.Summed {
		d := c.First.Space.Dim()
		s.summedDims[i] = d
		s.empty = s.empty || d == 0
		pos[c.Label] = len(p.Free) + i
	}

	for o, op := range operands {
		labels := op.Labels()
		g := make([]int, len(labels))
		for a, l := range labels {
			at, ok := pos[l]
			if !ok {
				return nil, fmt.Errorf("%w: operand %d label %q", ErrUnknownLabel, o, l)
			}
			g[a] = at
		}
		s.gather[o] = g
	}
	s.scratch.New = s.newScratch
	return s, nil
}

// NewUnary builds the summation of a single operand, e.g. the trace v(i,i).
func NewUnary[T tensor.Scalar](p index.Partition, op Operand[T]) (*Summation[T], error) {
	return New(p, op)
}

// NewBinary builds the summation of left*right, e.g. a(i,j)*b(j,k).
func NewBinary[T tensor.Scalar](p index.Partition, left, right Operand[T]) (*Summation[T], error) {
	return New(p, left, right)
}

// Free returns the free slots: the shape callers must use to read results.
func (s *Summation[T]) Free() []index.Slot { return s.free }

// Summed returns the contracted labels.
func (s *Summation[T]) Summed() []index.Contraction { return s.summed }

// FreeDims returns the dimension of each free slot.
func (s *Summation[T]) FreeDims() multiindex.Dims { return s.freeDims }

// At returns the output component at free (one value per free slot, in range).
// It does not allocate: gather buffers and the summed-label index are reused
// across calls.
func (s *Summation[T]) At(free []int) T {
	sc := s.scratch.Get().(*scratch)
	defer s.scratch.Put(sc)

	if len(s.summedDims) == 0 {
		// Plain indexing or outer product: Total == Free.
		return s.product(free, nil, sc.bufs)
	}
	if s.empty {
		return 0
	}

	var acc T
	summed := &sc.summed
	for summed.Reset(); !summed.AtEnd(); summed.Increment() {
		acc += s.product(free, summed.Values(), sc.bufs)
	}
	return acc
}

// product multiplies the operands at Total == free ++ summed.
func (s *Summation[T]) product(free, summed []int, bufs [][]int) T {
	nf := len(free)
	var p T = 1
	for o, op := range s.operands {
		buf := bufs[o]
		for a, at := range s.gather[o] {
			if at < nf {
				buf[a] = free[at]
			} else {
				buf[a] = summed[at-nf]
			}
		}
		p *= op.At(buf)
	}
	return p
}

// scratch is the per-call state of At.
type scratch struct {
	bufs   [][]int
	summed multiindex.MultiIndex
}

func (s *Summation[T]) newScratch() any {
	sc := &scratch{bufs: make([][]int, len(s.gather)), summed: multiindex.Start(s.summedDims)}
	for o, g := range s.gather {
		sc.bufs[o] = make([]int, len(g))
	}
	return sc
}
