package storage

import (
	"fmt"
	"iter"
	"strings"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// NestedScheme composes an outer scheme with one inner scheme per outer slot.
// Slot i of the outer scheme ranges over the storage indices of inner[i], so
// the full multi-index is the concatenation of the inner multi-indices.
//
// This is how a symmetry class applied to factors that are themselves
// symmetry-reduced (for example a diagonal 2-tensor product of two tensor
// product spaces) flattens to a map over the leaf factor dimensions.
type NestedScheme struct {
	outer   Scheme
	inners  []Scheme
	offsets []int // offsets[i] is the first full axis of inner i; len(inners)+1 entries
	dims    multiindex.Dims
}

// NewNested composes outer with inners. It returns ErrNestingMismatch unless
// there is one inner per outer axis and inner[i].Size() == outer.Dims()[i].
func NewNested(outer Scheme, inners ...Scheme) (*NestedScheme, error) {
	od := outer.Dims()
	if len(od) != len(inners) {
		return nil, fmt.Errorf("%w: %d inner schemes for %d outer axes", ErrNestingMismatch, len(inners), len(od))
	}
	n := &NestedScheme{outer: outer, inners: inners, offsets: make([]int, len(inners)+1)}
	for i, in := range inners {
		if in.Size() != od[i] {
			return nil, fmt.Errorf("%w: axis %d has dimension %d, inner %s stores %d",
				ErrNestingMismatch, i, od[i], in.Key(), in.Size())
		}
		n.offsets[i+1] = n.offsets[i] + len(in.Dims())
		n.dims = append(n.dims, in.Dims()...)
	}
	return n, nil
}

// NewProduct is the tensor product of inners: a nested scheme with a general outer scheme.
func NewProduct(inners ...Scheme) (*NestedScheme, error) {
	dims := make([]int, len(inners))
	for i, in := range inners {
		dims[i] = in.Size()
	}
	outer, err := NewGeneral(dims...)
	if err != nil {
		return nil, err
	}
	return NewNested(outer, inners...)
}

// Class implements Scheme.
func (n *NestedScheme) Class() Class { return Nested }

// Outer returns the outer scheme.
func (n *NestedScheme) Outer() Scheme { return n.outer }

// Inners returns the inner schemes.
func (n *NestedScheme) Inners() []Scheme { return n.inners }

// Dims implements Scheme.
func (n *NestedScheme) Dims() multiindex.Dims { return n.dims }

// Size implements Scheme.
func (n *NestedScheme) Size() int { return n.outer.Size() }

// ToMultiIndex implements Scheme.
func (n *NestedScheme) ToMultiIndex(s int, dst []int) {
	buf := multiindex.GetBuffer(len(n.inners))
	defer multiindex.PutBuffer(buf)
	om := *buf
	n.outer.ToMultiIndex(s, om)
	for i, in := range n.inners {
		in.ToMultiIndex(om[i], dst[n.offsets[i]:n.offsets[i+1]])
	}
}

// outerIndex writes the outer multi-index of m into om (len(om) ==
// len(n.inners)). ok is false if any inner component is a procedural zero.
func (n *NestedScheme) outerIndex(m, om []int) (scale int, ok bool) {
	scale = 1
	for i, in := range n.inners {
		part := m[n.offsets[i]:n.offsets[i+1]]
		if in.IsProceduralZero(part) {
			return 0, false
		}
		om[i] = in.ToStorage(part)
		scale *= in.ScaleFactor(part)
	}
	return scale, true
}

// ToStorage implements Scheme.
func (n *NestedScheme) ToStorage(m []int) int {
	buf := multiindex.GetBuffer(len(n.inners))
	defer multiindex.PutBuffer(buf)
	n.outerIndex(m, *buf)
	return n.outer.ToStorage(*buf)
}

// IsProceduralZero implements Scheme.
func (n *NestedScheme) IsProceduralZero(m []int) bool {
	buf := multiindex.GetBuffer(len(n.inners))
	defer multiindex.PutBuffer(buf)
	_, ok := n.outerIndex(m, *buf)
	return !ok || n.outer.IsProceduralZero(*buf)
}

// ScaleFactor implements Scheme.
func (n *NestedScheme) ScaleFactor(m []int) int {
	buf := multiindex.GetBuffer(len(n.inners))
	defer multiindex.PutBuffer(buf)
	scale, _ := n.outerIndex(m, *buf)
	return scale * n.outer.ScaleFactor(*buf)
}

// Preimage implements Scheme: the outer preimage, expanded through every
// combination of inner preimages.
func (n *NestedScheme) Preimage(s int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		m := make([]int, len(n.dims))
		for oscale, om := range n.outer.Preimage(s) {
			if !n.expand(0, om, oscale, m, yield) {
				return
			}
		}
	}
}

func (n *NestedScheme) expand(slot int, om []int, scale int, m []int, yield func(int, []int) bool) bool {
	if slot == len(n.inners) {
		return yield(scale, m)
	}
	dst := m[n.offsets[slot]:n.offsets[slot+1]]
	for iscale, im := range n.inners[slot].Preimage(om[slot]) {
		copy(dst, im)
		if !n.expand(slot+1, om, scale*iscale, m, yield) {
			return false
		}
	}
	return true
}

// Key implements Scheme.
func (n *NestedScheme) Key() string {
	parts := make([]string, len(n.inners))
	for i, in := range n.inners {
		parts[i] = in.Key()
	}
	return "nested(" + n.outer.Key() + ";" + strings.Join(parts, ",") + ")"
}
