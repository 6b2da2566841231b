package expr

import (
	"slices"

	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/storage"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// bundleNode fuses several free slots of n into one slot over a
// symmetry-reduced space. Its free slots are n's remaining free slots
// followed by the fused one.
type bundleNode[T tensor.Scalar] struct {
	n      Node[T]
	free   []index.Slot
	rest   []int // n position of each leading free slot
	fused  []int // n position of each bundled slot, in target factor order
	scheme storage.Scheme
}

// Bundle fuses the free labels of n into a single label newLabel ranging over
// the components of target. Component c of the result is n evaluated at the
// canonical multi-index of c in target's storage scheme.
//
// The labels must be free in n, their spaces must equal target's factors in
// order, and newLabel must not already be used by n.
func Bundle[T tensor.Scalar](n Node[T], labels []index.Label, target *space.Space, newLabel index.Label) (Node[T], error) {
	return bundle(n, labels, target, newLabel, true)
}

// BundleUnchecked is Bundle without the factor-space check: only the slot
// dimensions must agree. It supports deliberate reinterpretation, e.g.
// bundling slots over V into a power of a space of the same dimension.
func BundleUnchecked[T tensor.Scalar](n Node[T], labels []index.Label, target *space.Space, newLabel index.Label) (Node[T], error) {
	return bundle(n, labels, target, newLabel, false)
}

func bundle[T tensor.Scalar](n Node[T], labels []index.Label, target *space.Space, newLabel index.Label, checked bool) (Node[T], error) {
	const op = "bundle"
	factors := target.Factors()
	if len(factors) == 0 {
		return nil, buildErr(op, ErrNotComposite, "target %s", target)
	}
	if len(labels) != len(factors) {
		return nil, buildErr(op, ErrArity, "target %s has %d factors, got %d labels", target, len(factors), len(labels))
	}
	if err := checkNewLabel(op, n, newLabel, nil); err != nil {
		return nil, err
	}

	free := n.Free()
	fused := make([]int, len(labels))
	for k, l := range labels {
		pos := index.Find(free, l)
		if pos < 0 {
			return nil, buildErr(op, ErrNotFree, "label %q", l)
		}
		if slices.Contains(fused[:k], pos) {
			return nil, buildErr(op, ErrLabelCollision, "label %q bundled twice", l)
		}
		fused[k] = pos

		got, want := free[pos].Space, factors[k]
		if got.Dim() != want.Dim() || (checked && !got.Equal(want)) {
			return nil, buildErr(op, ErrFactorMismatch, "label %q is over %s, target factor %d is %s", l, got, k, want)
		}
	}

	b := &bundleNode[T]{n: n, fused: fused, scheme: target.Scheme()}
	for i, s := range free {
		if !slices.Contains(fused, i) {
			b.rest = append(b.rest, i)
			b.free = append(b.free, s)
		}
	}
	b.free = append(b.free, index.Slot{Label: newLabel, Space: target})
	return b, nil
}

func (b *bundleNode[T]) Free() []index.Slot    { return b.free }
func (b *bundleNode[T]) Summed() []index.Label { return b.n.Summed() }

func (b *bundleNode[T]) eval(m []int) T {
	n := len(b.rest) + len(b.fused)
	buf := multiindex.GetBuffer(n + len(b.fused))
	defer multiindex.PutBuffer(buf)
	inner, mc := (*buf)[:n], (*buf)[n:]
	for i, p := range b.rest {
		inner[p] = m[i]
	}
	b.scheme.ToMultiIndex(m[len(b.rest)], mc)
	for k, p := range b.fused {
		inner[p] = mc[k]
	}
	return b.n.eval(inner)
}

func (b *bundleNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return b.n.leaves(yield)
}

// splitNode replaces one free slot over a composite space by one slot per
// factor.
type splitNode[T tensor.Scalar] struct {
	n      Node[T]
	free   []index.Slot
	pos    int
	k      int
	scheme storage.Scheme
}

// Split replaces the free label of n by newLabels, one per factor of its
// space, in place. A component of the result that is a procedural zero of the
// space's storage scheme is zero without reading n; any other is n at the
// stored component times the scheme's scale factor.
func Split[T tensor.Scalar](n Node[T], label index.Label, newLabels ...index.Label) (Node[T], error) {
	const op = "split"
	free := n.Free()
	pos := index.Find(free, label)
	if pos < 0 {
		return nil, buildErr(op, ErrNotFree, "label %q", label)
	}
	sp := free[pos].Space
	factors := sp.Factors()
	if len(factors) == 0 {
		return nil, buildErr(op, ErrNotComposite, "label %q is over %s", label, sp)
	}
	if len(newLabels) != len(factors) {
		return nil, buildErr(op, ErrArity, "%s has %d factors, got %d labels", sp, len(factors), len(newLabels))
	}
	for k, l := range newLabels {
		if err := checkNewLabel(op, n, l, &label); err != nil {
			return nil, err
		}
		if slices.Contains(newLabels[:k], l) {
			return nil, buildErr(op, ErrLabelCollision, "label %q used twice", l)
		}
	}

	out := make([]index.Slot, 0, len(free)-1+len(factors))
	out = append(out, free[:pos]...)
	for k, l := range newLabels {
		out = append(out, index.Slot{Label: l, Space: factors[k]})
	}
	out = append(out, free[pos+1:]...)
	return &splitNode[T]{n: n, free: out, pos: pos, k: len(factors), scheme: sp.Scheme()}, nil
}

func (s *splitNode[T]) Free() []index.Slot    { return s.free }
func (s *splitNode[T]) Summed() []index.Label { return s.n.Summed() }

func (s *splitNode[T]) eval(m []int) T {
	mf := m[s.pos : s.pos+s.k]
	if s.scheme.IsProceduralZero(mf) {
		return 0
	}
	buf := multiindex.GetBuffer(len(m) - s.k + 1)
	defer multiindex.PutBuffer(buf)
	inner := *buf
	copy(inner, m[:s.pos])
	inner[s.pos] = s.scheme.ToStorage(mf)
	copy(inner[s.pos+1:], m[s.pos+s.k:])
	return T(s.scheme.ScaleFactor(mf)) * s.n.eval(inner)
}

func (s *splitNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return s.n.leaves(yield)
}

// checkNewLabel rejects labels already used by n, except replaced.
func checkNewLabel[T tensor.Scalar](op string, n Node[T], l index.Label, replaced *index.Label) error {
	if l == "" {
		return buildErr(op, ErrLabelCollision, "empty label")
	}
	if replaced != nil && l == *replaced {
		return nil
	}
	if index.Find(n.Free(), l) >= 0 || slices.Contains(n.Summed(), l) {
		return buildErr(op, ErrLabelCollision, "label %q is already in use", l)
	}
	return nil
}
