package expr

import (
	"github.com/born-ml/tensoralg/internal/embedding"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// embedNode moves one free slot from a compact space into a larger
// representation of the same tensors.
type embedNode[T tensor.Scalar] struct {
	n    Node[T]
	free []index.Slot
	pos  int
	e    *embedding.Embedding
}

// Embed changes the space of the free label of n to codomain, through the
// embedding of the label's current space into codomain obtained from reg.
// The label name is kept. A nil reg uses a fresh registry.
func Embed[T tensor.Scalar](n Node[T], label index.Label, codomain *space.Space, reg *embedding.Registry) (Node[T], error) {
	const op = "embed"
	pos, free, err := replaceSlot(op, n, label, codomain)
	if err != nil {
		return nil, err
	}
	e, err := registry(reg).Embedding(n.Free()[pos].Space, codomain)
	if err != nil {
		return nil, &BuildError{Op: op, Details: string(label), Err: err}
	}
	return &embedNode[T]{n: n, free: free, pos: pos, e: e}, nil
}

func (e *embedNode[T]) Free() []index.Slot    { return e.free }
func (e *embedNode[T]) Summed() []index.Label { return e.n.Summed() }

func (e *embedNode[T]) eval(m []int) T {
	src, f, ok := e.e.Lookup(m[e.pos])
	if !ok {
		return 0
	}
	buf := multiindex.GetBuffer(len(m))
	defer multiindex.PutBuffer(buf)
	inner := *buf
	copy(inner, m)
	inner[e.pos] = src
	return T(f) * e.n.eval(inner)
}

func (e *embedNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return e.n.leaves(yield)
}

// coembedNode is the transpose of embedNode.
type coembedNode[T tensor.Scalar] struct {
	n    Node[T]
	free []index.Slot
	pos  int
	co   embedding.Coembedder
}

// Coembed changes the space of the free label of n from its current space C
// to domain, applying the transpose of the embedding of domain into C.
// Component d of the result is the sum over the co-embedding pairs (f, c) of
// d of f times n at c.
func Coembed[T tensor.Scalar](n Node[T], label index.Label, domain *space.Space, reg *embedding.Registry) (Node[T], error) {
	const op = "coembed"
	pos, free, err := replaceSlot(op, n, label, domain)
	if err != nil {
		return nil, err
	}
	reg = registry(reg)
	e, err := reg.Embedding(domain, n.Free()[pos].Space)
	if err != nil {
		return nil, &BuildError{Op: op, Details: string(label), Err: err}
	}
	return &coembedNode[T]{n: n, free: free, pos: pos, co: reg.Coembedder(e)}, nil
}

func (c *coembedNode[T]) Free() []index.Slot    { return c.free }
func (c *coembedNode[T]) Summed() []index.Label { return c.n.Summed() }

func (c *coembedNode[T]) eval(m []int) T {
	buf := multiindex.GetBuffer(len(m))
	defer multiindex.PutBuffer(buf)
	inner := *buf
	copy(inner, m)
	var acc T
	for f, idx := range c.co.Coembed(m[c.pos]) {
		inner[c.pos] = idx
		acc += T(f) * c.n.eval(inner)
	}
	return acc
}

func (c *coembedNode[T]) leaves(yield func(*tensor.Tensor[T]) bool) bool {
	return c.n.leaves(yield)
}

func replaceSlot[T tensor.Scalar](op string, n Node[T], label index.Label, sp *space.Space) (int, []index.Slot, error) {
	free := n.Free()
	pos := index.Find(free, label)
	if pos < 0 {
		return 0, nil, buildErr(op, ErrNotFree, "label %q", label)
	}
	out := append([]index.Slot(nil), free...)
	out[pos] = index.Slot{Label: label, Space: sp}
	return pos, out, nil
}

func registry(reg *embedding.Registry) *embedding.Registry {
	if reg == nil {
		return embedding.NewRegistry()
	}
	return reg
}
