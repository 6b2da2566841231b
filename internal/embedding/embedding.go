// Package embedding implements the linear embeddings between different
// symmetry-class representations of the same nominal tensor type, and their
// transposes, the co-embeddings.
//
// An Embedding from a domain space D into a codomain space C (both built from
// the same leaf vector spaces, with D a subspace of C) is a sparse linear map
// with at most one non-zero source per codomain component. It is defined by
// three functions of a codomain storage index c:
//
//	IsProceduralZero(c)  - the embedded component is identically zero
//	ScalarFactor(c)      - the multiplier applied to the source component
//	SourceIndex(c)       - the domain storage index read for c
//
// The co-embedding maps a domain index d to the finite list of
// (factor, codomain index) pairs whose source is d. Embedding and
// co-embedding are transposes of each other; Verify checks this.
package embedding

import (
	"fmt"
	"iter"

	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/storage"
)

// Kind names the family of an embedding. Lookup tables are cached per kind.
type Kind string

// Inclusion is the embedding of a symmetry-reduced space into a larger
// representation of the same tensors.
const Inclusion Kind = "inclusion"

// Embedding maps domain components into codomain components.
// It is immutable and safe for concurrent use.
type Embedding struct {
	domain   *space.Space
	codomain *space.Space
	dflat    storage.Scheme
	cflat    storage.Scheme
	kind     Kind
}

// New creates the inclusion of domain into codomain.
// It returns ErrIncompatibleSpaces unless both spaces have the same scalar
// field and the same leaf vector spaces in the same order.
func New(domain, codomain *space.Space) (*Embedding, error) {
	if domain.Field() != codomain.Field() {
		return nil, fmt.Errorf("%w: fields %s and %s", ErrIncompatibleSpaces, domain.Field(), codomain.Field())
	}
	dl, cl := domain.LeafFactors(), codomain.LeafFactors()
	if len(dl) != len(cl) {
		return nil, fmt.Errorf("%w: %s has %d leaf factors, %s has %d",
			ErrIncompatibleSpaces, domain, len(dl), codomain, len(cl))
	}
	for i := range dl {
		if !dl[i].Equal(cl[i]) {
			return nil, fmt.Errorf("%w: leaf factor %d is %s in %s but %s in %s",
				ErrIncompatibleSpaces, i, dl[i], domain, cl[i], codomain)
		}
	}
	return &Embedding{
		domain:   domain,
		codomain: codomain,
		dflat:    domain.Flat(),
		cflat:    codomain.Flat(),
		kind:     Inclusion,
	}, nil
}

// Domain returns the domain space.
func (e *Embedding) Domain() *space.Space { return e.domain }

// Codomain returns the codomain space.
func (e *Embedding) Codomain() *space.Space { return e.codomain }

// Kind returns the embedding family.
func (e *Embedding) Kind() Kind { return e.kind }

// Key identifies the embedding for caching.
func (e *Embedding) Key() Key {
	return Key{
		Domain:   e.domain.Key(),
		Codomain: e.codomain.Key(),
		Field:    e.domain.Field(),
		Kind:     e.kind,
	}
}

// canonical returns the canonical leaf multi-index of codomain index c.
func (e *Embedding) canonical(c int) []int {
	m := make([]int, len(e.cflat.Dims()))
	e.cflat.ToMultiIndex(c, m)
	return m
}

// pooledCanonical is canonical into a pooled buffer; release it with
// multiindex.PutBuffer.
func (e *Embedding) pooledCanonical(c int) *[]int {
	buf := multiindex.GetBuffer(len(e.cflat.Dims()))
	e.cflat.ToMultiIndex(c, *buf)
	return buf
}

// IsProceduralZero reports whether codomain component c is identically zero
// for every embedded tensor.
func (e *Embedding) IsProceduralZero(c int) bool {
	buf := e.pooledCanonical(c)
	defer multiindex.PutBuffer(buf)
	return e.dflat.IsProceduralZero(*buf)
}

// Lookup returns the source index and factor of codomain component c in one
// pass; ok is false for procedural zeros. c must be in range.
func (e *Embedding) Lookup(c int) (src, factor int, ok bool) {
	buf := e.pooledCanonical(c)
	defer multiindex.PutBuffer(buf)
	m := *buf
	if e.dflat.IsProceduralZero(m) {
		return 0, 0, false
	}
	return e.dflat.ToStorage(m), e.dflat.ScaleFactor(m), true
}

func (e *Embedding) check(c int) ([]int, error) {
	if c < 0 || c >= e.codomain.Dim() {
		return nil, fmt.Errorf("embedding: codomain component %d of %d: %w",
			c, e.codomain.Dim(), multiindex.ErrOutOfRange)
	}
	m := e.canonical(c)
	if e.dflat.IsProceduralZero(m) {
		return nil, fmt.Errorf("embedding: %s -> %s component %d: %w",
			e.domain, e.codomain, c, storage.ErrProceduralZero)
	}
	return m, nil
}

// ScalarFactor returns the multiplier of codomain component c.
// It fails with storage.ErrProceduralZero on procedural zeros.
func (e *Embedding) ScalarFactor(c int) (int, error) {
	m, err := e.check(c)
	if err != nil {
		return 0, err
	}
	return e.dflat.ScaleFactor(m), nil
}

// SourceIndex returns the domain component read by codomain component c.
// It fails with storage.ErrProceduralZero on procedural zeros.
func (e *Embedding) SourceIndex(c int) (int, error) {
	m, err := e.check(c)
	if err != nil {
		return 0, err
	}
	return e.dflat.ToStorage(m), nil
}

// ScalarFactorUnchecked is ScalarFactor without validation.
// The caller must have established that c is in range and not a procedural zero.
func (e *Embedding) ScalarFactorUnchecked(c int) int {
	buf := e.pooledCanonical(c)
	defer multiindex.PutBuffer(buf)
	return e.dflat.ScaleFactor(*buf)
}

// SourceIndexUnchecked is SourceIndex without validation.
// The caller must have established that c is in range and not a procedural zero.
func (e *Embedding) SourceIndexUnchecked(c int) int {
	buf := e.pooledCanonical(c)
	defer multiindex.PutBuffer(buf)
	return e.dflat.ToStorage(*buf)
}

// HasClosedForm reports whether the co-embedding is derived directly from the
// domain's preimage enumeration, i.e. the codomain stores every component.
func (e *Embedding) HasClosedForm() bool {
	return e.cflat.Class() == storage.General
}

// Coembedder enumerates the co-embedding of a domain index.
type Coembedder interface {
	// Coembed yields (factor, codomain index) pairs for domain index d.
	// Each call returns a fresh, finite iterator.
	Coembed(d int) iter.Seq2[int, int]
}

// closedForm is the hand-derived co-embedding into a general codomain: the
// preimage of d under the domain's flat scheme, each multi-index being its
// own codomain component.
type closedForm struct {
	e *Embedding
}

func (cf closedForm) Coembed(d int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for scale, m := range cf.e.dflat.Preimage(d) {
			if !yield(scale, cf.e.cflat.ToStorage(m)) {
				return
			}
		}
	}
}

// Apply computes the embedding of a domain vector src into dst (len(dst) ==
// Codomain().Dim()) for any float component type.
func Apply[T ~float32 | ~float64](e *Embedding, src, dst []T) {
	for c := range dst {
		s, f, ok := e.Lookup(c)
		if !ok {
			dst[c] = 0
			continue
		}
		dst[c] = T(f) * src[s]
	}
}

// ApplyTranspose computes the co-embedding of a codomain vector src into dst
// (len(dst) == Domain().Dim()) using co.
func ApplyTranspose[T ~float32 | ~float64](co Coembedder, src, dst []T) {
	for d := range dst {
		var acc T
		for f, c := range co.Coembed(d) {
			acc += T(f) * src[c]
		}
		dst[d] = acc
	}
}
