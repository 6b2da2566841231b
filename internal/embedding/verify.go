package embedding

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensoralg/internal/storage"
)

// Verify checks, through the checked API only, that e is a genuine embedding
// and that co is its transpose:
//
//   - every domain basis tensor expands to the same full tensor before and
//     after embedding (ErrNotEmbeddable otherwise);
//   - ScalarFactor and SourceIndex fail exactly on procedural zeros;
//   - the pairs yielded by co are the transpose of the embedding matrix
//     (ErrNotAdjoint otherwise).
//
// The cost is proportional to Domain().Dim() times the full tensor size.
func Verify(e *Embedding, co Coembedder) error {
	if err := verifyRepresentable(e); err != nil {
		return err
	}

	type cell struct{ c, d int }
	forward := make(map[cell]int)
	for c := 0; c < e.codomain.Dim(); c++ {
		f, ferr := e.ScalarFactor(c)
		s, serr := e.SourceIndex(c)
		if e.IsProceduralZero(c) {
			if !errors.Is(ferr, storage.ErrProceduralZero) || !errors.Is(serr, storage.ErrProceduralZero) {
				return fmt.Errorf("%w: component %d is a procedural zero but lookup succeeded", ErrNotAdjoint, c)
			}
			continue
		}
		if ferr != nil {
			return ferr
		}
		if serr != nil {
			return serr
		}
		forward[cell{c, s}] = f
	}

	backward := make(map[cell]int, len(forward))
	for d := 0; d < e.domain.Dim(); d++ {
		for f, c := range co.Coembed(d) {
			if c < 0 || c >= e.codomain.Dim() {
				return fmt.Errorf("%w: domain %d yields codomain index %d out of range", ErrNotAdjoint, d, c)
			}
			backward[cell{c, d}] += f
		}
	}

	if len(forward) != len(backward) {
		return fmt.Errorf("%w: %s -> %s has %d embedding terms but %d co-embedding terms",
			ErrNotAdjoint, e.domain, e.codomain, len(forward), len(backward))
	}
	for k, f := range forward {
		if backward[k] != f {
			return fmt.Errorf("%w: %s -> %s component %d from %d: factor %d, transpose %d",
				ErrNotAdjoint, e.domain, e.codomain, k.c, k.d, f, backward[k])
		}
	}
	return nil
}

func verifyRepresentable(e *Embedding) error {
	n := e.dflat.Dims().NumElements()
	before := make([]float64, n)
	after := make([]float64, n)
	src := make([]float64, e.domain.Dim())
	emb := make([]float64, e.codomain.Dim())

	for s := range src {
		clear(src)
		src[s] = 1
		storage.Expand(e.dflat, func(i int) float64 { return src[i] }, before)
		Apply(e, src, emb)
		storage.Expand(e.cflat, func(i int) float64 { return emb[i] }, after)
		for i := range before {
			if before[i] != after[i] {
				return fmt.Errorf("%w: %s -> %s basis %d differs at full component %d (%g != %g)",
					ErrNotEmbeddable, e.domain, e.codomain, s, i, before[i], after[i])
			}
		}
	}
	return nil
}
