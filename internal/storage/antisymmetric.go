package storage

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// AntisymmetricScheme stores an order-k antisymmetric tensor (an element of
// the k-th exterior power) over a dimension-d space as its C(d, k) components
// with strictly decreasing multi-indices.
//
// The canonical multi-index (a0 > a1 > ... > a(k-1)) has storage index
//
//	C(a0, k) + C(a1, k-1) + ... + C(a(k-1), 1)
//
// Any multi-index with a repeated value is a procedural zero. Otherwise the
// scale factor is the sign of the permutation sorting it into canonical order.
type AntisymmetricScheme struct {
	d, k int
	dims multiindex.Dims
}

// NewAntisymmetric creates the order-k exterior power scheme over dimension d.
func NewAntisymmetric(d, k int) (*AntisymmetricScheme, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: exterior power of dimension %d", ErrBadDimension, d)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: exterior power of order %d", ErrBadOrder, k)
	}
	if _, ok := CheckedBinomial(d, k); !ok {
		return nil, fmt.Errorf("%w: order %d exterior power of dimension %d has more than %d components",
			ErrBadDimension, k, d, math.MaxInt)
	}
	dims := make(multiindex.Dims, k)
	for i := range dims {
		dims[i] = d
	}
	return &AntisymmetricScheme{d: d, k: k, dims: dims}, nil
}

// Class implements Scheme.
func (a *AntisymmetricScheme) Class() Class { return Antisymmetric }

// Dims implements Scheme.
func (a *AntisymmetricScheme) Dims() multiindex.Dims { return a.dims }

// Size implements Scheme.
func (a *AntisymmetricScheme) Size() int { return Binomial(a.d, a.k) }

// ToMultiIndex implements Scheme.
func (a *AntisymmetricScheme) ToMultiIndex(idx int, dst []int) {
	if a.k == 2 {
		// idx = a0*(a0-1)/2 + a1 with a0 > a1, i.e. a triangular number in a0-1.
		t := InverseTriangular(idx)
		dst[0], dst[1] = t+1, idx-t*(t+1)/2
		return
	}
	hi := a.d
	for r := 0; r < a.k; r++ {
		order := a.k - r
		v := largestBinomialArg(idx, order, 0, order-1, hi)
		dst[r] = v
		idx -= Binomial(v, order)
		hi = v
	}
}

// ToStorage implements Scheme.
func (a *AntisymmetricScheme) ToStorage(m []int) int {
	buf := multiindex.GetBuffer(len(m))
	defer multiindex.PutBuffer(buf)
	sorted := *buf
	copy(sorted, m)
	sortDescending(sorted)
	idx := 0
	for r, v := range sorted {
		idx += Binomial(v, a.k-r)
	}
	return idx
}

// IsProceduralZero implements Scheme.
func (a *AntisymmetricScheme) IsProceduralZero(m []int) bool { return hasRepeat(m) }

// ScaleFactor implements Scheme.
func (a *AntisymmetricScheme) ScaleFactor(m []int) int { return permutationSign(m) }

// Preimage implements Scheme: all k! permutations of the canonical
// multi-index, each with its permutation sign.
func (a *AntisymmetricScheme) Preimage(idx int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		perm := make([]int, a.k)
		a.ToMultiIndex(idx, perm)
		slices.Sort(perm)
		for {
			if !yield(permutationSign(perm), perm) {
				return
			}
			if !nextPermutation(perm) {
				return
			}
		}
	}
}

// Key implements Scheme.
func (a *AntisymmetricScheme) Key() string { return fmt.Sprintf("antisymmetric^%d[%d]", a.k, a.d) }
