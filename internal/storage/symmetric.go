package storage

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// SymmetricScheme stores an order-k symmetric tensor over a dimension-d space
// as its C(d+k-1, k) components with non-increasing multi-indices.
//
// The canonical multi-index (a0 >= a1 >= ... >= a(k-1)) has storage index
//
//	C(a0+k-1, k) + C(a1+k-2, k-1) + ... + C(a(k-1), 1)
//
// so for k == 2 the storage order is (0,0) (1,0) (1,1) (2,0) (2,1) (2,2) ...
// No component is a procedural zero and every scale factor is 1.
type SymmetricScheme struct {
	d, k int
	dims multiindex.Dims
}

// NewSymmetric creates the order-k symmetric power scheme over dimension d.
func NewSymmetric(d, k int) (*SymmetricScheme, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: symmetric power of dimension %d", ErrBadDimension, d)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: symmetric power of order %d", ErrBadOrder, k)
	}
	if _, ok := CheckedBinomial(d+k-1, k); !ok || d+k-1 < 0 {
		return nil, fmt.Errorf("%w: order %d symmetric power of dimension %d has more than %d components",
			ErrBadDimension, k, d, math.MaxInt)
	}
	dims := make(multiindex.Dims, k)
	for i := range dims {
		dims[i] = d
	}
	return &SymmetricScheme{d: d, k: k, dims: dims}, nil
}

// Class implements Scheme.
func (s *SymmetricScheme) Class() Class { return Symmetric }

// Dims implements Scheme.
func (s *SymmetricScheme) Dims() multiindex.Dims { return s.dims }

// Size implements Scheme.
func (s *SymmetricScheme) Size() int { return Binomial(s.d+s.k-1, s.k) }

// ToMultiIndex implements Scheme.
func (s *SymmetricScheme) ToMultiIndex(idx int, dst []int) {
	if s.k == 2 {
		// Triangular fast path: idx = a0*(a0+1)/2 + a1.
		a0 := InverseTriangular(idx)
		dst[0], dst[1] = a0, idx-a0*(a0+1)/2
		return
	}
	hi := s.d
	for r := 0; r < s.k; r++ {
		order := s.k - r
		// Largest a <= previous head with C(a+order-1, order) <= idx.
		a := largestBinomialArg(idx, order, order-1, 0, hi)
		dst[r] = a
		idx -= Binomial(a+order-1, order)
		hi = a + 1
	}
}

// ToStorage implements Scheme.
func (s *SymmetricScheme) ToStorage(m []int) int {
	buf := multiindex.GetBuffer(len(m))
	defer multiindex.PutBuffer(buf)
	sorted := *buf
	copy(sorted, m)
	sortDescending(sorted)
	idx := 0
	for r, a := range sorted {
		order := s.k - r
		idx += Binomial(a+order-1, order)
	}
	return idx
}

// IsProceduralZero implements Scheme.
func (s *SymmetricScheme) IsProceduralZero([]int) bool { return false }

// ScaleFactor implements Scheme.
func (s *SymmetricScheme) ScaleFactor([]int) int { return 1 }

// Preimage implements Scheme: every distinct permutation of the canonical
// multi-index, each with scale 1.
func (s *SymmetricScheme) Preimage(idx int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		perm := make([]int, s.k)
		s.ToMultiIndex(idx, perm)
		slices.Sort(perm)
		for {
			if !yield(1, perm) {
				return
			}
			if !nextPermutation(perm) {
				return
			}
		}
	}
}

// Key implements Scheme.
func (s *SymmetricScheme) Key() string { return fmt.Sprintf("symmetric^%d[%d]", s.k, s.d) }
