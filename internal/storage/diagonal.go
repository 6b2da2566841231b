package storage

import (
	"fmt"
	"iter"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// DiagonalScheme stores the min(d0, d1) diagonal entries of an order-2 tensor.
// Storage index k is the component (k, k); every off-diagonal component is a
// procedural zero.
type DiagonalScheme struct {
	dims multiindex.Dims
}

// NewDiagonal creates the diagonal scheme over a d0 x d1 tensor.
func NewDiagonal(d0, d1 int) (*DiagonalScheme, error) {
	if d0 < 0 || d1 < 0 {
		return nil, fmt.Errorf("%w: diagonal %dx%d", ErrBadDimension, d0, d1)
	}
	return &DiagonalScheme{dims: multiindex.Dims{d0, d1}}, nil
}

// Class implements Scheme.
func (d *DiagonalScheme) Class() Class { return Diagonal }

// Dims implements Scheme.
func (d *DiagonalScheme) Dims() multiindex.Dims { return d.dims }

// Size implements Scheme.
func (d *DiagonalScheme) Size() int { return min(d.dims[0], d.dims[1]) }

// ToMultiIndex implements Scheme.
func (d *DiagonalScheme) ToMultiIndex(s int, dst []int) {
	dst[0], dst[1] = s, s
}

// ToStorage implements Scheme.
func (d *DiagonalScheme) ToStorage(m []int) int { return m[0] }

// IsProceduralZero implements Scheme.
func (d *DiagonalScheme) IsProceduralZero(m []int) bool { return m[0] != m[1] }

// ScaleFactor implements Scheme.
func (d *DiagonalScheme) ScaleFactor([]int) int { return 1 }

// Preimage implements Scheme.
func (d *DiagonalScheme) Preimage(s int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		yield(1, []int{s, s})
	}
}

// Key implements Scheme.
func (d *DiagonalScheme) Key() string { return "diagonal" + dimsKey(d.dims) }

// ScalarDiagonalScheme stores a single scalar lambda representing the order-2
// tensor lambda*I: every diagonal component reads the one stored value and
// every off-diagonal component is a procedural zero.
type ScalarDiagonalScheme struct {
	dims multiindex.Dims
}

// NewScalarDiagonal creates the scalar-diagonal scheme over a d0 x d1 tensor.
func NewScalarDiagonal(d0, d1 int) (*ScalarDiagonalScheme, error) {
	if d0 < 0 || d1 < 0 {
		return nil, fmt.Errorf("%w: scalar-diagonal %dx%d", ErrBadDimension, d0, d1)
	}
	return &ScalarDiagonalScheme{dims: multiindex.Dims{d0, d1}}, nil
}

// Class implements Scheme.
func (d *ScalarDiagonalScheme) Class() Class { return ScalarDiagonal }

// Dims implements Scheme.
func (d *ScalarDiagonalScheme) Dims() multiindex.Dims { return d.dims }

// Size implements Scheme.
func (d *ScalarDiagonalScheme) Size() int { return 1 }

// ToMultiIndex implements Scheme.
func (d *ScalarDiagonalScheme) ToMultiIndex(_ int, dst []int) {
	dst[0], dst[1] = 0, 0
}

// ToStorage implements Scheme.
func (d *ScalarDiagonalScheme) ToStorage([]int) int { return 0 }

// IsProceduralZero implements Scheme.
func (d *ScalarDiagonalScheme) IsProceduralZero(m []int) bool { return m[0] != m[1] }

// ScaleFactor implements Scheme.
func (d *ScalarDiagonalScheme) ScaleFactor([]int) int { return 1 }

// Preimage implements Scheme. Every diagonal position shares storage index 0.
func (d *ScalarDiagonalScheme) Preimage(int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		m := make([]int, 2)
		for k := 0; k < min(d.dims[0], d.dims[1]); k++ {
			m[0], m[1] = k, k
			if !yield(1, m) {
				return
			}
		}
	}
}

// Key implements Scheme.
func (d *ScalarDiagonalScheme) Key() string { return "scalar-diagonal" + dimsKey(d.dims) }
