// Package multiindex provides fixed-length tuples of bounded integer indices
// with row-major flat conversion, odometer iteration and structural slicing.
//
// Conventions: the first axis is the most significant one. Flat values are
// composed as sum(index[k] * prod(dims[j] for j > k)), and iteration
// increments the last axis fastest.
package multiindex

import (
	"fmt"
	"math"
	"math/bits"
)

// Dims holds the per-axis bounds of a multi-index.
type Dims []int

// NumElements returns the number of distinct multi-indices with these bounds.
// The count must fit in an int, which Validate checks.
func (d Dims) NumElements() int {
	if len(d) == 0 {
		return 1 // The vacuous index of an order-0 tensor.
	}
	n := 1
	for _, dim := range d {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative and that NumElements fits
// in an int. A zero dimension is allowed and yields an empty iteration.
func (d Dims) Validate() error {
	n := uint64(1)
	for i, dim := range d {
		if dim < 0 {
			return fmt.Errorf("%w: axis %d has dimension %d", ErrBadDimension, i, dim)
		}
		hi, lo := bits.Mul64(n, uint64(dim))
		if hi != 0 || lo > math.MaxInt {
			return fmt.Errorf("%w: %v has more than %d elements", ErrBadDimension, d, math.MaxInt)
		}
		n = lo
	}
	return nil
}

// Equal checks if two dimension lists are equal.
func (d Dims) Equal(other Dims) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the dimensions.
func (d Dims) Clone() Dims {
	clone := make(Dims, len(d))
	copy(clone, d)
	return clone
}

// Strides calculates row-major strides: stride[i] = product of all dimensions after i.
func (d Dims) Strides() []int {
	strides := make([]int, len(d))
	if len(d) == 0 {
		return strides
	}

	strides[len(d)-1] = 1
	for i := len(d) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * d[i+1]
	}
	return strides
}

// Concat returns the dimensions of d followed by those of other.
func (d Dims) Concat(other Dims) Dims {
	out := make(Dims, 0, len(d)+len(other))
	out = append(out, d...)
	return append(out, other...)
}

// Compose converts per-axis values into a flat row-major value without
// bound checks.
func (d Dims) Compose(vals []int) int {
	flat := 0
	for i, v := range vals {
		flat = flat*d[i] + v
	}
	return flat
}

// Decompose writes the per-axis values of flat into dst (len(dst) == len(d))
// by successive div/mod against the trailing dimensions. No bound checks.
func (d Dims) Decompose(flat int, dst []int) {
	for i := len(d) - 1; i >= 0; i-- {
		dim := d[i]
		if dim == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = flat % dim
		flat /= dim
	}
}

// Contains reports whether vals is a valid multi-index for these bounds.
func (d Dims) Contains(vals []int) bool {
	if len(vals) != len(d) {
		return false
	}
	for i, v := range vals {
		if v < 0 || v >= d[i] {
			return false
		}
	}
	return true
}

// Check returns ErrOutOfRange (or ErrArity) describing the first violation in vals.
func (d Dims) Check(vals []int) error {
	if len(vals) != len(d) {
		return fmt.Errorf("%w: expected %d indices, got %d", ErrArity, len(d), len(vals))
	}
	for i, v := range vals {
		if v < 0 || v >= d[i] {
			return fmt.Errorf("%w: index %d at axis %d (dimension %d)", ErrOutOfRange, v, i, d[i])
		}
	}
	return nil
}
