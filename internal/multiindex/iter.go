package multiindex

import "iter"

// All iterates over every multi-index for dims in row-major order (last axis
// fastest). A fresh buffer is allocated per iteration and reused across
// yields: don't retain or modify it inside the loop.
//
// Order-0 dims yield a single empty index. Any zero dimension yields nothing.
func All(dims Dims) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for _, d := range dims {
			if d <= 0 {
				return
			}
		}
		vals := make([]int, len(dims))
		for {
			if !yield(vals) {
				return
			}
			axis := len(dims) - 1
			for ; axis >= 0; axis-- {
				vals[axis]++
				if vals[axis] < dims[axis] {
					break
				}
				vals[axis] = 0
			}
			if axis < 0 {
				return
			}
		}
	}
}

// Seq iterates from the current state of m until it is at end.
// m itself is not advanced; iteration works on a copy.
func (m MultiIndex) Seq() iter.Seq[MultiIndex] {
	return func(yield func(MultiIndex) bool) {
		cur := m.Clone()
		for !cur.AtEnd() {
			if !yield(cur.Clone()) {
				return
			}
			cur.Increment()
		}
	}
}
