package multiindex

import (
	"fmt"
	"strings"
)

// MultiIndex is an ordered tuple of per-axis indices, each bounded by its
// axis dimension, plus a terminal "end" state reached by incrementing past
// the last value.
//
// The zero-length MultiIndex has exactly one valid state. It indexes the
// single component of an order-0 tensor and has Flat() == 0.
type MultiIndex struct {
	dims Dims
	vals []int
	end  bool
}

// New creates a MultiIndex from explicit per-axis values.
// Returns ErrOutOfRange if any value is outside its axis bound.
func New(dims Dims, vals ...int) (MultiIndex, error) {
	if err := dims.Check(vals); err != nil {
		return MultiIndex{}, err
	}
	return NewUnchecked(dims, vals...), nil
}

// NewUnchecked creates a MultiIndex without bound checks.
// The caller must guarantee len(vals) == len(dims) and every value in range.
func NewUnchecked(dims Dims, vals ...int) MultiIndex {
	v := make([]int, len(vals))
	copy(v, vals)
	return MultiIndex{dims: dims.Clone(), vals: v}
}

// Start returns the first MultiIndex for dims (all components zero).
// If any axis has dimension 0 there is nothing to iterate and the result is
// already at end.
func Start(dims Dims) MultiIndex {
	m := MultiIndex{dims: dims.Clone(), vals: make([]int, len(dims))}
	for _, d := range dims {
		if d == 0 {
			m.end = true
			if len(dims) > 0 {
				m.vals[0] = dims[0]
			}
			break
		}
	}
	return m
}

// FromFlat decomposes a flat row-major value into a MultiIndex.
// Returns ErrOutOfRange if flat is not in [0, dims.NumElements()).
func FromFlat(flat int, dims Dims) (MultiIndex, error) {
	if flat < 0 || flat >= dims.NumElements() {
		return MultiIndex{}, fmt.Errorf("%w: flat index %d for dims %v", ErrOutOfRange, flat, []int(dims))
	}
	return FromFlatUnchecked(flat, dims), nil
}

// FromFlatUnchecked is FromFlat without the range check.
func FromFlatUnchecked(flat int, dims Dims) MultiIndex {
	m := MultiIndex{dims: dims.Clone(), vals: make([]int, len(dims))}
	dims.Decompose(flat, m.vals)
	return m
}

// Len returns the number of axes.
func (m MultiIndex) Len() int {
	return len(m.vals)
}

// Dims returns the per-axis bounds.
func (m MultiIndex) Dims() Dims {
	return m.dims
}

// Values returns the per-axis values.
// The slice aliases the index: callers must not modify it.
func (m MultiIndex) Values() []int {
	return m.vals
}

// At returns the value at axis i.
func (m MultiIndex) At(i int) int {
	return m.vals[i]
}

// Flat composes the row-major flat value, most significant axis first.
func (m MultiIndex) Flat() int {
	return m.dims.Compose(m.vals)
}

// AtEnd reports whether iteration has run past the last value.
// For a non-empty index this is exactly "the first axis sits at its bound".
func (m MultiIndex) AtEnd() bool {
	return m.end
}

// Increment advances the index odometer-style: the last axis is incremented
// and overflow carries leftward. Once the first axis overflows the index is
// at end, and further calls are no-ops.
func (m *MultiIndex) Increment() {
	if m.end {
		return
	}
	if len(m.vals) == 0 {
		m.end = true
		return
	}
	for i := len(m.vals) - 1; i >= 0; i-- {
		m.vals[i]++
		if m.vals[i] < m.dims[i] {
			return
		}
		if i == 0 {
			m.vals[0] = m.dims[0]
			m.end = true
			return
		}
		m.vals[i] = 0
	}
}

// Reset returns the index to its start state in place, without allocating.
func (m *MultiIndex) Reset() {
	clear(m.vals)
	m.end = false
	for _, d := range m.dims {
		if d == 0 {
			m.end = true
			m.vals[0] = m.dims[0]
			return
		}
	}
}

// Clone returns a deep copy.
func (m MultiIndex) Clone() MultiIndex {
	c := NewUnchecked(m.dims, m.vals...)
	c.end = m.end
	return c
}

// Concat returns m followed by other. The zero-length index is the identity.
func (m MultiIndex) Concat(other MultiIndex) MultiIndex {
	vals := make([]int, 0, len(m.vals)+len(other.vals))
	vals = append(vals, m.vals...)
	vals = append(vals, other.vals...)
	return MultiIndex{
		dims: m.dims.Concat(other.dims),
		vals: vals,
		end:  m.end || other.end,
	}
}

// Leading returns the first n axes.
func (m MultiIndex) Leading(n int) (MultiIndex, error) {
	return m.Range(0, n)
}

// Trailing returns the last n axes.
func (m MultiIndex) Trailing(n int) (MultiIndex, error) {
	if n < 0 || n > len(m.vals) {
		return MultiIndex{}, fmt.Errorf("%w: trailing %d of %d axes", ErrOutOfRange, n, len(m.vals))
	}
	return m.Range(len(m.vals)-n, len(m.vals))
}

// Range returns the axes [lo, hi).
func (m MultiIndex) Range(lo, hi int) (MultiIndex, error) {
	if lo < 0 || hi > len(m.vals) || lo > hi {
		return MultiIndex{}, fmt.Errorf("%w: range [%d,%d) of %d axes", ErrOutOfRange, lo, hi, len(m.vals))
	}
	return NewUnchecked(m.dims[lo:hi], m.vals[lo:hi]...), nil
}

// Equal reports whether both indices have the same bounds and values.
func (m MultiIndex) Equal(other MultiIndex) bool {
	if m.end != other.end || !m.dims.Equal(other.dims) {
		return false
	}
	for i := range m.vals {
		if m.vals[i] != other.vals[i] {
			return false
		}
	}
	return true
}

// Less orders indices lexicographically by value, shorter first.
// It exists for deterministic ordering only.
func (m MultiIndex) Less(other MultiIndex) bool {
	n := min(len(m.vals), len(other.vals))
	for i := 0; i < n; i++ {
		if m.vals[i] != other.vals[i] {
			return m.vals[i] < other.vals[i]
		}
	}
	return len(m.vals) < len(other.vals)
}

// String renders the index as "(i0,i1,...)".
func (m MultiIndex) String() string {
	if m.end {
		return "(end)"
	}
	parts := make([]string, len(m.vals))
	for i, v := range m.vals {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
