// Package storage implements the symmetry-class storage maps: for each class
// the bijection between a compact storage index and a canonical multi-index,
// the procedural-zero predicate and the scale factor of every logical
// component.
//
// A Scheme describes how a multilinear object with per-axis dimensions Dims()
// is stored in Size() scalars. Reading the logical component at multi-index m
// means:
//
//	if sc.IsProceduralZero(m) { value = 0 }
//	else { value = ScaleFactor(m) * data[sc.ToStorage(m)] }
//
// Every scheme satisfies the round-trip law ToStorage(ToMultiIndex(s)) == s
// for all s in [0, Size()).
//
// The methods of Scheme are unchecked: they trust their arguments. Use Locate
// and MultiIndexOf for checked access.
package storage

import (
	"fmt"
	"iter"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// Class identifies a symmetry class.
type Class int

// Supported symmetry classes.
const (
	General Class = iota
	Diagonal
	ScalarDiagonal
	Symmetric
	Antisymmetric
	Nested
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case General:
		return "general"
	case Diagonal:
		return "diagonal"
	case ScalarDiagonal:
		return "scalar-diagonal"
	case Symmetric:
		return "symmetric"
	case Antisymmetric:
		return "antisymmetric"
	case Nested:
		return "nested"
	default:
		return "unknown"
	}
}

// ParseClass is the inverse of Class.String.
func ParseClass(s string) (Class, error) {
	for c := General; c <= Nested; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// Scheme is the storage map of one symmetry class over fixed dimensions.
type Scheme interface {
	// Class returns the symmetry class.
	Class() Class

	// Dims returns the per-axis dimensions of the full multi-index.
	Dims() multiindex.Dims

	// Size returns the number of stored scalars.
	Size() int

	// ToMultiIndex writes the canonical multi-index of storage index s into dst.
	ToMultiIndex(s int, dst []int)

	// ToStorage returns the storage index of m. Defined only where
	// IsProceduralZero(m) is false.
	ToStorage(m []int) int

	// IsProceduralZero reports whether m is identically zero for this class.
	IsProceduralZero(m []int) bool

	// ScaleFactor returns the multiplier relating the logical component at m
	// to its stored scalar. Defined only where IsProceduralZero(m) is false.
	ScaleFactor(m []int) int

	// Preimage enumerates every non-zero multi-index m with ToStorage(m) == s,
	// yielding its scale factor. The yielded slice is reused between yields.
	Preimage(s int) iter.Seq2[int, []int]

	// Key returns a stable identifier, equal for equal schemes.
	Key() string
}

// Locate is the checked form of ToStorage/ScaleFactor.
// It returns ErrProceduralZero for zero positions and wraps
// multiindex.ErrOutOfRange for invalid multi-indices.
func Locate(sc Scheme, m []int) (s, scale int, err error) {
	if err := sc.Dims().Check(m); err != nil {
		return 0, 0, fmt.Errorf("storage: %s: %w", sc.Key(), err)
	}
	if sc.IsProceduralZero(m) {
		return 0, 0, fmt.Errorf("%w: %v in %s", ErrProceduralZero, m, sc.Key())
	}
	return sc.ToStorage(m), sc.ScaleFactor(m), nil
}

// MultiIndexOf is the checked form of ToMultiIndex.
func MultiIndexOf(sc Scheme, s int) ([]int, error) {
	if s < 0 || s >= sc.Size() {
		return nil, fmt.Errorf("storage: %s: %w: storage index %d of %d",
			sc.Key(), multiindex.ErrOutOfRange, s, sc.Size())
	}
	m := make([]int, len(sc.Dims()))
	sc.ToMultiIndex(s, m)
	return m, nil
}

// Expand writes the full row-major tensor of a compactly stored object into
// dst (len(dst) == sc.Dims().NumElements()), using get to read stored scalars.
func Expand[T ~float32 | ~float64](sc Scheme, get func(s int) T, dst []T) {
	dims := sc.Dims()
	flat := 0
	for m := range multiindex.All(dims) {
		if sc.IsProceduralZero(m) {
			dst[flat] = 0
		} else {
			dst[flat] = T(sc.ScaleFactor(m)) * get(sc.ToStorage(m))
		}
		flat++
	}
}

func dimsKey(d multiindex.Dims) string {
	return fmt.Sprint([]int(d))
}
