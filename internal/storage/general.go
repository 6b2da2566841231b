package storage

import (
	"fmt"
	"iter"

	"github.com/born-ml/tensoralg/internal/multiindex"
)

// GeneralScheme stores every component: storage index == row-major flat index.
type GeneralScheme struct {
	dims multiindex.Dims
}

// NewGeneral creates the no-symmetry scheme over dims.
func NewGeneral(dims ...int) (*GeneralScheme, error) {
	d := multiindex.Dims(dims)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDimension, err)
	}
	return &GeneralScheme{dims: d.Clone()}, nil
}

// Class implements Scheme.
func (g *GeneralScheme) Class() Class { return General }

// Dims implements Scheme.
func (g *GeneralScheme) Dims() multiindex.Dims { return g.dims }

// Size implements Scheme.
func (g *GeneralScheme) Size() int { return g.dims.NumElements() }

// ToMultiIndex implements Scheme.
func (g *GeneralScheme) ToMultiIndex(s int, dst []int) { g.dims.Decompose(s, dst) }

// ToStorage implements Scheme.
func (g *GeneralScheme) ToStorage(m []int) int { return g.dims.Compose(m) }

// IsProceduralZero implements Scheme.
func (g *GeneralScheme) IsProceduralZero([]int) bool { return false }

// ScaleFactor implements Scheme.
func (g *GeneralScheme) ScaleFactor([]int) int { return 1 }

// Preimage implements Scheme.
func (g *GeneralScheme) Preimage(s int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		m := make([]int, len(g.dims))
		g.dims.Decompose(s, m)
		yield(1, m)
	}
}

// Key implements Scheme.
func (g *GeneralScheme) Key() string { return "general" + dimsKey(g.dims) }
