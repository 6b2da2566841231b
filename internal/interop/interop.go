// Package interop exchanges order-2 tensors with gonum matrices.
//
// General storage is row-major with the first factor most significant, which
// is exactly gonum's dense layout, so ToDense shares memory with the tensor.
package interop

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/storage"
	"github.com/born-ml/tensoralg/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotMatrix is returned for tensors that are not 2-tensors of the
	// required kind.
	ErrNotMatrix = errors.New("interop: not a matrix")

	// ErrShape is returned when a matrix does not fit the target space.
	ErrShape = errors.New("interop: shape mismatch")

	// ErrFactorization is returned when an eigen decomposition fails.
	ErrFactorization = errors.New("interop: factorization failed")
)

// ToDense returns a *mat.Dense that shares storage with t, a tensor over the
// tensor product of two spaces. Writes through either are visible in both.
func ToDense(t *tensor.Tensor[float64]) (*mat.Dense, error) {
	sp := t.Space()
	f := sp.Factors()
	if sp.Kind() != space.TensorProduct || len(f) != 2 {
		return nil, fmt.Errorf("%w: %s is not a tensor product of two spaces", ErrNotMatrix, sp)
	}
	r, c := f[0].Dim(), f[1].Dim()
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: %s has an empty factor", ErrShape, sp)
	}
	return mat.NewDense(r, c, t.Data()), nil
}

// FromDense copies m into a new tensor over sp, the tensor product of two
// spaces whose dimensions match m.
func FromDense(m mat.Matrix, sp *space.Space) (*tensor.Tensor[float64], error) {
	f := sp.Factors()
	if sp.Kind() != space.TensorProduct || len(f) != 2 {
		return nil, fmt.Errorf("%w: %s is not a tensor product of two spaces", ErrNotMatrix, sp)
	}
	r, c := m.Dims()
	if r != f[0].Dim() || c != f[1].Dim() {
		return nil, fmt.Errorf("%w: %dx%d matrix into %s", ErrShape, r, c, sp)
	}
	out := tensor.Zeros[float64](sp)
	data := out.Data()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = m.At(i, j)
		}
	}
	return out, nil
}

// ToSymDense expands a symmetric 2-tensor into a *mat.SymDense.
func ToSymDense(t *tensor.Tensor[float64]) (*mat.SymDense, error) {
	sp := t.Space()
	if sp.Kind() != space.SymmetricPower || sp.Order() != 2 {
		return nil, fmt.Errorf("%w: %s is not a symmetric 2-tensor", ErrNotMatrix, sp)
	}
	n := sp.Factors()[0].Dim()
	if n == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrShape, sp)
	}
	full := make([]float64, n*n)
	storage.Expand(sp.Scheme(), t.ComponentUnchecked, full)
	return mat.NewSymDense(n, full), nil
}

// FromSymDense packs the lower triangle of m into a new tensor over sp, a
// symmetric 2-tensor space of matching dimension.
func FromSymDense(m mat.Symmetric, sp *space.Space) (*tensor.Tensor[float64], error) {
	if sp.Kind() != space.SymmetricPower || sp.Order() != 2 {
		return nil, fmt.Errorf("%w: %s is not a symmetric 2-tensor", ErrNotMatrix, sp)
	}
	n := m.SymmetricDim()
	if n != sp.Factors()[0].Dim() {
		return nil, fmt.Errorf("%w: %dx%d matrix into %s", ErrShape, n, n, sp)
	}
	out := tensor.Zeros[float64](sp)
	sc := sp.Scheme()
	data := out.Data()
	pair := make([]int, 2)
	for s := range data {
		sc.ToMultiIndex(s, pair)
		data[s] = m.At(pair[0], pair[1])
	}
	return out, nil
}

// SymmetricEigenvalues returns the eigenvalues of a symmetric 2-tensor in
// ascending order.
func SymmetricEigenvalues(t *tensor.Tensor[float64]) ([]float64, error) {
	sym, err := ToSymDense(t)
	if err != nil {
		return nil, err
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, false); !ok {
		return nil, fmt.Errorf("%w: eigen decomposition of %s", ErrFactorization, t.Space())
	}
	return es.Values(nil), nil
}
