// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// Type aliases for public API

// Scalar is a constraint for tensor component types: float32 or float64.
type Scalar = tensor.Scalar

// DataType represents the component type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Tensor is an element of a Space, stored compactly.
//
// Example:
//
//	v, _ := tensor.NewVector("V", tensor.Real, 3)
//	s, _ := tensor.NewSymmetricPower(v, 2)
//	g := tensor.Zeros[float64](s) // 6 stored components
type Tensor[T Scalar] = tensor.Tensor[T]

// Space describes the kind of tensor a value is and how it is stored.
type Space = space.Space

// Field identifies the scalar field of a space.
type Field = space.Field

// Real is the field of real numbers.
const Real = space.Real

// Kind enumerates the space constructors.
type Kind = space.Kind

// Space kinds.
const (
	Vector         = space.Vector
	TensorProduct  = space.TensorProduct
	SymmetricPower = space.SymmetricPower
	ExteriorPower  = space.ExteriorPower
	Diagonal2      = space.Diagonal2
	Scalar2        = space.Scalar2
)

// Multi-indices

// Dims holds the per-axis bounds of a multi-index.
type Dims = multiindex.Dims

// MultiIndex is a bounded tuple of per-axis indices in row-major order, with
// odometer-style Increment (last axis fastest) and slicing by Leading,
// Trailing, Range and Concat.
//
// Example:
//
//	for m := tensor.StartMultiIndex(tensor.Dims{2, 3}); !m.AtEnd(); m.Increment() {
//		fmt.Println(m.Values(), m.Flat())
//	}
type MultiIndex = multiindex.MultiIndex

// NewMultiIndex creates a multi-index from per-axis values, rejecting values
// outside their bounds.
func NewMultiIndex(dims Dims, vals ...int) (MultiIndex, error) {
	return multiindex.New(dims, vals...)
}

// NewMultiIndexUnchecked is NewMultiIndex without bound checks.
func NewMultiIndexUnchecked(dims Dims, vals ...int) MultiIndex {
	return multiindex.NewUnchecked(dims, vals...)
}

// StartMultiIndex returns the first multi-index for dims.
func StartMultiIndex(dims Dims) MultiIndex {
	return multiindex.Start(dims)
}

// MultiIndexFromFlat decomposes a row-major flat value.
func MultiIndexFromFlat(flat int, dims Dims) (MultiIndex, error) {
	return multiindex.FromFlat(flat, dims)
}

// Space constructors

// NewVector creates a named vector space of the given dimension.
func NewVector(name string, field Field, dim int) (*Space, error) {
	return space.NewVector(name, field, dim)
}

// ScalarField returns the order-0 space of scalars.
func ScalarField(field Field) *Space {
	return space.ScalarField(field)
}

// NewTensorProduct creates the tensor product of factors.
func NewTensorProduct(factors ...*Space) (*Space, error) {
	return space.NewTensorProduct(factors...)
}

// NewSymmetricPower creates the space of symmetric k-tensors over base.
func NewSymmetricPower(base *Space, k int) (*Space, error) {
	return space.NewSymmetricPower(base, k)
}

// NewExteriorPower creates the space of antisymmetric k-tensors over base.
func NewExteriorPower(base *Space, k int) (*Space, error) {
	return space.NewExteriorPower(base, k)
}

// NewDiagonal2 creates the space of diagonal 2-tensors over a and b.
func NewDiagonal2(a, b *Space) (*Space, error) {
	return space.NewDiagonal2(a, b)
}

// NewScalar2 creates the space of scalar multiples of the identity over a and b.
func NewScalar2(a, b *Space) (*Space, error) {
	return space.NewScalar2(a, b)
}

// Creation functions

// Zeros creates a tensor of s with every component zero.
//
// Example:
//
//	x := tensor.Zeros[float32](v)
func Zeros[T Scalar](s *Space) *Tensor[T] {
	return tensor.Zeros[T](s)
}

// Full creates a tensor of s with every stored component set to value.
func Full[T Scalar](s *Space, value T) *Tensor[T] {
	return tensor.Full(s, value)
}

// FromSlice creates a tensor of s from a copy of its compact components.
//
// Example:
//
//	x, err := tensor.FromSlice(v, []float64{1, 2, 3})
func FromSlice[T Scalar](s *Space, data []T) (*Tensor[T], error) {
	return tensor.FromSlice(s, data)
}

// Randn creates a tensor of s with standard normal components drawn from rng.
func Randn[T Scalar](s *Space, rng *rand.Rand) *Tensor[T] {
	return tensor.Randn[T](s, rng)
}
