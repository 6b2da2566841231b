// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides indexed tensor algebra over symmetry-reduced storage.
//
// # Overview
//
// A Space describes what kind of tensor a value is: a vector space, a tensor
// product, a symmetric or exterior power, or a diagonal 2-tensor space. Each
// space stores only its independent components:
//   - symmetric tensors store one scalar per non-increasing index tuple
//   - antisymmetric tensors store one scalar per strictly decreasing tuple;
//     repeated indices are identically zero and index order flips the sign
//   - diagonal 2-tensors store only their diagonal, scalar 2-tensors one value
//
// Tensors are indexed with labels to build expressions. A label shared by two
// slots of dual spaces is summed (Einstein notation); every other label is a
// free index of the result.
//
// # Basic Usage
//
//	import "github.com/born-ml/tensoralg/tensor"
//
//	func main() {
//	    v, _ := tensor.NewVector("V", tensor.Real, 3)
//	    a, _ := tensor.FromSlice(must(tensor.NewTensorProduct(v, v.Dual())), data)
//	    x, _ := tensor.FromSlice(v, []float64{1, 2, 3})
//
//	    ai, _ := tensor.Index(a, "i", "j")
//	    xj, _ := tensor.Index(x, "j")
//	    ax, _ := tensor.Mul(ai, xj)        // (Ax)_i = A_ij x_j
//	    y, _ := tensor.Materialize(ax)
//	}
//
// The same product as an einsum equation:
//
//	y, err := tensor.Einsum("ij,j->i", a, x)
//
// # Symmetry Classes
//
// Bundle groups free indices into a single index over a symmetric or
// antisymmetric space; Split undoes it. Embed maps a slot into a larger
// representation of the same tensors (for example a symmetric matrix into a
// full tensor product), Coembed is its transpose.
//
// # Concurrency
//
// Expressions are immutable once built and may be evaluated from several
// goroutines. Materialize and Assign split the output components across
// goroutines; use WithParallel to tune or disable this. Assign refuses to
// write a tensor that the right-hand side reads.
//
// # Persistence
//
// WriteFile and ReadFile store named tensors with their spaces in the .talg
// format.
package tensor
