// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensoralg/internal/einsum"
	"github.com/born-ml/tensoralg/internal/embedding"
	"github.com/born-ml/tensoralg/internal/expr"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/parallel"
)

// Label names one index slot of an expression.
type Label = index.Label

// Node is an indexed expression: a lazily evaluated tensor with labelled
// free indices.
type Node[T Scalar] = expr.Node[T]

// BuildError describes an expression rejected by a builder.
// It unwraps to one of the expr sentinel errors.
type BuildError = expr.BuildError

// Option configures Materialize and Assign.
type Option = expr.Option

// ParallelConfig controls how output components are split across goroutines.
type ParallelConfig = parallel.Config

// Registry caches co-embedding lookup tables. It is safe for concurrent use;
// share one per program.
type Registry = embedding.Registry

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return embedding.NewRegistry()
}

// WithParallel sets the parallel configuration.
func WithParallel(cfg ParallelConfig) Option {
	return expr.WithParallel(cfg)
}

// Sequential returns a configuration that evaluates on the calling goroutine.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}

// Builders

// Index labels the slots of t. A label repeated on dual slots is a trace.
//
// Example:
//
//	ai, err := tensor.Index(a, "i", "j")
func Index[T Scalar](t *Tensor[T], labels ...Label) (Node[T], error) {
	return expr.Index(t, labels...)
}

// Add returns left + right. Both must have the same free labels over the
// same spaces, in any order.
func Add[T Scalar](left, right Node[T]) (Node[T], error) {
	return expr.Add(left, right)
}

// Sub returns left - right.
func Sub[T Scalar](left, right Node[T]) (Node[T], error) {
	return expr.Sub(left, right)
}

// Mul returns left * right, summed over the labels they share.
func Mul[T Scalar](left, right Node[T]) (Node[T], error) {
	return expr.Mul(left, right)
}

// Scale returns s * n.
func Scale[T Scalar](n Node[T], s T) Node[T] {
	return expr.Scale(n, s)
}

// Div returns n / s. Division by zero is rejected.
func Div[T Scalar](n Node[T], s T) (Node[T], error) {
	return expr.Div(n, s)
}

// Negate returns -n.
func Negate[T Scalar](n Node[T]) Node[T] {
	return expr.Negate(n)
}

// Bundle groups the free labels of n into one index newLabel over target,
// a symmetric or exterior power. n must already have the target's symmetry.
func Bundle[T Scalar](n Node[T], labels []Label, target *Space, newLabel Label) (Node[T], error) {
	return expr.Bundle(n, labels, target, newLabel)
}

// BundleUnchecked is Bundle checking only that slot dimensions agree, so
// slots may be reinterpreted as factors of another space of equal dimension.
func BundleUnchecked[T Scalar](n Node[T], labels []Label, target *Space, newLabel Label) (Node[T], error) {
	return expr.BundleUnchecked(n, labels, target, newLabel)
}

// Split replaces a bundled index by one index per factor.
func Split[T Scalar](n Node[T], label Label, newLabels ...Label) (Node[T], error) {
	return expr.Split(n, label, newLabels...)
}

// Embed maps the slot label of n into codomain.
func Embed[T Scalar](n Node[T], label Label, codomain *Space, reg *Registry) (Node[T], error) {
	return expr.Embed(n, label, codomain, reg)
}

// Coembed maps the slot label of n back to domain by the transpose of the
// embedding.
func Coembed[T Scalar](n Node[T], label Label, domain *Space, reg *Registry) (Node[T], error) {
	return expr.Coembed(n, label, domain, reg)
}

// Evaluation

// Evaluate returns the component of n at the given free-index values.
func Evaluate[T Scalar](n Node[T], vals ...int) (T, error) {
	return expr.Evaluate(n, vals...)
}

// EvaluateUnchecked is Evaluate without validation. vals must hold one
// in-range value per free index.
func EvaluateUnchecked[T Scalar](n Node[T], vals ...int) T {
	return expr.EvaluateUnchecked(n, vals...)
}

// Materialize evaluates every component of n into a new tensor whose slots
// follow n's free labels.
func Materialize[T Scalar](n Node[T], opts ...Option) (*Tensor[T], error) {
	return expr.Materialize(n, opts...)
}

// MaterializeAs is Materialize with the result slots in labels order.
func MaterializeAs[T Scalar](n Node[T], labels []Label, opts ...Option) (*Tensor[T], error) {
	return expr.MaterializeAs(n, labels, opts...)
}

// Assign writes rhs into target, whose slots carry labels.
func Assign[T Scalar](target *Tensor[T], labels []Label, rhs Node[T], opts ...Option) error {
	return expr.Assign(target, labels, rhs, opts...)
}

// Einsum evaluates an einsum equation such as "ij,jk->ik" over operands.
func Einsum[T Scalar](equation string, operands ...*Tensor[T]) (*Tensor[T], error) {
	return einsum.Evaluate(equation, operands)
}
