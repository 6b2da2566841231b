// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/born-ml/tensoralg/tensor"
)

func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}

func ExampleMul() {
	v := must(tensor.NewVector("V", tensor.Real, 2))
	m := must(tensor.NewTensorProduct(v, v.Dual()))

	a := must(tensor.FromSlice(m, []float64{1, 2, 3, 4}))
	x := must(tensor.FromSlice(v, []float64{1, 1}))

	// (Ax)_i = A_ij x_j
	ai := must(tensor.Index(a, "i", "j"))
	xj := must(tensor.Index(x, "j"))
	y := must(tensor.Materialize(must(tensor.Mul(ai, xj))))

	fmt.Println(y.Data())
	// Output: [3 7]
}

func ExampleEinsum() {
	v := must(tensor.NewVector("V", tensor.Real, 2))
	m := must(tensor.NewTensorProduct(v, v.Dual()))
	a := must(tensor.FromSlice(m, []float64{1, 2, 3, 4}))

	trace := must(tensor.Einsum("ii", a))
	fmt.Println(trace.Data())
	// Output: [5]
}

func ExampleTensor_At() {
	v := must(tensor.NewVector("V", tensor.Real, 3))

	sym := must(tensor.FromSlice(must(tensor.NewSymmetricPower(v, 2)), []float64{1, 2, 3, 4, 5, 6}))
	fmt.Println(sym.Len(), must(sym.At(0, 1)), must(sym.At(1, 0)))

	ext := must(tensor.FromSlice(must(tensor.NewExteriorPower(v, 2)), []float64{1, 2, 3}))
	fmt.Println(ext.Len(), must(ext.At(1, 0)), must(ext.At(0, 1)), must(ext.At(1, 1)))
	// Output:
	// 6 2 2
	// 3 1 -1 0
}

func ExampleBundle() {
	v := must(tensor.NewVector("V", tensor.Real, 2))
	sym := must(tensor.NewSymmetricPower(v, 2))
	x := must(tensor.FromSlice(v, []float64{1, 2}))

	// x_i x_j is symmetric, so it can be stored as one index over Sym2(V).
	outer := must(tensor.Mul(must(tensor.Index(x, "i")), must(tensor.Index(x, "j"))))
	b := must(tensor.Bundle(outer, []tensor.Label{"i", "j"}, sym, "s"))
	g := must(tensor.Materialize(b))

	fmt.Println(g.Space().Kind(), g.Data())
	// Output: symmetric [1 2 4]
}

func ExampleBundleUnchecked() {
	v := must(tensor.NewVector("V", tensor.Real, 2))
	w := must(tensor.NewVector("W", tensor.Real, 2))
	sym := must(tensor.NewSymmetricPower(v, 2))
	x := must(tensor.FromSlice(v, []float64{1, 2}))
	y := must(tensor.FromSlice(w, []float64{3, 4}))
	outer := must(tensor.Mul(must(tensor.Index(x, "i")), must(tensor.Index(y, "j"))))

	// j ranges over W, so only the unchecked form accepts Sym2(V) as target.
	_, err := tensor.Bundle(outer, []tensor.Label{"i", "j"}, sym, "s")
	fmt.Println(err != nil)

	b := must(tensor.BundleUnchecked(outer, []tensor.Label{"i", "j"}, sym, "s"))
	fmt.Println(must(tensor.Materialize(b)).Data())
	// Output:
	// true
	// [3 6 8]
}

func ExampleEvaluateUnchecked() {
	v := must(tensor.NewVector("V", tensor.Real, 2))
	m := must(tensor.NewTensorProduct(v, v.Dual()))
	a := must(tensor.FromSlice(m, []float64{1, 2, 3, 4}))
	x := must(tensor.FromSlice(v, []float64{1, 1}))
	ax := must(tensor.Mul(must(tensor.Index(a, "i", "j")), must(tensor.Index(x, "j"))))

	fmt.Println(tensor.EvaluateUnchecked(ax, 1))
	_, err := tensor.Evaluate(ax, 2)
	fmt.Println(err != nil)
	// Output:
	// 7
	// true
}

func ExampleMultiIndex() {
	dims := tensor.Dims{2, 3}
	var visited []string
	for m := tensor.StartMultiIndex(dims); !m.AtEnd(); m.Increment() {
		visited = append(visited, fmt.Sprintf("%v=%d", m, m.Flat()))
	}
	fmt.Println(strings.Join(visited, " "))

	m := must(tensor.MultiIndexFromFlat(5, dims))
	lead, trail := must(m.Leading(1)), must(m.Trailing(1))
	fmt.Println(m, lead, trail, lead.Concat(trail).Equal(m))

	_, err := tensor.NewMultiIndex(dims, 2, 0)
	fmt.Println(err != nil)
	// Output:
	// (0,0)=0 (0,1)=1 (0,2)=2 (1,0)=3 (1,1)=4 (1,2)=5
	// (1,2) (1) (2) true
	// true
}

func ExampleEmbed() {
	v := must(tensor.NewVector("V", tensor.Real, 3))
	sym := must(tensor.NewSymmetricPower(v, 2))
	full := must(tensor.NewTensorProduct(v, v))
	g := must(tensor.FromSlice(sym, []float64{1, 2, 3, 4, 5, 6}))

	reg := tensor.NewRegistry()
	e := must(tensor.Embed(must(tensor.Index(g, "a")), "a", full, reg))
	out := must(tensor.Materialize(e, tensor.WithParallel(tensor.Sequential())))

	fmt.Println(out.Data())
	// Output: [1 2 4 2 3 5 4 5 6]
}

func ExampleWriteFile() {
	dir, err := os.MkdirTemp("", "talg")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "g.talg")

	v := must(tensor.NewVector("V", tensor.Real, 2))
	g := must(tensor.FromSlice(must(tensor.NewExteriorPower(v, 2)), []float32{7}))
	if err := tensor.WriteFile(path, nil, tensor.RecordOf("omega", g)); err != nil {
		panic(err)
	}

	records := must(tensor.ReadFile(path))
	back := must(tensor.TensorOf[float32](records[0]))
	fmt.Println(records[0].Name, back.Space().Kind(), back.Data())
	// Output: omega exterior [7]
}
