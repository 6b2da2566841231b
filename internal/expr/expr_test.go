package expr

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/tensoralg/internal/embedding"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/born-ml/tensoralg/internal/parallel"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func vec(t *testing.T, name string, dim int) *space.Space {
	t.Helper()
	v, err := space.NewVector(name, space.Real, dim)
	require.NoError(t, err)
	return v
}

func product(t *testing.T, factors ...*space.Space) *space.Space {
	t.Helper()
	s, err := space.NewTensorProduct(factors...)
	require.NoError(t, err)
	return s
}

func idx(t *testing.T, x *tensor.Tensor[float64], labels ...index.Label) Node[float64] {
	t.Helper()
	n, err := Index(x, labels...)
	require.NoError(t, err)
	return n
}

func mul(t *testing.T, a, b Node[float64]) Node[float64] {
	t.Helper()
	n, err := Mul(a, b)
	require.NoError(t, err)
	return n
}

func materialize(t *testing.T, n Node[float64]) *tensor.Tensor[float64] {
	t.Helper()
	out, err := Materialize(n)
	require.NoError(t, err)
	return out
}

func TestMatrixProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u, v, w := vec(t, "U", 2), vec(t, "V", 3), vec(t, "W", 4)
	a := tensor.Randn[float64](product(t, u, v.Dual()), rng)
	b := tensor.Randn[float64](product(t, v, w.Dual()), rng)

	ab := mul(t, idx(t, a, "i", "j"), idx(t, b, "j", "k"))
	assert.Equal(t, []index.Label{"i", "k"}, index.Labels(ab.Free()))
	assert.Equal(t, []index.Label{"j"}, ab.Summed())

	out := materialize(t, ab)
	assert.True(t, out.Space().Equal(product(t, u, w.Dual())))

	var want mat.Dense
	want.Mul(mat.NewDense(2, 3, a.Data()), mat.NewDense(3, 4, b.Data()))
	assert.InDeltaSlice(t, want.RawMatrix().Data, out.Data(), 1e-12)
}

func TestContractionAssociativity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for n := 1; n <= 5; n++ {
		v := vec(t, "V", n)
		vv := product(t, v, v.Dual())
		a := tensor.Randn[float64](vv, rng)
		b := tensor.Randn[float64](vv, rng)
		c := tensor.Randn[float64](vv, rng)

		left := mul(t, mul(t, idx(t, a, "i", "j"), idx(t, b, "j", "k")), idx(t, c, "k", "l"))
		right := mul(t, idx(t, a, "i", "j"), mul(t, idx(t, b, "j", "k"), idx(t, c, "k", "l")))
		assert.Equal(t, []index.Label{"i", "l"}, index.Labels(left.Free()))
		assert.Equal(t, []index.Label{"i", "l"}, index.Labels(right.Free()))

		assert.InDeltaSlice(t, materialize(t, left).Data(), materialize(t, right).Data(), 1e-9, "dim %d", n)
	}
}

func TestDotProductMatchesLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 3, 8} {
		v := vec(t, "V", n)
		x := tensor.Randn[float64](v, rng)
		y := tensor.Randn[float64](v.Dual(), rng)

		got, err := Evaluate(mul(t, idx(t, x, "i"), idx(t, y, "i")))
		require.NoError(t, err)

		var want float64
		for i := 0; i < n; i++ {
			want += x.Data()[i] * y.Data()[i]
		}
		assert.Equal(t, want, got)
	}
}

func TestTraceInsideLeaf(t *testing.T) {
	v := vec(t, "V", 3)
	m, err := tensor.FromSlice(product(t, v, v.Dual()), []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	tr := idx(t, m, "i", "i")
	assert.Empty(t, tr.Free())
	got, err := Evaluate(tr)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got)

	// A repeated label over two copies of V is not a natural pairing.
	sq, err := tensor.FromSlice(product(t, v, v), m.Data())
	require.NoError(t, err)
	_, err = Index(sq, "i", "i")
	assert.ErrorIs(t, err, index.ErrNonDualPairing)
}

func TestAddRemapsFreeOrder(t *testing.T) {
	v := vec(t, "V", 2)
	m, err := tensor.FromSlice(product(t, v, v), []float64{1, 2, 3, 4})
	require.NoError(t, err)

	sum, err := Add(idx(t, m, "i", "j"), idx(t, m, "j", "i"))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, 5, 8}, materialize(t, sum).Data())

	diff, err := Sub(idx(t, m, "i", "j"), idx(t, m, "j", "i"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1, 1, 0}, materialize(t, diff).Data())
}

func TestAddRejectsMismatch(t *testing.T) {
	v, w := vec(t, "V", 2), vec(t, "W", 2)
	x := tensor.Zeros[float64](v)
	y := tensor.Zeros[float64](w)
	z := tensor.Zeros[float64](v.Dual())

	_, err := Add(idx(t, x, "i"), idx(t, x, "j"))
	assert.ErrorIs(t, err, ErrFreeMismatch)

	_, err = Add(idx(t, x, "i"), idx(t, y, "i"))
	assert.ErrorIs(t, err, ErrFreeMismatch)

	_, err = Sub(idx(t, x, "i"), idx(t, z, "i"))
	assert.ErrorIs(t, err, ErrFreeMismatch)

	var se *BuildError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "sub", se.Op)
}

func TestScaleDivNegate(t *testing.T) {
	v := vec(t, "V", 3)
	x, err := tensor.FromSlice(v, []float64{1, -2, 4})
	require.NoError(t, err)
	n := idx(t, x, "i")

	assert.Equal(t, []float64{3, -6, 12}, materialize(t, Scale(n, 3)).Data())
	assert.Equal(t, []float64{-1, 2, -4}, materialize(t, Negate(n)).Data())

	half, err := Div(n, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1, 2}, materialize(t, half).Data())

	_, err = Div(n, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSymmetricAntisymmetricDecomposition(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, n := range []int{2, 3, 4, 10} {
		v := vec(t, "V", n)
		x := tensor.Randn[float64](product(t, v, v), rng)
		sym2, err := space.NewSymmetricPower(v, 2)
		require.NoError(t, err)
		ext2, err := space.NewExteriorPower(v, 2)
		require.NoError(t, err)

		plus, err := Add(idx(t, x, "i", "j"), idx(t, x, "j", "i"))
		require.NoError(t, err)
		minus, err := Sub(idx(t, x, "i", "j"), idx(t, x, "j", "i"))
		require.NoError(t, err)

		symPart, err := Bundle(Scale(plus, 0.5), []index.Label{"i", "j"}, sym2, "s")
		require.NoError(t, err)
		antiPart, err := Bundle(Scale(minus, 0.5), []index.Label{"i", "j"}, ext2, "a")
		require.NoError(t, err)

		s := materialize(t, symPart)
		a := materialize(t, antiPart)
		assert.True(t, s.Space().Equal(sym2))
		assert.True(t, a.Space().Equal(ext2))
		assert.Len(t, s.Data(), n*(n+1)/2)
		assert.Len(t, a.Data(), n*(n-1)/2)

		sSplit, err := Split(idx(t, s, "s"), "s", "i", "j")
		require.NoError(t, err)
		aSplit, err := Split(idx(t, a, "a"), "a", "i", "j")
		require.NoError(t, err)
		sum, err := Add(sSplit, aSplit)
		require.NoError(t, err)

		assert.InDeltaSlice(t, x.Data(), materialize(t, sum).Data(), 1e-12, "dim %d", n)
	}
}

func TestSplitProceduralZero(t *testing.T) {
	v := vec(t, "V", 3)
	ext2, err := space.NewExteriorPower(v, 2)
	require.NoError(t, err)
	a, err := tensor.FromSlice(ext2, []float64{1, 2, 3})
	require.NoError(t, err)

	full := materialize(t, mustSplit(t, idx(t, a, "a"), "a", "i", "j"))
	d := full.Data()
	for i := 0; i < 3; i++ {
		assert.Zero(t, d[i*3+i])
		for j := 0; j < 3; j++ {
			assert.Equal(t, -d[j*3+i], d[i*3+j])
		}
	}
	// (1,0) is canonical: stored value, sign +1.
	assert.Equal(t, 1.0, d[1*3+0])
	assert.Equal(t, -1.0, d[0*3+1])
}

func mustSplit(t *testing.T, n Node[float64], l index.Label, labels ...index.Label) Node[float64] {
	t.Helper()
	out, err := Split(n, l, labels...)
	require.NoError(t, err)
	return out
}

func TestBundleErrors(t *testing.T) {
	v, w := vec(t, "V", 3), vec(t, "W", 3)
	sym2, err := space.NewSymmetricPower(v, 2)
	require.NoError(t, err)
	x := tensor.Zeros[float64](product(t, v, w))
	n := idx(t, x, "i", "j")

	tests := []struct {
		name   string
		labels []index.Label
		target *space.Space
		label  index.Label
		want   error
	}{
		{"not free", []index.Label{"i", "k"}, sym2, "s", ErrNotFree},
		{"arity", []index.Label{"i"}, sym2, "s", ErrArity},
		{"collision", []index.Label{"i", "j"}, sym2, "i", ErrLabelCollision},
		{"twice", []index.Label{"i", "i"}, sym2, "s", ErrLabelCollision},
		{"factor mismatch", []index.Label{"i", "j"}, sym2, "s", ErrFactorMismatch},
		{"not composite", []index.Label{"i"}, v, "s", ErrNotComposite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bundle(n, tt.labels, tt.target, tt.label)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// W has V's dimension: only the checked form insists on equal factors.
	b, err := BundleUnchecked(n, []index.Label{"i", "j"}, sym2, "s")
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"s"}, index.Labels(b.Free()))
}

func TestBundleKeepsRemainingOrder(t *testing.T) {
	u, v := vec(t, "U", 2), vec(t, "V", 2)
	sym2, err := space.NewSymmetricPower(v, 2)
	require.NoError(t, err)
	data := make([]float64, 8)
	for i := range data {
		data[i] = float64(i)
	}
	x, err := tensor.FromSlice(product(t, v, u, v), data)
	require.NoError(t, err)

	b, err := Bundle(idx(t, x, "i", "k", "j"), []index.Label{"i", "j"}, sym2, "s")
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"k", "s"}, index.Labels(b.Free()))

	// s = 1 is the canonical pair (1,0): x(1, k, 0).
	for k := 0; k < 2; k++ {
		got, err := Evaluate(b, k, 1)
		require.NoError(t, err)
		assert.Equal(t, data[1*4+k*2+0], got)
	}
}

func TestSplitErrors(t *testing.T) {
	v := vec(t, "V", 3)
	sym2, err := space.NewSymmetricPower(v, 2)
	require.NoError(t, err)
	s := tensor.Zeros[float64](sym2)
	x := tensor.Zeros[float64](v)
	n, err := Mul(idx(t, s, "s"), idx(t, x, "k"))
	require.NoError(t, err)

	_, err = Split(n, "z", "i", "j")
	assert.ErrorIs(t, err, ErrNotFree)
	_, err = Split(n, "k", "i")
	assert.ErrorIs(t, err, ErrNotComposite)
	_, err = Split(n, "s", "i")
	assert.ErrorIs(t, err, ErrArity)
	_, err = Split(n, "s", "i", "k")
	assert.ErrorIs(t, err, ErrLabelCollision)
	_, err = Split(n, "s", "i", "i")
	assert.ErrorIs(t, err, ErrLabelCollision)

	sp, err := Split(n, "s", "s", "j")
	require.NoError(t, err)
	assert.Equal(t, []index.Label{"s", "j", "k"}, index.Labels(sp.Free()))
}

func TestEmbedDiagonalIntoProduct(t *testing.T) {
	v, w := vec(t, "V", 3), vec(t, "W", 4)
	diag, err := space.NewDiagonal2(v, w)
	require.NoError(t, err)
	assert.Equal(t, 3, diag.Dim())
	d, err := tensor.FromSlice(diag, []float64{1, 2, 3})
	require.NoError(t, err)

	reg := embedding.NewRegistry()
	e, err := Embed(idx(t, d, "k"), "k", product(t, v, w), reg)
	require.NoError(t, err)
	full := materialize(t, mustSplit(t, e, "k", "i", "j"))
	require.True(t, full.Space().Equal(product(t, v, w)))

	want := make([]float64, 12)
	for k := 0; k < 3; k++ {
		want[k*4+k] = float64(k + 1)
	}
	assert.Equal(t, want, full.Data())
}

func TestCoembedIsTranspose(t *testing.T) {
	v := vec(t, "V", 3)
	sym2, err := space.NewSymmetricPower(v, 2)
	require.NoError(t, err)
	s, err := tensor.FromSlice(sym2, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	reg := embedding.NewRegistry()

	e, err := Embed(idx(t, s, "s"), "s", product(t, v, v), reg)
	require.NoError(t, err)
	back, err := Coembed(e, "s", sym2, reg)
	require.NoError(t, err)

	// Off-diagonal components are stored once but appear twice in V (x) V.
	assert.Equal(t, []float64{1, 4, 3, 8, 10, 6}, materialize(t, back).Data())

	_, err = Embed(idx(t, s, "s"), "s", v, reg)
	assert.ErrorIs(t, err, embedding.ErrIncompatibleSpaces)
	ext2, err := space.NewExteriorPower(v, 2)
	require.NoError(t, err)
	_, err = Embed(idx(t, s, "s"), "s", ext2, nil)
	assert.ErrorIs(t, err, embedding.ErrNotEmbeddable)
}

func TestAssignRejectsAliasing(t *testing.T) {
	v := vec(t, "V", 3)
	rng := rand.New(rand.NewSource(5))
	a := tensor.Randn[float64](product(t, v, v.Dual()), rng)
	u, err := tensor.FromSlice(v, []float64{1, 2, 3})
	require.NoError(t, err)

	rhs := mul(t, idx(t, a, "i", "j"), idx(t, u, "j"))
	err = Assign(u, []index.Label{"i"}, rhs)
	assert.ErrorIs(t, err, ErrAliasing)
	assert.Equal(t, []float64{1, 2, 3}, u.Data())

	// Materializing an intermediate copy breaks the alias.
	tmp := u.Clone()
	rhs = mul(t, idx(t, a, "i", "j"), idx(t, tmp, "j"))
	require.NoError(t, Assign(u, []index.Label{"i"}, rhs))
	assert.Equal(t, materialize(t, rhs).Data(), u.Data())
}

func TestAssignPermutesLabels(t *testing.T) {
	v, w := vec(t, "V", 2), vec(t, "W", 3)
	x, err := tensor.FromSlice(product(t, v, w), []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	y := tensor.Zeros[float64](product(t, w, v))

	require.NoError(t, Assign(y, []index.Label{"j", "i"}, idx(t, x, "i", "j")))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, y.Data())

	err = Assign(y, []index.Label{"i", "j"}, idx(t, x, "i", "j"))
	assert.ErrorIs(t, err, ErrFreeMismatch)
	err = Assign(y, []index.Label{"j"}, idx(t, x, "i", "j"))
	assert.ErrorIs(t, err, ErrArity)
}

func TestMaterializeAsTransposes(t *testing.T) {
	v, w := vec(t, "V", 2), vec(t, "W", 3)
	x, err := tensor.FromSlice(product(t, v, w), []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := MaterializeAs(idx(t, x, "i", "j"), []index.Label{"j", "i"})
	require.NoError(t, err)
	assert.True(t, out.Space().Equal(product(t, w, v)))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())

	_, err = MaterializeAs(idx(t, x, "i", "j"), []index.Label{"j", "k"})
	assert.ErrorIs(t, err, ErrFreeMismatch)
	_, err = MaterializeAs(idx(t, x, "i", "j"), []index.Label{"j", "j"})
	assert.ErrorIs(t, err, ErrFreeMismatch)
}

func TestMulRejectsInnerLabelReuse(t *testing.T) {
	v := vec(t, "V", 2)
	a := tensor.Zeros[float64](product(t, v, v.Dual()))
	x := tensor.Zeros[float64](v)
	y := tensor.Zeros[float64](v.Dual())

	ax := mul(t, idx(t, a, "i", "j"), idx(t, x, "j"))
	_, err := Mul(ax, idx(t, y, "j"))
	assert.ErrorIs(t, err, ErrLabelCollision)

	_, err = Mul(idx(t, x, "i"), idx(t, x, "i"))
	assert.ErrorIs(t, err, index.ErrNonDualPairing)
}

func TestEvaluateChecksRange(t *testing.T) {
	v := vec(t, "V", 2)
	x, err := tensor.FromSlice(v, []float64{7, 8})
	require.NoError(t, err)
	n := idx(t, x, "i")

	got, err := Evaluate(n, 1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)
	assert.Equal(t, 7.0, EvaluateUnchecked(n, 0))

	_, err = Evaluate(n, 2)
	assert.ErrorIs(t, err, multiindex.ErrOutOfRange)
	_, err = Evaluate(n, 0, 0)
	assert.ErrorIs(t, err, multiindex.ErrArity)

	_, err = Index(x, "i", "j")
	assert.ErrorIs(t, err, ErrArity)
}

func TestParallelMaterializeIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	v := vec(t, "V", 12)
	vv := product(t, v, v.Dual())
	a := tensor.Randn[float64](vv, rng)
	b := tensor.Randn[float64](vv, rng)
	ab := mul(t, idx(t, a, "i", "j"), idx(t, b, "j", "k"))

	seq, err := Materialize(ab, WithParallel(parallel.Sequential()))
	require.NoError(t, err)
	par, err := Materialize(ab, WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}))
	require.NoError(t, err)
	assert.Equal(t, seq.Data(), par.Data())
}

func TestLeaves(t *testing.T) {
	v := vec(t, "V", 2)
	x := tensor.Zeros[float64](v)
	y := tensor.Zeros[float64](v.Dual())
	n := Negate(mul(t, idx(t, x, "i"), idx(t, y, "i")))

	var got []*tensor.Tensor[float64]
	for leaf := range Leaves(n) {
		got = append(got, leaf)
	}
	require.Len(t, got, 2)
	assert.Same(t, x, got[0])
	assert.Same(t, y, got[1])
	assert.Equal(t, space.Real, Field(n))

	out := materialize(t, n)
	assert.True(t, out.Space().Equal(space.ScalarField(space.Real)))
	assert.Equal(t, []float64{0}, out.Data())
}
