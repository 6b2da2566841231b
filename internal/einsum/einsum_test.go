package einsum

import (
	"math/rand"
	"testing"

	"github.com/born-ml/tensoralg/internal/expr"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func labels(s string) []index.Label {
	out := make([]index.Label, 0, len(s))
	for _, r := range s {
		out = append(out, index.Label(string(r)))
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		equation string
		inputs   []string
		output   string
		explicit bool
	}{
		{"ij,jk->ik", []string{"ij", "jk"}, "ik", true},
		{"ij,jk", []string{"ij", "jk"}, "ik", false},
		{"i,i->", []string{"i", "i"}, "", true},
		{"ii", []string{"ii"}, "", false},
		{" k a , a x ", []string{"ka", "ax"}, "kx", false},
		{"i,j->ji", []string{"i", "j"}, "ji", true},
	}
	for _, tt := range tests {
		t.Run(tt.equation, func(t *testing.T) {
			eq, err := Parse(tt.equation)
			require.NoError(t, err)
			require.Len(t, eq.Inputs, len(tt.inputs))
			for i, in := range tt.inputs {
				assert.Equal(t, labels(in), eq.Inputs[i])
			}
			assert.Equal(t, labels(tt.output), append([]index.Label{}, eq.Output...))
			assert.Equal(t, tt.explicit, eq.Explicit)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, eq := range []string{"", "->i", "ij->jk->k", "i1,j", "ij->k", "ij->ii"} {
		_, err := Parse(eq)
		assert.ErrorIs(t, err, ErrSyntax, eq)
	}
}

func TestEquationString(t *testing.T) {
	eq, err := Parse("ij, jk")
	require.NoError(t, err)
	assert.Equal(t, "ij,jk->ik", eq.String())
}

func TestEvaluateMatrixProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	u, err := space.NewVector("U", space.Real, 3)
	require.NoError(t, err)
	v, err := space.NewVector("V", space.Real, 4)
	require.NoError(t, err)
	uv, err := space.NewTensorProduct(u, v.Dual())
	require.NoError(t, err)
	vu, err := space.NewTensorProduct(v, u.Dual())
	require.NoError(t, err)

	a := tensor.Randn[float64](uv, rng)
	b := tensor.Randn[float64](vu, rng)

	out, err := Evaluate("ij,jk->ik", []*tensor.Tensor[float64]{a, b})
	require.NoError(t, err)

	var want mat.Dense
	want.Mul(mat.NewDense(3, 4, a.Data()), mat.NewDense(4, 3, b.Data()))
	assert.InDeltaSlice(t, want.RawMatrix().Data, out.Data(), 1e-12)

	// Transposed output.
	outT, err := Evaluate("ij,jk->ki", []*tensor.Tensor[float64]{a, b})
	require.NoError(t, err)
	var wantT mat.Dense
	wantT.CloneFrom(want.T())
	assert.InDeltaSlice(t, wantT.RawMatrix().Data, outT.Data(), 1e-12)
}

func TestEvaluateTraceAndDot(t *testing.T) {
	v, err := space.NewVector("V", space.Real, 3)
	require.NoError(t, err)
	vv, err := space.NewTensorProduct(v, v.Dual())
	require.NoError(t, err)
	m, err := tensor.FromSlice(vv, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	tr, err := Evaluate("ii", []*tensor.Tensor[float64]{m})
	require.NoError(t, err)
	assert.Equal(t, []float64{15}, tr.Data())

	x, err := tensor.FromSlice(v, []float64{1, 2, 3})
	require.NoError(t, err)
	y, err := tensor.FromSlice(v.Dual(), []float64{4, 5, 6})
	require.NoError(t, err)
	dot, err := Evaluate("i,i->", []*tensor.Tensor[float64]{x, y})
	require.NoError(t, err)
	assert.Equal(t, []float64{32}, dot.Data())

	// Three operands: y(i) m(i,j) x(j).
	chain, err := Evaluate("i,ij,j", []*tensor.Tensor[float64]{y, m, x})
	require.NoError(t, err)
	assert.Equal(t, []float64{516}, chain.Data())
}

func TestBuildErrors(t *testing.T) {
	v, err := space.NewVector("V", space.Real, 2)
	require.NoError(t, err)
	x := tensor.Zeros[float64](v)

	eq, err := Parse("i,j->ij")
	require.NoError(t, err)
	_, _, err = Build(eq, x)
	assert.ErrorIs(t, err, ErrOperandCount)

	// Summing a single slot is not allowed.
	eq, err = Parse("ij->i")
	require.NoError(t, err)
	vv, err := space.NewTensorProduct(v, v)
	require.NoError(t, err)
	_, _, err = Build(eq, tensor.Zeros[float64](vv))
	assert.ErrorIs(t, err, ErrOutputMismatch)

	// Wrong number of labels for the operand.
	eq, err = Parse("ij")
	require.NoError(t, err)
	_, _, err = Build(eq, x)
	assert.ErrorIs(t, err, expr.ErrArity)

	// V paired with V is not a contraction.
	eq, err = Parse("i,i->")
	require.NoError(t, err)
	_, _, err = Build(eq, x, x)
	assert.ErrorIs(t, err, index.ErrNonDualPairing)
}
