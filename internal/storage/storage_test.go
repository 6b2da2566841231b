package storage

import (
	"fmt"
	"slices"
	"testing"

	"github.com/born-ml/tensoralg/internal/multiindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustScheme(t *testing.T, sc Scheme, err error) Scheme {
	t.Helper()
	require.NoError(t, err)
	return sc
}

// testSchemes returns one instance of every class at several dimensions.
func testSchemes(t *testing.T) []Scheme {
	t.Helper()
	var out []Scheme
	for _, d := range []int{1, 2, 3, 4, 5} {
		g, err := NewGeneral(d, d+1)
		out = append(out, mustScheme(t, g, err))
		diag, err := NewDiagonal(d, d+1)
		out = append(out, mustScheme(t, diag, err))
		sd, err := NewScalarDiagonal(d, d)
		out = append(out, mustScheme(t, sd, err))
		for k := 1; k <= 3; k++ {
			sym, err := NewSymmetric(d, k)
			out = append(out, mustScheme(t, sym, err))
			if k <= d {
				alt, err := NewAntisymmetric(d, k)
				out = append(out, mustScheme(t, alt, err))
			}
		}
	}
	sym, err := NewSymmetric(3, 2)
	require.NoError(t, err)
	alt, err := NewAntisymmetric(4, 2)
	require.NoError(t, err)
	outer, err := NewDiagonal(sym.Size(), alt.Size())
	require.NoError(t, err)
	nested, err := NewNested(outer, sym, alt)
	require.NoError(t, err)
	prod, err := NewProduct(sym, alt)
	require.NoError(t, err)
	return append(out, nested, prod)
}

func TestBinomial(t *testing.T) {
	tests := []struct{ n, k, want int }{
		{0, 0, 1}, {5, 0, 1}, {5, 5, 1}, {5, 2, 10}, {10, 3, 120},
		{4, 5, 0}, {3, -1, 0}, {-1, 0, 0}, {30, 15, 155117520},
		// The running product r*(n-i) exceeds int64 for these before cancelling.
		{62, 31, 465428353255261088}, {66, 33, 7219428434016265740}, {60, 30, 118264581564861424},
	}
	for _, tt := range tests {
		if got := Binomial(tt.n, tt.k); got != tt.want {
			t.Errorf("Binomial(%d, %d) = %d, want %d", tt.n, tt.k, got, tt.want)
		}
	}
}

func TestCheckedBinomialOverflow(t *testing.T) {
	for _, nk := range [][2]int{{67, 33}, {68, 34}, {70, 35}, {1000, 500}, {89, 30}} {
		_, ok := CheckedBinomial(nk[0], nk[1])
		assert.False(t, ok, "C(%d, %d)", nk[0], nk[1])
	}
	assert.Panics(t, func() { Binomial(70, 35) })

	// Pascal's rule holds right up to the largest row that fits.
	for k := 1; k < 33; k++ {
		c, ok := CheckedBinomial(66, k)
		require.True(t, ok)
		assert.Equal(t, Binomial(65, k-1)+Binomial(65, k), c, "C(66, %d)", k)
	}
}

func TestInverseTriangular(t *testing.T) {
	for n := 0; n < 20000; n++ {
		got := InverseTriangular(n)
		if got*(got+1)/2 > n || (got+1)*(got+2)/2 <= n {
			t.Fatalf("InverseTriangular(%d) = %d", n, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, sc := range testSchemes(t) {
		t.Run(sc.Key(), func(t *testing.T) {
			m := make([]int, len(sc.Dims()))
			for s := 0; s < sc.Size(); s++ {
				sc.ToMultiIndex(s, m)
				require.True(t, sc.Dims().Contains(m), "storage %d decoded to invalid %v", s, m)
				require.False(t, sc.IsProceduralZero(m), "canonical index %v is a procedural zero", m)
				assert.Equal(t, s, sc.ToStorage(m), "round trip of %d via %v", s, m)
				assert.Equal(t, 1, sc.ScaleFactor(m), "canonical index %v has scale 1", m)
			}
		})
	}
}

func TestPreimageMatchesScan(t *testing.T) {
	for _, sc := range testSchemes(t) {
		t.Run(sc.Key(), func(t *testing.T) {
			// Bucket every non-zero full multi-index by storage index.
			want := make(map[int][]string)
			for m := range multiindex.All(sc.Dims()) {
				if sc.IsProceduralZero(m) {
					continue
				}
				s := sc.ToStorage(m)
				want[s] = append(want[s], fmt.Sprintf("%d%v", sc.ScaleFactor(m), m))
			}
			for s := 0; s < sc.Size(); s++ {
				var got []string
				for scale, m := range sc.Preimage(s) {
					got = append(got, fmt.Sprintf("%d%v", scale, m))
				}
				slices.Sort(got)
				slices.Sort(want[s])
				assert.Equal(t, want[s], got, "preimage of %d", s)
			}
		})
	}
}

func TestSizes(t *testing.T) {
	sym, _ := NewSymmetric(3, 2)
	assert.Equal(t, 6, sym.Size())
	sym3, _ := NewSymmetric(4, 3)
	assert.Equal(t, Binomial(6, 3), sym3.Size())
	alt, _ := NewAntisymmetric(3, 2)
	assert.Equal(t, 3, alt.Size())
	alt3, _ := NewAntisymmetric(5, 3)
	assert.Equal(t, 10, alt3.Size())
	diag, _ := NewDiagonal(3, 4)
	assert.Equal(t, 3, diag.Size())
	sd, _ := NewScalarDiagonal(3, 4)
	assert.Equal(t, 1, sd.Size())
	g, _ := NewGeneral(3, 4, 2)
	assert.Equal(t, 24, g.Size())
}

func TestSymmetricStorage(t *testing.T) {
	sym, err := NewSymmetric(3, 2)
	require.NoError(t, err)

	m, err := MultiIndexOf(sym, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, m)

	// Simplicial order puts the triangular numbers 0, 2, 5 on the diagonal, so
	// storage index 3 starts the row of (2,x) rather than holding (1,0),
	// which is at index 1.
	m, err = MultiIndexOf(sym, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, m)
	assert.Equal(t, 1, sym.ScaleFactor(m))
	swapped := []int{m[1], m[0]}
	assert.Equal(t, 3, sym.ToStorage(swapped))
	assert.Equal(t, 1, sym.ScaleFactor(swapped))

	want := [][]int{{0, 0}, {1, 0}, {1, 1}, {2, 0}, {2, 1}, {2, 2}}
	for s, w := range want {
		got, err := MultiIndexOf(sym, s)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.False(t, sym.IsProceduralZero([]int{i, j}))
			assert.Equal(t, sym.ToStorage([]int{i, j}), sym.ToStorage([]int{j, i}))
		}
	}
}

func TestAntisymmetricStorage(t *testing.T) {
	alt, err := NewAntisymmetric(3, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.True(t, alt.IsProceduralZero([]int{i, i}))
		for j := 0; j < 3; j++ {
			if i == j {
				continue
			}
			a, b := []int{i, j}, []int{j, i}
			assert.Equal(t, alt.ToStorage(a), alt.ToStorage(b))
			assert.Equal(t, -alt.ScaleFactor(a), alt.ScaleFactor(b))
		}
	}
	assert.Equal(t, 1, alt.ScaleFactor([]int{2, 0}))
	assert.Equal(t, -1, alt.ScaleFactor([]int{0, 2}))
}

func TestAntisymmetricOrder3Sign(t *testing.T) {
	alt, err := NewAntisymmetric(4, 3)
	require.NoError(t, err)
	tests := []struct {
		m    []int
		sign int
	}{
		{[]int{3, 2, 1}, 1},
		{[]int{2, 3, 1}, -1},
		{[]int{1, 2, 3}, -1},
		{[]int{2, 1, 3}, 1},
		{[]int{1, 3, 2}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.sign, alt.ScaleFactor(tt.m), "sign of %v", tt.m)
	}
	assert.True(t, alt.IsProceduralZero([]int{1, 3, 1}))
}

func TestDiagonalStorage(t *testing.T) {
	diag, err := NewDiagonal(3, 4)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			zero := diag.IsProceduralZero([]int{i, j})
			assert.Equal(t, i != j, zero)
			if !zero {
				assert.Equal(t, i, diag.ToStorage([]int{i, j}))
			}
		}
	}
}

func TestLocateChecked(t *testing.T) {
	diag, err := NewDiagonal(3, 3)
	require.NoError(t, err)

	s, scale, err := Locate(diag, []int{2, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s)
	assert.Equal(t, 1, scale)

	_, _, err = Locate(diag, []int{0, 1})
	assert.ErrorIs(t, err, ErrProceduralZero)

	_, _, err = Locate(diag, []int{3, 3})
	assert.ErrorIs(t, err, multiindex.ErrOutOfRange)

	_, err = MultiIndexOf(diag, 3)
	assert.ErrorIs(t, err, multiindex.ErrOutOfRange)
}

func TestExpand(t *testing.T) {
	alt, err := NewAntisymmetric(3, 2)
	require.NoError(t, err)
	data := []float64{1, 2, 3}
	full := make([]float64, 9)
	Expand(alt, func(s int) float64 { return data[s] }, full)

	for i := 0; i < 3; i++ {
		assert.Zero(t, full[i*3+i])
		for j := 0; j < 3; j++ {
			assert.Equal(t, -full[j*3+i], full[i*3+j])
		}
	}
	assert.Equal(t, 1.0, full[1*3+0])
	assert.Equal(t, 2.0, full[2*3+0])
	assert.Equal(t, 3.0, full[2*3+1])
}

func TestNestedMismatch(t *testing.T) {
	sym, _ := NewSymmetric(3, 2)
	outer, _ := NewDiagonal(5, 5)
	_, err := NewNested(outer, sym, sym)
	assert.ErrorIs(t, err, ErrNestingMismatch)

	_, err = NewNested(outer, sym)
	assert.ErrorIs(t, err, ErrNestingMismatch)
}

func TestConstructorErrors(t *testing.T) {
	_, err := NewSymmetric(3, 0)
	assert.ErrorIs(t, err, ErrBadOrder)
	_, err = NewAntisymmetric(-1, 2)
	assert.ErrorIs(t, err, ErrBadDimension)
	_, err = NewGeneral(2, -3)
	assert.ErrorIs(t, err, ErrBadDimension)
	_, err = NewDiagonal(-1, 1)
	assert.ErrorIs(t, err, ErrBadDimension)

	// Storage sizes that do not fit in an int.
	_, err = NewSymmetric(60, 30)
	assert.ErrorIs(t, err, ErrBadDimension)
	_, err = NewAntisymmetric(1000, 500)
	assert.ErrorIs(t, err, ErrBadDimension)
	_, err = NewGeneral(1<<32, 1<<32)
	assert.ErrorIs(t, err, ErrBadDimension)

	ext, err := NewAntisymmetric(60, 30)
	require.NoError(t, err)
	assert.Equal(t, 118264581564861424, ext.Size())
}

func TestParseClass(t *testing.T) {
	for c := General; c <= Nested; c++ {
		got, err := ParseClass(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseClass("hermitian")
	assert.ErrorIs(t, err, ErrUnknownClass)
}
