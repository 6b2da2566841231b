package tensor

import (
	"math"
	"math/rand"

	"github.com/born-ml/tensoralg/internal/space"
)

// Randn creates a tensor of s whose stored components are drawn from a
// standard normal distribution using rng.
// Uses the Box-Muller transform.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	t := tensor.Randn[float64](s, rng)
func Randn[T Scalar](s *space.Space, rng *rand.Rand) *Tensor[T] {
	t := Zeros[T](s)
	for i := 0; i < len(t.data); i += 2 {
		u1 := 1 - rng.Float64() // (0, 1] keeps the log finite
		u2 := rng.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		t.data[i] = T(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(t.data) {
			t.data[i+1] = T(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}

// Rand creates a tensor of s with components uniformly distributed in [0, 1).
func Rand[T Scalar](s *space.Space, rng *rand.Rand) *Tensor[T] {
	t := Zeros[T](s)
	for i := range t.data {
		t.data[i] = T(rng.Float64())
	}
	return t
}
