package storage

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// Binomial returns C(n, k) using exact integer arithmetic.
// It is 0 whenever k < 0, n < 0 or k > n, and panics if C(n, k) does not
// fit in an int; use CheckedBinomial for sizes not yet validated.
func Binomial(n, k int) int {
	c, ok := CheckedBinomial(n, k)
	if !ok {
		panic(fmt.Sprintf("storage: C(%d, %d) overflows int", n, k))
	}
	return c
}

// CheckedBinomial returns C(n, k) and whether it fits in an int.
func CheckedBinomial(n, k int) (int, bool) {
	if k < 0 || n < 0 || k > n {
		return 0, true
	}
	if k > n-k {
		k = n - k
	}
	r := 1
	for i := 0; i < k; i++ {
		// r is C(n, i), and r*(n-i) is divisible by i+1. Cancelling the common
		// factor first keeps the product at C(n, i+1), so an overflow here
		// means the result itself overflows.
		g := gcd(r, i+1)
		q := (i + 1) / g
		var ok bool
		if r, ok = mulInt(r/g, (n-i)/q); !ok {
			return 0, false
		}
	}
	return r, true
}

// mulInt returns a*b for non-negative a and b, and whether it fits in an int.
func mulInt(a, b int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// InverseTriangular returns the largest t >= 0 with t*(t+1)/2 <= n.
// Pure integer search; n must be non-negative.
func InverseTriangular(n int) int {
	lo, hi := 0, 1
	for hi*(hi+1)/2 <= n {
		hi *= 2
	}
	// Invariant: lo*(lo+1)/2 <= n < hi*(hi+1)/2.
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if mid*(mid+1)/2 <= n {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// largestBinomialArg returns the largest a in [lo, hi) with C(a+shift, k) <= s.
// The caller guarantees C(lo+shift, k) <= s.
func largestBinomialArg(s, k, shift, lo, hi int) int {
	// Invariant: C(lo+shift, k) <= s, and every a >= hi is out of range.
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if Binomial(mid+shift, k) <= s {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// sortDescending sorts vals in place into non-increasing order and returns
// the parity of the sorting permutation (true for odd).
func sortDescending(vals []int) bool {
	odd := countInversions(vals)%2 == 1
	slices.Sort(vals)
	slices.Reverse(vals)
	return odd
}

// countInversions counts pairs p < q with vals[p] < vals[q], i.e. pairs out
// of non-increasing order.
func countInversions(vals []int) int {
	n := 0
	for p := 0; p < len(vals); p++ {
		for q := p + 1; q < len(vals); q++ {
			if vals[p] < vals[q] {
				n++
			}
		}
	}
	return n
}

// hasRepeat reports whether any value occurs twice.
func hasRepeat(vals []int) bool {
	for p := 0; p < len(vals); p++ {
		for q := p + 1; q < len(vals); q++ {
			if vals[p] == vals[q] {
				return true
			}
		}
	}
	return false
}

// nextPermutation rearranges vals into the lexicographically next permutation
// of the multiset, returning false after the last one.
func nextPermutation(vals []int) bool {
	i := len(vals) - 2
	for i >= 0 && vals[i] >= vals[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(vals) - 1
	for vals[j] <= vals[i] {
		j--
	}
	vals[i], vals[j] = vals[j], vals[i]
	for l, r := i+1, len(vals)-1; l < r; l, r = l+1, r-1 {
		vals[l], vals[r] = vals[r], vals[l]
	}
	return true
}

// permutationSign returns -1 if vals is an odd permutation of its
// non-increasing rearrangement, +1 otherwise. Values must be distinct.
func permutationSign(vals []int) int {
	if countInversions(vals)%2 == 1 {
		return -1
	}
	return 1
}
