package multiindex

import "sync"

var bufferPool = sync.Pool{
	New: func() any { return new([]int) },
}

// GetBuffer returns a scratch slice of n index values from a shared pool.
// Its contents are unspecified. Release it with PutBuffer once no reference
// to the slice remains.
//
// Evaluation runs once per output component, so per-call index slices come
// from here instead of the heap.
func GetBuffer(n int) *[]int {
	b := bufferPool.Get().(*[]int)
	if cap(*b) < n {
		*b = make([]int, n)
	}
	*b = (*b)[:n]
	return b
}

// PutBuffer returns b to the pool.
func PutBuffer(b *[]int) {
	bufferPool.Put(b)
}
