package tensor

import "unsafe"

// overlaps reports whether the element ranges [a0, a1] and [b0, b1] intersect.
func overlaps[T any](a0, a1, b0, b1 *T) bool {
	pa0, pa1 := uintptr(unsafe.Pointer(a0)), uintptr(unsafe.Pointer(a1))
	pb0, pb1 := uintptr(unsafe.Pointer(b0)), uintptr(unsafe.Pointer(b1))
	return pa0 <= pb1 && pb0 <= pa1
}
