package storage

import "errors"

// Sentinel errors. Match with errors.Is.
var (
	// ErrProceduralZero is returned when a storage location is requested for a
	// component that is identically zero in its symmetry class.
	ErrProceduralZero = errors.New("storage: component is a procedural zero")

	// ErrBadOrder is returned for an order that the class cannot represent.
	ErrBadOrder = errors.New("storage: invalid order")

	// ErrBadDimension is returned for negative dimensions.
	ErrBadDimension = errors.New("storage: invalid dimension")

	// ErrNestingMismatch is returned when inner schemes do not fit the outer slots.
	ErrNestingMismatch = errors.New("storage: inner scheme does not match outer slot")

	// ErrUnknownClass is returned by ParseClass.
	ErrUnknownClass = errors.New("storage: unknown symmetry class")
)
