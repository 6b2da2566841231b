package multiindex

import "errors"

// Sentinel errors. Match with errors.Is.
var (
	// ErrOutOfRange is returned when a component or slice bound exceeds its axis.
	ErrOutOfRange = errors.New("multiindex: index out of range")

	// ErrArity is returned when the number of values does not match the number of axes.
	ErrArity = errors.New("multiindex: wrong number of indices")

	// ErrBadDimension is returned for negative dimensions.
	ErrBadDimension = errors.New("multiindex: invalid dimension")
)
