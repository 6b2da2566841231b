package space

import "errors"

// Sentinel errors. Match with errors.Is.
var (
	// ErrBadDimension is returned for negative dimensions.
	ErrBadDimension = errors.New("space: invalid dimension")

	// ErrBadOrder is returned for an unsupported number of factors.
	ErrBadOrder = errors.New("space: invalid order")

	// ErrBadName is returned for an empty or reserved vector space name.
	ErrBadName = errors.New("space: invalid name")

	// ErrFieldMismatch is returned when factors live over different scalar fields.
	ErrFieldMismatch = errors.New("space: factors have different scalar fields")

	// ErrUnknownKind is returned for a descriptor with an unknown kind.
	ErrUnknownKind = errors.New("space: unknown kind")

	// ErrUnknownRef is returned for a descriptor referencing an undefined space.
	ErrUnknownRef = errors.New("space: unknown space reference")
)
