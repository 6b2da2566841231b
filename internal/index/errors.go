package index

import "errors"

// Sentinel errors. Match with errors.Is.
var (
	// ErrLabelMultiplicity is returned for a label occurring three or more times.
	ErrLabelMultiplicity = errors.New("index: label must occur once (free) or twice (summed)")

	// ErrNonDualPairing is returned when a summed label pairs two spaces that are not dual.
	ErrNonDualPairing = errors.New("index: summation requires a space and its dual")

	// ErrDuplicateFree is returned when a label is repeated where only free labels are allowed.
	ErrDuplicateFree = errors.New("index: duplicate free label")

	// ErrLabelMismatch is returned when a required label is missing.
	ErrLabelMismatch = errors.New("index: label not found")
)
