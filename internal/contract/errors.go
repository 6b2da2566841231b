package contract

import "errors"

// Sentinel errors. Match with errors.Is.
var (
	// ErrNoOperands is returned when a summation is built without operands.
	ErrNoOperands = errors.New("contract: summation needs at least one operand")

	// ErrUnknownLabel is returned when an operand label is neither free nor summed.
	ErrUnknownLabel = errors.New("contract: operand label not in partition")
)
