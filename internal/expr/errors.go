package expr

import (
	"errors"
	"fmt"
)

// Sentinel errors for expression construction and assignment.
var (
	// ErrArity is returned when the number of labels does not match the
	// number of slots.
	ErrArity = errors.New("expr: wrong number of labels")

	// ErrFreeMismatch is returned when two operands or an assignment target
	// do not have the same set of free labels.
	ErrFreeMismatch = errors.New("expr: free label sets differ")

	// ErrLabelCollision is returned when a new label is already in use, or an
	// internally summed label reappears elsewhere in the expression.
	ErrLabelCollision = errors.New("expr: label collision")

	// ErrNotFree is returned when an operation names a label that is not free.
	ErrNotFree = errors.New("expr: label is not free")

	// ErrFactorMismatch is returned by Bundle when the bundled slots do not
	// match the target space's factors.
	ErrFactorMismatch = errors.New("expr: factor mismatch")

	// ErrNotComposite is returned when splitting or bundling into a space
	// without factors.
	ErrNotComposite = errors.New("expr: space has no factors")

	// ErrDivisionByZero is returned by Div for a zero divisor.
	ErrDivisionByZero = errors.New("expr: division by zero")

	// ErrAliasing is returned by Assign when the right-hand side reads the
	// target's storage. The target is left unmodified; materialize the
	// right-hand side into a new tensor and assign that instead.
	ErrAliasing = errors.New("expr: assignment target aliases right-hand side")
)

// BuildError describes an invalid expression, detected while it is built.
type BuildError struct {
	Op      string // Builder that rejected the expression (e.g. "mul", "bundle")
	Details string // Additional details
	Err     error  // Sentinel error matched by errors.Is
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Op, e.Details)
}

// Unwrap returns the sentinel error.
func (e *BuildError) Unwrap() error { return e.Err }

func buildErr(op string, err error, format string, args ...any) error {
	return &BuildError{Op: op, Details: fmt.Sprintf(format, args...), Err: err}
}
