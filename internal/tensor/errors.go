package tensor

import "errors"

var (
	// ErrSizeMismatch is returned when data does not match the storage size of a space.
	ErrSizeMismatch = errors.New("tensor: data size does not match space")

	// ErrUnknownDataType is returned by ParseDataType.
	ErrUnknownDataType = errors.New("tensor: unknown data type")
)
