// Package tensor provides the leaf tensor values indexed by expressions: a
// space descriptor plus the compact storage of one element of that space.
package tensor

import "fmt"

// Scalar is a constraint for supported component types.
// It uses Go generics to ensure compile-time type safety.
type Scalar interface {
	~float32 | ~float64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// DataTypeOf infers the DataType of T.
func DataTypeOf[T Scalar]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		// Named types derived from float32/float64 land here.
		if float64(T(0.1)) == 0.1 {
			return Float64
		}
		return Float32
	}
}

// ParseDataType returns the DataType named s ("float32" or "float64").
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}
