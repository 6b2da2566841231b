package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/tensoralg/internal/space"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
	MaxSpaceDim      = 1 << 30           // Maximum vector space dimension
	MaxSpaceOrder    = 64                // Maximum order of a power or factors of a product
	MaxSpaceDepth    = 16                // Maximum nesting of space descriptors
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names only.
	ValidationNormal
	// ValidationNone skips validation. Records are still bounds-checked when decoded.
	ValidationNone
)

// ValidateTensorOffsets checks that every tensor region lies inside the data
// section, holds a whole number of components and does not overlap another.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	byOffset := slices.SortedFunc(slices.Values(tensors), func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var prev *TensorMeta
	for i := range byOffset {
		t := &byOffset[i]
		switch {
		case t.Offset < 0 || t.Size < 0:
			return &ValidationError{Type: "negative_offset", Tensor: t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size), Err: ErrNegativeOffset}
		case t.end() > dataSize:
			return &ValidationError{Type: "out_of_bounds", Tensor: t.Name,
				Details: fmt.Sprintf("region [%d-%d] exceeds data size %d", t.Offset, t.end(), dataSize), Err: ErrOutOfBounds}
		case prev != nil && prev.end() > t.Offset:
			return &ValidationError{Type: "offset_overlap", Tensor: prev.Name, Tensor2: t.Name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap", prev.Offset, prev.end(), t.Offset, t.end()),
				Err:     ErrOffsetOverlap}
		}
		if dt, ok := stringToDtype(t.DType); ok && t.Size%int64(dt.Size()) != 0 {
			return &ValidationError{Type: "partial_component", Tensor: t.Name,
				Details: fmt.Sprintf("%d bytes is not a whole number of %s components", t.Size, t.DType), Err: ErrSizeMismatch}
		}
		prev = t
	}
	return nil
}

// ValidateSpace checks a space descriptor from a file header against the
// MaxSpace* limits before anything is allocated for it.
func ValidateSpace(name string, d space.Descriptor) error {
	return validateSpace(name, d, 1)
}

func validateSpace(name string, d space.Descriptor, depth int) error {
	tooLarge := func(details string) error {
		return &ValidationError{Type: "space_too_large", Tensor: name, Details: details, Err: ErrSpaceTooLarge}
	}
	switch {
	case depth > MaxSpaceDepth:
		return tooLarge(fmt.Sprintf("nested deeper than %d", MaxSpaceDepth))
	case d.Dim > MaxSpaceDim:
		return tooLarge(fmt.Sprintf("dimension %d > max %d", d.Dim, MaxSpaceDim))
	case d.Order > MaxSpaceOrder:
		return tooLarge(fmt.Sprintf("order %d > max %d", d.Order, MaxSpaceOrder))
	case len(d.Factors) > MaxSpaceOrder:
		return tooLarge(fmt.Sprintf("%d factors > max %d", len(d.Factors), MaxSpaceOrder))
	}
	for _, f := range d.Factors {
		if err := validateSpace(name, f, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTensorName rejects empty names, over-long names and names that
// could be mistaken for paths.
func ValidateTensorName(name string) error {
	invalid := func(details string) error {
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: details, Err: ErrInvalidTensorName}
	}
	switch {
	case name == "":
		return invalid("empty name")
	case len(name) > MaxTensorNameLen:
		return invalid(fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen))
	case strings.Contains(name, ".."):
		return invalid("contains '..' (path traversal attempt)")
	case strings.ContainsAny(name, "/\\"):
		return invalid("contains path separator (/ or \\)")
	case strings.Contains(name, "\x00"):
		return invalid("contains null byte")
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
			Err:     ErrTooManyTensors,
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "listed twice", Err: ErrDuplicateName}
		}
		seen[t.Name] = true
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}

	return nil
}
