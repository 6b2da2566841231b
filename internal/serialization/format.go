package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/born-ml/tensoralg/internal/space"
	"github.com/born-ml/tensoralg/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "TALG"
	FormatVersion   = 1
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Flags for the .talg format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header represents the JSON header in a .talg file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	Version       string            `json:"tensoralg_version"` // Version of the writer
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes a tensor in the .talg file.
type TensorMeta struct {
	Name   string           `json:"name"`
	DType  string           `json:"dtype"`
	Space  space.Descriptor `json:"space"`
	Offset int64            `json:"offset"` // Bytes from start of the data section
	Size   int64            `json:"size"`   // Size in bytes
}

func (m *TensorMeta) end() int64 { return m.Offset + m.Size }

// Record is one named tensor as stored in a file: its space, component type
// and little-endian compact storage.
type Record struct {
	Name  string
	Space *space.Space
	DType tensor.DataType
	Data  []byte
}

// Len returns the number of stored components.
func (r Record) Len() int { return len(r.Data) / r.DType.Size() }

// RecordOf encodes t under name.
func RecordOf[T tensor.Scalar](name string, t *tensor.Tensor[T]) Record {
	dt := tensor.DataTypeOf[T]()
	src := t.Data()
	data := make([]byte, len(src)*dt.Size())
	for i, v := range src {
		switch dt {
		case tensor.Float32:
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(v)))
		default:
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(float64(v)))
		}
	}
	return Record{Name: name, Space: t.Space(), DType: dt, Data: data}
}

// TensorOf decodes r into a tensor of component type T. The record's data
// type must be T's.
func TensorOf[T tensor.Scalar](r Record) (*tensor.Tensor[T], error) {
	if dt := tensor.DataTypeOf[T](); dt != r.DType {
		return nil, fmt.Errorf("%w: tensor %q is %s, requested %s", ErrDTypeMismatch, r.Name, r.DType, dt)
	}
	vals := make([]T, r.Len())
	for i := range vals {
		switch r.DType {
		case tensor.Float32:
			vals[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(r.Data[i*4:])))
		default:
			vals[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(r.Data[i*8:])))
		}
	}
	return tensor.FromSlice(r.Space, vals)
}

// Values returns the stored components widened to float64, whatever the
// record's data type.
func (r Record) Values() []float64 {
	out := make([]float64, r.Len())
	for i := range out {
		if r.DType == tensor.Float32 {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(r.Data[i*4:])))
		} else {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(r.Data[i*8:]))
		}
	}
	return out
}

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// dtypeToString converts tensor.DataType to string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

// stringToDtype converts string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}

func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
