package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Version is the library version recorded in file headers.
const Version = "0.3.0"

// Writer writes tensors in .talg format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .talg file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving results
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteTensors writes records, in order, with optional metadata.
func (w *Writer) WriteTensors(records []Record, metadata map[string]string) error {
	if w.closed {
		return ErrClosed
	}
	return Encode(w.file, records, metadata)
}

// Close closes the writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// Encode writes records in .talg format to out.
func Encode(out io.Writer, records []Record, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		Version:       Version,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(records)),
		Metadata:      metadata,
	}

	seen := make(map[string]bool, len(records))
	var data bytes.Buffer
	for _, r := range records {
		if err := ValidateTensorName(r.Name); err != nil {
			return err
		}
		if seen[r.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: r.Name, Details: "written twice", Err: ErrDuplicateName}
		}
		seen[r.Name] = true

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   r.Name,
			DType:  dtypeToString(r.DType),
			Space:  r.Space.Describe(),
			Offset: int64(data.Len()),
			Size:   int64(len(r.Data)),
		})
		data.Write(r.Data)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	checksum := ComputeChecksum(data.Bytes())

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))
	var flags uint32
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := out.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := out.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := out.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := out.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
