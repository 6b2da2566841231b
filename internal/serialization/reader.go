package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReaderOptions configures decoding.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Reader holds a decoded .talg file.
type Reader struct {
	header   Header
	flags    uint32
	checksum [32]byte
	data     []byte
	records  map[string]Record
}

// Open reads and validates a .talg file with strict validation.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions reads a .talg file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading results
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Decode(file, opts)
}

// Decode reads a .talg stream.
func Decode(in io.Reader, opts ReaderOptions) (*Reader, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(in, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}

	r := &Reader{flags: binary.LittleEndian.Uint32(fixed[8:12])}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := padding(int64(FixedHeaderSize) + int64(headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, in, pad); err != nil {
			return nil, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	var data bytes.Buffer
	//nolint:gosec // G115: dataSize is checked against what the stream actually holds
	n, err := io.CopyN(&data, in, int64(dataSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data (%d of %d bytes): %w", n, dataSize, err)
	}
	r.data = data.Bytes()

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(r.data), r.checksum); err != nil {
			return nil, err
		}
	}
	if err := ValidateHeader(&r.header, int64(len(r.data)), opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	r.records = make(map[string]Record, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		rec, err := r.decodeRecord(meta)
		if err != nil {
			return nil, err
		}
		r.records[meta.Name] = rec
	}
	return r, nil
}

func (r *Reader) decodeRecord(meta TensorMeta) (Record, error) {
	dt, ok := stringToDtype(meta.DType)
	if !ok {
		return Record{}, &ValidationError{Type: "unknown_dtype", Tensor: meta.Name, Details: meta.DType, Err: ErrUnknownDType}
	}
	if err := ValidateSpace(meta.Name, meta.Space); err != nil {
		return Record{}, err
	}
	sp, err := meta.Space.Build(nil)
	if err != nil {
		return Record{}, fmt.Errorf("tensor %q: space: %w", meta.Name, err)
	}
	if want := int64(sp.Dim() * dt.Size()); meta.Size != want {
		return Record{}, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("%s of %s needs %d bytes, header says %d", dt, sp, want, meta.Size),
			Err:     ErrSizeMismatch,
		}
	}
	end := meta.Offset + meta.Size
	if meta.Offset < 0 || end > int64(len(r.data)) {
		return Record{}, &ValidationError{
			Type:    "out_of_bounds",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("offset %d + size %d > data_size %d", meta.Offset, meta.Size, len(r.data)),
			Err:     ErrOutOfBounds,
		}
	}
	return Record{Name: meta.Name, Space: sp, DType: dt, Data: r.data[meta.Offset:end]}, nil
}

// Header returns the file header.
func (r *Reader) Header() Header { return r.header }

// Flags returns the header flags.
func (r *Reader) Flags() uint32 { return r.flags }

// Checksum returns the stored SHA-256 of the data section.
func (r *Reader) Checksum() [32]byte { return r.checksum }

// Metadata returns the custom metadata.
func (r *Reader) Metadata() map[string]string { return r.header.Metadata }

// Names returns the tensor names in file order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// Record returns the named tensor record.
func (r *Reader) Record(name string) (Record, error) {
	rec, ok := r.records[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return rec, nil
}

// Records returns every record in file order.
func (r *Reader) Records() []Record {
	out := make([]Record, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		out[i] = r.records[t.Name]
	}
	return out
}
