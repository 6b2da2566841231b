// Package config loads tensoralg job files.
//
// A job file is YAML: it declares named spaces, the input tensors that live
// in them, and einsum expressions over those tensors. Example:
//
//	dtype: float64
//	spaces:
//	  - id: V
//	    space: {kind: vector, name: V, dim: 3}
//	  - id: S
//	    space: {kind: symmetric, order: 2, factors: [{ref: V}]}
//	tensors:
//	  - name: g
//	    space: {ref: S}
//	    data: [1, 0, 0, 1, 0, 1]
//	  - name: x
//	    space: {ref: V}
//	    data: [1, 2, 3]
//	  - name: y
//	    space: {ref: V, dual: true}
//	    seed: 7
//	expressions:
//	  - name: xy
//	    equation: "i,i->"
//	    operands: [x, y]
//	parallel:
//	  enabled: true
//	  num_workers: 4
//	  min_chunk_size: 256
//	log:
//	  level: info
//	  format: text
//	output: results.talg
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/born-ml/tensoralg/internal/parallel"
	"github.com/born-ml/tensoralg/internal/space"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Job is a decoded job file.
type Job struct {
	DType       string          `yaml:"dtype"`
	Spaces      []NamedSpace    `yaml:"spaces"`
	Tensors     []TensorSpec    `yaml:"tensors"`
	Expressions []Expression    `yaml:"expressions"`
	Parallel    parallel.Config `yaml:"parallel"`
	Log         LogConfig       `yaml:"log"`
	Output      string          `yaml:"output"`
}

// NamedSpace binds an id usable as a descriptor ref. A space may refer to
// spaces declared before it.
type NamedSpace struct {
	ID    string           `yaml:"id"`
	Space space.Descriptor `yaml:"space"`
}

// TensorSpec declares an input tensor. Exactly one of Data (compact storage
// components) and Seed (standard normal components) is used; with neither
// the tensor is zero.
type TensorSpec struct {
	Name  string           `yaml:"name"`
	Space space.Descriptor `yaml:"space"`
	Data  []float64        `yaml:"data,omitempty"`
	Seed  *int64           `yaml:"seed,omitempty"`
}

// Expression is one einsum evaluation. Its result is stored under Name.
// When Into is set the result is embedded into that space, e.g. to expand a
// symmetric result into a full tensor product.
type Expression struct {
	Name     string            `yaml:"name"`
	Equation string            `yaml:"equation"`
	Operands []string          `yaml:"operands"`
	Into     *space.Descriptor `yaml:"into,omitempty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json or auto
}

// Default returns a job with default settings and nothing to evaluate.
func Default() Job {
	return Job{
		DType:    "float64",
		Parallel: parallel.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the job file at path.
func Load(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	job, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// Parse decodes and validates a job from YAML bytes.
func Parse(data []byte) (*Job, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a job from r on top of Default and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (*Job, error) {
	job := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// SlogLevel returns the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadLogLevel, l.Level)
	}
	return level, nil
}

// Handler builds the slog handler writing to w. The auto format picks text
// when w is a terminal and JSON otherwise.
func (l LogConfig) Handler(w io.Writer) (slog.Handler, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch l.Format {
	case "text", "":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "auto":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return slog.NewTextHandler(w, opts), nil
		}
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadLogFormat, l.Format)
	}
}
